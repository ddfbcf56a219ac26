package mail

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ninjahub/ninjahub-core/internal/email"
)

//go:embed templates
var embedded embed.FS

var (
	ErrNoRecipients       = errors.New("you must set at least 1 recipient")
	ErrTemplateNotFound   = errors.New("template file not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrUnknownExtension   = errors.New("unknown template extension")
)

const (
	defaultHeader = "default/header"
	defaultBody   = "default/body"
	defaultFooter = "default/footer"
)

// Vars are the variables available to one template part.
type Vars map[string]any

// DefaultTemplates returns the templates shipped with the binary.
func DefaultTemplates() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Mailer builds messages against one template set and hands them to sender.
type Mailer struct {
	sender    email.Sender
	templates fs.FS
	from      string
}

func NewMailer(sender email.Sender, templates fs.FS, from string) *Mailer {
	if templates == nil {
		templates = DefaultTemplates()
	}
	return &Mailer{sender: sender, templates: templates, from: from}
}

func (m *Mailer) New() *Message {
	return &Message{mailer: m, from: m.from}
}

type part struct {
	file string
	vars Vars
}

type header struct {
	key, value string
}

// Message is a fluent email builder. The first error recorded by a setter
// is returned from Send.
type Message struct {
	mailer *Mailer

	to, cc, bcc []string
	subject     string
	from        string
	headers     []header
	html        bool
	attachments []string

	header, body, footer part

	err error
}

// To replaces the recipient list.
func (m *Message) To(addrs ...string) *Message {
	m.to = addrs
	return m
}

func (m *Message) CC(addrs ...string) *Message {
	m.cc = addrs
	return m
}

func (m *Message) BCC(addrs ...string) *Message {
	m.bcc = addrs
	return m
}

// Subject may contain {{ var }} placeholders filled from every part's vars.
func (m *Message) Subject(subject string) *Message {
	m.subject = subject
	return m
}

func (m *Message) From(from string) *Message {
	m.from = from
	return m
}

func (m *Message) Header(key, value string) *Message {
	m.headers = append(m.headers, header{key: key, value: value})
	return m
}

func (m *Message) AsHTML(html bool) *Message {
	m.html = html
	return m
}

// Attach replaces the attachment list. Every path must exist.
func (m *Message) Attach(paths ...string) *Message {
	m.attachments = nil
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			m.fail(fmt.Errorf("%w at %s", ErrAttachmentNotFound, p))
			return m
		}
		m.attachments = append(m.attachments, p)
	}
	return m
}

func (m *Message) TemplateHeader(name string, vars Vars) *Message {
	m.header = m.resolve(name, vars)
	return m
}

func (m *Message) Template(name string, vars Vars) *Message {
	m.body = m.resolve(name, vars)
	return m
}

func (m *Message) TemplateFooter(name string, vars Vars) *Message {
	m.footer = m.resolve(name, vars)
	return m
}

// Err reports the first error recorded while building.
func (m *Message) Err() error {
	return m.err
}

func (m *Message) fail(err error) {
	if m.err == nil {
		m.err = err
	}
}

func (m *Message) resolve(name string, vars Vars) part {
	if file, ok := lookup(m.mailer.templates, name); ok {
		return part{file: file, vars: vars}
	}
	m.fail(fmt.Errorf("%w: %s", ErrTemplateNotFound, name))
	return part{}
}

func lookup(fsys fs.FS, name string) (string, bool) {
	for _, ext := range []string{".tmpl", ".html"} {
		file := name + ext
		if _, err := fs.Stat(fsys, file); err == nil {
			return file, true
		}
	}
	return "", false
}

// RenderSubject fills the subject from the merged header, body and footer vars.
func (m *Message) RenderSubject() string {
	merged := Vars{}
	for _, p := range []part{m.header, m.body, m.footer} {
		for k, v := range p.vars {
			merged[k] = v
		}
	}
	return parseMustache(m.subject, merged)
}

// Render returns header, body and footer concatenated. Parts left unset fall
// back to the default templates.
func (m *Message) Render() (string, error) {
	var b strings.Builder
	for _, p := range []struct {
		part
		fallback string
	}{
		{m.header, defaultHeader},
		{m.body, defaultBody},
		{m.footer, defaultFooter},
	} {
		file := p.file
		if file == "" {
			var ok bool
			if file, ok = lookup(m.mailer.templates, p.fallback); !ok {
				return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, p.fallback)
			}
		}
		out, err := renderFile(m.mailer.templates, file, p.vars)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

// BuildHeaders renders custom headers followed by Bcc, Cc and From lines.
func (m *Message) BuildHeaders() string {
	var b strings.Builder
	for _, h := range m.headers {
		fmt.Fprintf(&b, "%s: %s\r\n", h.key, h.value)
	}
	for _, addr := range m.bcc {
		fmt.Fprintf(&b, "Bcc: %s\r\n", addr)
	}
	for _, addr := range m.cc {
		fmt.Fprintf(&b, "Cc: %s\r\n", addr)
	}
	if m.from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", m.from)
	}
	if m.html {
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	}
	return b.String()
}

func (m *Message) Send(ctx context.Context) error {
	if m.err != nil {
		return m.err
	}
	if len(m.to) == 0 {
		return ErrNoRecipients
	}

	body, err := m.Render()
	if err != nil {
		return fmt.Errorf("render mail: %w", err)
	}

	msg := email.Message{
		From:    m.from,
		To:      m.to,
		CC:      m.cc,
		BCC:     m.bcc,
		Subject: m.RenderSubject(),
		Body:    body,
		HTML:    m.html,
	}
	if len(m.headers) > 0 {
		msg.Headers = make(map[string]string, len(m.headers))
		for _, h := range m.headers {
			msg.Headers[h.key] = h.value
		}
	}
	for _, p := range m.attachments {
		content, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read attachment: %w", err)
		}
		msg.Attachments = append(msg.Attachments, email.Attachment{
			Filename: filepath.Base(p),
			Content:  content,
		})
	}

	return m.mailer.sender.Send(ctx, msg)
}
