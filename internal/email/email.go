package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ninjahub/ninjahub-core/internal/metrics"
	"github.com/resend/resend-go/v2"
)

type Attachment struct {
	Filename string
	Content  []byte
}

// Message is a fully rendered email ready for transport.
type Message struct {
	From        string
	To          []string
	CC          []string
	BCC         []string
	ReplyTo     string
	Subject     string
	Body        string
	HTML        bool
	Headers     map[string]string
	Attachments []Attachment
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender logs emails instead of sending them. Used in ENV=local.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "email (local dev)",
		"to", strings.Join(msg.To, ","),
		"cc", strings.Join(msg.CC, ","),
		"bcc", strings.Join(msg.BCC, ","),
		"subject", msg.Subject,
		"attachments", len(msg.Attachments),
		"body", msg.Body,
	)
	metrics.EmailsSentTotal.WithLabelValues("logged").Inc()
	return nil
}

// ResendSender sends emails via the Resend API. Used in staging/production.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	from := msg.From
	if from == "" {
		from = s.from
	}

	params := &resend.SendEmailRequest{
		From:    from,
		To:      msg.To,
		Cc:      msg.CC,
		Bcc:     msg.BCC,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		Headers: msg.Headers,
	}
	if msg.HTML {
		params.Html = msg.Body
	} else {
		params.Text = msg.Body
	}
	for _, a := range msg.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Filename: a.Filename,
			Content:  a.Content,
		})
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		metrics.EmailsSentTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("send email: %w", err)
	}
	metrics.EmailsSentTotal.WithLabelValues("sent").Inc()
	return nil
}

// NewSender returns a LogSender for ENV=local, ResendSender otherwise.
func NewSender(env, apiKey, from string, logger *slog.Logger) Sender {
	if env == "local" {
		return &LogSender{logger: logger.With("component", "email")}
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}
