// Package forms renders Bootstrap form markup from declarative field
// descriptors.
package forms

import (
	"errors"
	"fmt"
	"html"
	"html/template"
	"slices"
	"strconv"
	"strings"
)

var ErrNoNonceSource = errors.New("forms: nonce field without a nonce source")

type BuilderOption func(*Builder)

// WithNonce sets the function producing nonce values for an action.
func WithNonce(fn func(action string) string) BuilderOption {
	return func(b *Builder) { b.nonce = fn }
}

// WithRecaptcha sets the renderer for submit buttons that name a reCAPTCHA form.
func WithRecaptcha(fn func(formName string) template.HTML) BuilderOption {
	return func(b *Builder) { b.recaptcha = fn }
}

// Builder renders forms for one domain. Class and ID prefixes derive from
// the domain name.
type Builder struct {
	domain    string
	nonce     func(action string) string
	recaptcha func(formName string) template.HTML
}

func New(domain string, opts ...BuilderOption) *Builder {
	b := &Builder{domain: domain}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CreateForm renders fields sorted by Order inside the form wrapper. An empty
// field list renders nothing.
func (b *Builder) CreateForm(fields []Field, tag FormTag) (template.HTML, error) {
	if len(fields) == 0 {
		return "", nil
	}

	var out strings.Builder
	if err := tmpl.ExecuteTemplate(&out, "start", b.startView(tag)); err != nil {
		return "", fmt.Errorf("render form start: %w", err)
	}
	for _, f := range sortFields(fields) {
		h, err := b.Field(f)
		if err != nil {
			return "", err
		}
		out.WriteString(string(h))
	}
	out.WriteString("</form>\n</div>\n")
	return template.HTML(out.String()), nil
}

// Field renders a single widget. Unknown types render nothing.
func (b *Builder) Field(f Field) (template.HTML, error) {
	var name string
	var view any

	switch f.Type {
	case TypeText, TypeEmail, TypePassword, TypeNumber, TypeTel, TypeDate:
		name, view = "std", b.stdView(f)
	case TypeHidden:
		name, view = "hidden", b.baseView(f, f.ID)
	case TypeFile:
		name, view = "file", b.fileView(f)
	case TypeCheckbox:
		name, view = "checkbox", b.choicesView(f, "_")
	case TypeRadio:
		name, view = "radio", b.choicesView(f, "")
	case TypeSwitch:
		v := b.baseView(f, b.defaultID(f))
		v.Attrs = renderAttrs(f.ExtraAttr, f.Type, true)
		name, view = "switch", v
	case TypeTextarea:
		name, view = "textarea", b.textareaView(f)
	case TypeSelect:
		name, view = "select", b.selectView(f)
	case TypeNonce:
		if b.nonce == nil {
			return "", ErrNoNonceSource
		}
		v := b.baseView(f, f.Name)
		v.Value = b.nonce(f.Value)
		name, view = "hidden", v
	case TypeSubmit, TypeButton:
		name, view = "submit", b.submitView(f)
	case TypeHTML:
		return f.Content, nil
	default:
		return "", nil
	}

	var out strings.Builder
	if err := tmpl.ExecuteTemplate(&out, name, view); err != nil {
		return "", fmt.Errorf("render %s field %q: %w", f.Type, f.Name, err)
	}
	return template.HTML(out.String()), nil
}

func sortFields(fields []Field) []Field {
	sorted := slices.Clone(fields)
	slices.SortStableFunc(sorted, func(a, b Field) int { return a.Order - b.Order })
	for i, f := range sorted {
		if f.Type == TypeCheckbox && len(f.Choices) > 0 {
			choices := slices.Clone(f.Choices)
			slices.SortStableFunc(choices, func(a, b Choice) int { return a.Order - b.Order })
			sorted[i].Choices = choices
		}
	}
	return sorted
}

// renderAttrs renders non-empty attributes. With filter set, number inputs
// drop maxlength and minlength and every other type drops max, min and step.
func renderAttrs(attrs []Attr, t FieldType, filter bool) template.HTMLAttr {
	var b strings.Builder
	for _, a := range attrs {
		if a.Value == "" {
			continue
		}
		if filter {
			switch a.Name {
			case "maxlength", "minlength":
				if t == TypeNumber {
					continue
				}
			case "max", "min", "step":
				if t != TypeNumber {
					continue
				}
			}
		}
		fmt.Fprintf(&b, ` %s="%s"`, html.EscapeString(a.Name), html.EscapeString(a.Value))
	}
	return template.HTMLAttr(b.String())
}

type fieldView struct {
	D     string
	F     Field
	ID    string
	Value string
	Attrs template.HTMLAttr
}

func (b *Builder) defaultID(f Field) string {
	if f.ID != "" {
		return f.ID
	}
	if f.Name == "" {
		return ""
	}
	return b.domain + "_" + f.Name
}

func (b *Builder) baseView(f Field, id string) fieldView {
	return fieldView{D: b.domain, F: f, ID: id, Value: f.Value}
}

func (b *Builder) stdView(f Field) fieldView {
	v := b.baseView(f, b.defaultID(f))
	if f.DefaultValue != "" {
		v.Value = f.DefaultValue
	}
	if v.F.Autocomplete == "" {
		v.F.Autocomplete = "on"
	}

	extra := f.ExtraAttr
	if extra == nil {
		extra = DefaultExtraAttr
	}
	if f.Type == TypeNumber && f.Step != "" {
		extra = slices.DeleteFunc(slices.Clone(extra), func(a Attr) bool { return a.Name == "step" })
		extra = append(extra, Attr{Name: "step", Value: f.Step})
	}
	v.Attrs = renderAttrs(extra, f.Type, true)
	return v
}

type fileView struct {
	fieldView
	ButtonLabel string
}

func (b *Builder) fileView(f Field) fileView {
	v := fileView{fieldView: b.baseView(f, b.defaultID(f)), ButtonLabel: f.ButtonLabel}
	v.Attrs = renderAttrs(f.ExtraAttr, f.Type, true)
	if v.ButtonLabel == "" {
		v.ButtonLabel = "Upload"
	}
	return v
}

type choiceView struct {
	C     Choice
	ID    string
	Attrs template.HTMLAttr
}

type choicesView struct {
	fieldView
	Choices []choiceView
}

// choicesView derives missing choice IDs as <domain>_<name><sep><n>, where n
// counts only the generated IDs.
func (b *Builder) choicesView(f Field, sep string) choicesView {
	v := choicesView{fieldView: b.baseView(f, "")}
	n := 0
	for _, c := range f.Choices {
		id := c.ID
		if id == "" {
			name := c.Name
			if name == "" && f.Type == TypeRadio {
				name = f.Name
			}
			if name != "" {
				id = b.domain + "_" + strings.ReplaceAll(name, "[]", "") + sep + strconv.Itoa(n)
				n++
			}
		}
		v.Choices = append(v.Choices, choiceView{C: c, ID: id, Attrs: renderAttrs(c.ExtraAttr, "", false)})
	}
	return v
}

type textareaView struct {
	fieldView
	Rows int
}

func (b *Builder) textareaView(f Field) textareaView {
	v := textareaView{fieldView: b.baseView(f, b.defaultID(f)), Rows: f.Rows}
	v.Attrs = renderAttrs(f.ExtraAttr, f.Type, false)
	if v.F.Autocomplete == "" {
		v.F.Autocomplete = "on"
	}
	if v.Rows <= 0 {
		v.Rows = 3
	}
	return v
}

type optionView struct {
	Value    string
	Title    string
	Selected bool
}

type selectView struct {
	fieldView
	Placeholder bool
	Options     []optionView
}

// selectView marks SelectOption values selected when only SelectOption is
// set, the DefaultOption when only it is set, and nothing otherwise.
func (b *Builder) selectView(f Field) selectView {
	v := selectView{fieldView: b.baseView(f, b.defaultID(f))}
	v.Attrs = renderAttrs(f.ExtraAttr, f.Type, true)

	hasDefault := f.DefaultOption != ""
	hasSelect := len(f.SelectOption) > 0
	v.Placeholder = !hasDefault && !hasSelect

	for _, o := range f.Options {
		ov := optionView{Value: o.Value, Title: o.Title}
		switch {
		case hasSelect && !hasDefault:
			ov.Selected = slices.Contains(f.SelectOption, o.Value)
		case hasDefault && !hasSelect:
			ov.Selected = f.DefaultOption == o.Value
		}
		v.Options = append(v.Options, ov)
	}
	return v
}

type submitView struct {
	fieldView
	Label     string
	Recaptcha template.HTML
}

func (b *Builder) submitView(f Field) submitView {
	v := submitView{fieldView: b.baseView(f, f.ID), Label: f.Value}
	if v.Label == "" {
		v.Label = "Submit"
	}
	if f.RecaptchaFormName != "" && b.recaptcha != nil {
		v.Recaptcha = b.recaptcha(f.RecaptchaFormName)
	}
	return v
}

type startView struct {
	D         string
	Container string
	T         FormTag
}

func (b *Builder) startView(tag FormTag) startView {
	classes := strings.Fields(tag.Class)
	if len(classes) > 0 {
		classes[0] += "-container"
	}
	return startView{D: b.domain, Container: strings.Join(classes, " "), T: tag}
}
