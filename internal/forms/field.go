package forms

import "html/template"

type FieldType string

const (
	TypeText     FieldType = "text"
	TypeEmail    FieldType = "email"
	TypePassword FieldType = "password"
	TypeNumber   FieldType = "number"
	TypeTel      FieldType = "tel"
	TypeDate     FieldType = "date"
	TypeHidden   FieldType = "hidden"
	TypeFile     FieldType = "file"
	TypeCheckbox FieldType = "checkbox"
	TypeRadio    FieldType = "radio"
	TypeSwitch   FieldType = "switch"
	TypeTextarea FieldType = "textarea"
	TypeSelect   FieldType = "select"
	TypeNonce    FieldType = "nonce"
	TypeSubmit   FieldType = "submit"
	TypeButton   FieldType = "button"
	TypeHTML     FieldType = "html"
)

// Attr is one extra HTML attribute. Empty values are not rendered.
type Attr struct {
	Name  string
	Value string
}

// DefaultExtraAttr applies to standard inputs that declare no ExtraAttr.
var DefaultExtraAttr = []Attr{
	{Name: "maxlength", Value: "255"},
	{Name: "minlength"},
	{Name: "max"},
	{Name: "min"},
	{Name: "step", Value: "1"},
}

// Choice is one checkbox or radio option.
type Choice struct {
	Label     string
	Name      string
	ID        string
	Value     string
	Class     string
	Before    template.HTML
	After     template.HTML
	Checked   bool
	Required  bool
	Order     int
	ExtraAttr []Attr
}

// Option is one select option. Options render in declaration order.
type Option struct {
	Value string
	Title string
}

// Field describes one form widget. Only the properties relevant to Type are
// read.
type Field struct {
	Type  FieldType
	Name  string
	Label string
	ID    string
	Class string
	Order int

	Placeholder  string
	Value        string
	DefaultValue string
	Hint         string
	Autocomplete string
	Required     bool
	Inline       bool
	Checked      bool
	Multiple     bool
	Step         string
	Rows         int
	Accept       string
	ButtonLabel  string
	Title        string

	Before        template.HTML
	After         template.HTML
	BeforeWrapper template.HTML
	AfterWrapper  template.HTML

	// ExtraAttr replaces DefaultExtraAttr when non-nil.
	ExtraAttr []Attr

	Choices []Choice

	Options       []Option
	DefaultOption string
	SelectOption  []string

	// Content is trusted markup rendered as is by TypeHTML.
	Content template.HTML

	// RecaptchaFormName asks the builder's recaptcha renderer for a widget
	// ahead of a submit button.
	RecaptchaFormName string
}

// FormTag holds the attributes of the <form> element.
type FormTag struct {
	Action    string
	Class     string
	FormClass string
	ID        string
	Attr      template.HTMLAttr
}
