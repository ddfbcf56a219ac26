// Package i18n loads the embedded translation files and translates message
// IDs for the site languages.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultLanguage is served when a user has not picked a language.
const DefaultLanguage = "en"

//go:embed locales/*.yaml
var localeFS embed.FS

// PhraseKeys are the client-side validation phrases, in the order they are
// published to the browser.
var PhraseKeys = []string{
	"default", "email", "number", "equalTo", "maxlength", "minlength", "max", "min",
	"pass_regex", "phone_regex", "intlTelNumber", "email_regex", "file_extension",
	"file_max_size", "choices_select", "noChoicesText", "time_regex", "englishOnly", "arabicOnly",
}

// Translator resolves message IDs for one language.
type Translator struct {
	lang      string
	localizer *i18n.Localizer
}

// Bundle holds every loaded locale.
type Bundle struct {
	bundle *i18n.Bundle
}

func NewBundle() (*Bundle, error) {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + f.Name())
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", f.Name(), err)
		}
		if _, err := b.ParseMessageFileBytes(data, f.Name()); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", f.Name(), err)
		}
	}
	return &Bundle{bundle: b}, nil
}

// Translator returns a translator for lang, falling back to English.
func (b *Bundle) Translator(lang string) *Translator {
	return &Translator{lang: lang, localizer: i18n.NewLocalizer(b.bundle, lang, DefaultLanguage)}
}

func (t *Translator) Lang() string { return t.lang }

// RTL reports whether the language is written right to left.
func (t *Translator) RTL() bool { return t.lang == "ar" }

// T translates messageID. An unknown ID is returned as is.
func (t *Translator) T(messageID string) string {
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		return messageID
	}
	return msg
}

// Phrases returns the validation phrases keyed as the browser expects them.
func (t *Translator) Phrases() map[string]string {
	out := make(map[string]string, len(PhraseKeys))
	for _, k := range PhraseKeys {
		out[k] = t.T("phrase_" + k)
	}
	return out
}
