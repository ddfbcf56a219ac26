package i18n_test

import (
	"testing"

	"github.com/ninjahub/ninjahub-core/internal/i18n"
)

func newBundle(t *testing.T) *i18n.Bundle {
	t.Helper()
	b, err := i18n.NewBundle()
	if err != nil {
		t.Fatalf("NewBundle: %v", err)
	}
	return b
}

func TestPhrases_English(t *testing.T) {
	p := newBundle(t).Translator("en").Phrases()

	if len(p) != len(i18n.PhraseKeys) {
		t.Fatalf("got %d phrases, want %d", len(p), len(i18n.PhraseKeys))
	}
	if p["default"] != "This field is required." {
		t.Errorf("default = %q", p["default"])
	}
	if p["maxlength"] != "Please enter no more than {0} characters." {
		t.Errorf("maxlength = %q", p["maxlength"])
	}
	for k, v := range p {
		if v == "phrase_"+k {
			t.Errorf("phrase %s is untranslated", k)
		}
	}
}

func TestTranslator_Arabic(t *testing.T) {
	tr := newBundle(t).Translator("ar")
	if !tr.RTL() {
		t.Error("ar should be RTL")
	}
	if got := tr.T("mail_forgot_password_subject"); got == "Forgot Password" || got == "mail_forgot_password_subject" {
		t.Errorf("subject not translated: %q", got)
	}
}

func TestTranslator_FallbacksToID(t *testing.T) {
	tr := newBundle(t).Translator("fr")
	if got := tr.T("phrase_default"); got != "This field is required." {
		t.Errorf("fallback to English failed: %q", got)
	}
	if got := tr.T("no_such_message"); got != "no_such_message" {
		t.Errorf("unknown id = %q", got)
	}
}
