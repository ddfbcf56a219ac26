package domain_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ninjahub/ninjahub-core/internal/domain"
)

func TestMeta_RejectsUnknownKey(t *testing.T) {
	p := domain.NewPost(domain.TypeNotification)

	if err := p.SetMetaData("seen", "1"); err != nil {
		t.Fatalf("declared key: unexpected error %v", err)
	}
	if got := p.GetMetaData("seen"); got != "1" {
		t.Errorf("seen = %q, want 1", got)
	}

	err := p.SetMetaData("colour", "red")
	if !errors.Is(err, domain.ErrUnknownMetaKey) {
		t.Fatalf("want ErrUnknownMetaKey, got %v", err)
	}
	if _, ok := p.Meta.Values()["colour"]; ok {
		t.Error("unknown key was stored")
	}
}

func TestMeta_LoadSkipsUndeclared(t *testing.T) {
	m := domain.UserMetaSchema.New()
	m.Load(map[string]string{"first_name": "ada", "legacy_field": "x"})

	if m.Get("first_name") != "ada" {
		t.Errorf("first_name = %q", m.Get("first_name"))
	}
	if _, ok := m.Values()["legacy_field"]; ok {
		t.Error("undeclared key loaded")
	}
}

func TestNewUser_Defaults(t *testing.T) {
	u := domain.NewUser()

	if u.ProfileID() != 0 || u.AvatarID() != 0 {
		t.Errorf("profile/avatar = %d/%d, want 0/0", u.ProfileID(), u.AvatarID())
	}
	if u.Verified() {
		t.Error("new user should not be verified")
	}
	if got := u.Meta.Get(domain.MetaSiteLanguage); got != "en" {
		t.Errorf("site_language = %q, want en", got)
	}
}

func TestUser_NormalizeNames(t *testing.T) {
	u := domain.NewUser()
	_ = u.Meta.Set(domain.MetaFirstName, " ada")
	_ = u.Meta.Set(domain.MetaLastName, "lovelace")

	u.NormalizeNames()

	if u.FirstName() != "Ada" || u.LastName() != "Lovelace" {
		t.Errorf("names = %q %q", u.FirstName(), u.LastName())
	}
	if u.DisplayName != "Ada Lovelace" {
		t.Errorf("DisplayName = %q", u.DisplayName)
	}
}

func TestResetToken_Expired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	if (domain.ResetToken{ExpirationTime: now.Unix()}).Expired(now) {
		t.Error("token expiring this second should still be valid")
	}
	if !(domain.ResetToken{ExpirationTime: now.Unix() - 1}).Expired(now) {
		t.Error("token from the past should be expired")
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("check reset key: %w", domain.ErrResetExpired)

	if got := domain.CodeOf(wrapped); got != "expire_date" {
		t.Errorf("CodeOf = %q, want expire_date", got)
	}
	if got := domain.CodeOf(errors.New("plain")); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
}

func TestPost_TermIDsDeduplicated(t *testing.T) {
	p := domain.NewPost("")
	p.Taxonomy["category"] = []domain.Term{{ID: 3}, {ID: 1}}
	p.Taxonomy["tag"] = []domain.Term{{ID: 3}}

	got := p.TermIDs()
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("TermIDs = %v, want [1 3]", got)
	}
	if p.Type != domain.TypePost || p.Status != domain.StatusPublish {
		t.Errorf("defaults = %s/%s", p.Type, p.Status)
	}
}
