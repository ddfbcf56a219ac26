// Package usecase holds the application services behind the HTTP handlers,
// the scheduler and the operator CLI.
package usecase

import (
	"context"
	"regexp"

	"github.com/ninjahub/ninjahub-core/internal/domain"
)

// Cryptor seals reset tokens and attachment IDs.
type Cryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Events fires post-commit actions.
type Events interface {
	DoAction(ctx context.Context, hook string, args ...any)
}

// Filters lets registered callbacks rewrite a value.
type Filters interface {
	ApplyFilters(ctx context.Context, hook string, value any, args ...any) any
}

// Action hooks fired by the services.
const (
	HookAfterCreateUser = "ninja_after_create_user"
	HookAfterVerifyUser = "ninja_after_verify_user"
)

// AfterInsert, AfterUpdate and AfterDelete name the per-type post hooks.
func AfterInsert(postType string) string { return "ninja_after_insert_" + postType }
func AfterUpdate(postType string) string { return "ninja_after_update_" + postType }
func AfterDelete(postType string) string { return "ninja_after_delete_" + postType }

var (
	passwordLower   = regexp.MustCompile(`[a-z]`)
	passwordUpper   = regexp.MustCompile(`[A-Z]`)
	passwordDigit   = regexp.MustCompile(`[0-9]`)
	passwordSpecial = regexp.MustCompile(`[!@#$%^&*]`)
)

// MinPasswordLength matches the browser-side rule.
const MinPasswordLength = 8

// ValidatePassword enforces one lowercase letter, one uppercase letter, one
// digit and one of !@#$%^&*.
func ValidatePassword(p string) error {
	if len(p) < MinPasswordLength ||
		!passwordLower.MatchString(p) ||
		!passwordUpper.MatchString(p) ||
		!passwordDigit.MatchString(p) ||
		!passwordSpecial.MatchString(p) {
		return domain.ErrWeakPassword
	}
	return nil
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
