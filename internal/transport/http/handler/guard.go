package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ninjahub/ninjahub-core/internal/domain"
)

// FilterVerifyRecaptcha lets a reCAPTCHA integration veto a submission. The
// filter receives true and answers true to accept or a message to reject.
const FilterVerifyRecaptcha = "gglcptch_verify_recaptcha"

// NonceField is the request field carrying a form nonce.
const NonceField = "nonce"

// reCAPTCHA form names.
const (
	FormLogin          = "platform_login"
	FormRegistration   = "platform_registration"
	FormResetPassword  = "platform_reset_password"
	FormForgotPassword = "platform_forgot_password"
	FormAttachment     = "attachment_handler"
)

// Nonce actions, one per form.
const (
	NonceForgotPassword = "ninja_forgot_password"
	NonceResetPassword  = "ninja_reset_password"
	NonceAttachment     = "ninja_attachment"
)

type noncer interface {
	Create(action, session string) string
	Verify(nonce, action, session string) bool
}

type filterer interface {
	ApplyFilters(ctx context.Context, hook string, value any, args ...any) any
}

// Guard checks the nonce and reCAPTCHA answer of a form submission.
type Guard struct {
	nonces  noncer
	filters filterer
}

func NewGuard(nonces noncer, filters filterer) *Guard {
	return &Guard{nonces: nonces, filters: filters}
}

// Session identifies who a nonce was issued to: the signed-in user, or the
// empty session for guests.
func Session(c *gin.Context) string {
	if id, ok := userID(c); ok {
		return strconv.FormatInt(id, 10)
	}
	return ""
}

// Nonce issues a nonce for action bound to the caller's session.
func (g *Guard) Nonce(c *gin.Context, action string) string {
	return g.nonces.Create(action, Session(c))
}

// Check verifies nonce against action when action is non-empty, then asks
// the reCAPTCHA filter about formName when formName is non-empty.
func (g *Guard) Check(c *gin.Context, nonce, action, formName string) error {
	if action != "" && !g.nonces.Verify(nonce, action, Session(c)) {
		return domain.ErrInvalidNonce
	}
	if formName == "" || g.filters == nil {
		return nil
	}
	switch v := g.filters.ApplyFilters(c.Request.Context(), FilterVerifyRecaptcha, true, "string", formName).(type) {
	case string:
		return domain.Recaptcha(v)
	case bool:
		if !v {
			return domain.Recaptcha("Please verify you are not a robot.")
		}
	}
	return nil
}
