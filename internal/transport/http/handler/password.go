package handler

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ninjahub/ninjahub-core/internal/domain"
	"github.com/ninjahub/ninjahub-core/internal/forms"
	"github.com/ninjahub/ninjahub-core/internal/usecase"
)

// passwordUsecaser is the subset of PasswordUsecase the handler needs.
type passwordUsecaser interface {
	ForgotPassword(ctx context.Context, identifier string) error
	CheckResetKey(ctx context.Context, key string) (*domain.User, error)
	ChangePassword(ctx context.Context, in usecase.ChangePasswordInput) error
}

// FormFactory returns a form builder whose nonces are bound to session.
type FormFactory func(session string) *forms.Builder

type PasswordHandler struct {
	passwords passwordUsecaser
	guard     *Guard
	forms     FormFactory
	logger    *slog.Logger
}

func NewPasswordHandler(passwords passwordUsecaser, guard *Guard, forms FormFactory, logger *slog.Logger) *PasswordHandler {
	return &PasswordHandler{
		passwords: passwords,
		guard:     guard,
		forms:     forms,
		logger:    logger.With("component", "password_handler"),
	}
}

type forgotPasswordRequest struct {
	UserLogin string `form:"user_login" json:"user_login" binding:"required"`
	Nonce     string `form:"nonce"      json:"nonce"`
}

// POST /ajax/forgot-password
func (h *PasswordHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, errBadRequest)
		return
	}
	if err := h.guard.Check(c, req.Nonce, NonceForgotPassword, FormForgotPassword); err != nil {
		respondError(c, h.logger, "forgot password guard", err)
		return
	}

	if err := h.passwords.ForgotPassword(c.Request.Context(), req.UserLogin); err != nil {
		respondError(c, h.logger, "forgot password", err)
		return
	}
	ok(c, "Please check your E-mail inbox for the reset link.", nil)
}

type changePasswordRequest struct {
	Key             string `form:"key"              json:"key"`
	UserPassword    string `form:"user_password"    json:"user_password"    binding:"required"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password" binding:"required"`
	Nonce           string `form:"nonce"            json:"nonce"`
}

// POST /ajax/change-password
func (h *PasswordHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, errBadRequest)
		return
	}
	if err := h.guard.Check(c, req.Nonce, NonceResetPassword, FormResetPassword); err != nil {
		respondError(c, h.logger, "change password guard", err)
		return
	}

	err := h.passwords.ChangePassword(c.Request.Context(), usecase.ChangePasswordInput{
		Key:             req.Key,
		Password:        req.UserPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		respondError(c, h.logger, "change password", err)
		return
	}
	ok(c, "Your password has been changed. You can now log in.", nil)
}

// pageView feeds the account page layout.
type pageView struct {
	Title string
	Error string
	Form  template.HTML
}

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body class="ninja-account">
<main class="container">
<h1>{{.Title}}</h1>
{{if .Error}}<div class="alert alert-danger" role="alert">{{.Error}}</div>{{end}}
{{.Form}}
</main>
</body>
</html>`))

func (h *PasswordHandler) render(c *gin.Context, status int, view pageView) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(c.Writer, view); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "render page", "error", err)
	}
}

func forgotPasswordFields() []forms.Field {
	return []forms.Field{
		{Type: forms.TypeText, Name: "user_login", Label: "Phone number or E-mail", Required: true, Order: 10,
			Autocomplete: "username"},
		{Type: forms.TypeNonce, Name: NonceField, Value: NonceForgotPassword, Order: 90},
		{Type: forms.TypeSubmit, Name: "forgot_password_submit", Value: "Send reset link", Order: 100,
			RecaptchaFormName: FormForgotPassword},
	}
}

func resetPasswordFields(key string) []forms.Field {
	return []forms.Field{
		{Type: forms.TypePassword, Name: "user_password", Label: "New password", Required: true, Order: 10,
			Autocomplete: "new-password"},
		{Type: forms.TypePassword, Name: "confirm_password", Label: "Confirm new password", Required: true, Order: 20,
			Autocomplete: "new-password"},
		{Type: forms.TypeHidden, Name: "key", Value: key, Order: 80},
		{Type: forms.TypeNonce, Name: NonceField, Value: NonceResetPassword, Order: 90},
		{Type: forms.TypeSubmit, Name: "change_password_submit", Value: "Change password", Order: 100,
			RecaptchaFormName: FormResetPassword},
	}
}

// GET /my-account/forgot-password
func (h *PasswordHandler) ForgotPasswordPage(c *gin.Context) {
	form, err := h.forms(Session(c)).CreateForm(forgotPasswordFields(), forms.FormTag{
		Action: "/ajax/forgot-password",
		ID:     "forgot-password",
		Class:  "ninja-forgot-password",
	})
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "build forgot password form", "error", err)
		c.String(http.StatusInternalServerError, errInternalServer)
		return
	}
	h.render(c, http.StatusOK, pageView{Title: "Forgot Password", Form: form})
}

// GET /my-account/reset-password?user=<id>&key=<token>
// An unusable key shows its message in place of the form.
func (h *PasswordHandler) ResetPasswordPage(c *gin.Context) {
	key := c.Query("key")
	if _, err := h.passwords.CheckResetKey(c.Request.Context(), key); err != nil {
		if domain.CodeOf(err) == "" {
			h.logger.ErrorContext(c.Request.Context(), "check reset key", "error", err)
			c.String(http.StatusInternalServerError, errInternalServer)
			return
		}
		h.render(c, http.StatusBadRequest, pageView{Title: "Reset Password", Error: err.Error()})
		return
	}

	form, err := h.forms(Session(c)).CreateForm(resetPasswordFields(key), forms.FormTag{
		Action: "/ajax/change-password",
		ID:     "reset-password",
		Class:  "ninja-reset-password",
	})
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "build reset password form", "error", err)
		c.String(http.StatusInternalServerError, errInternalServer)
		return
	}
	h.render(c, http.StatusOK, pageView{Title: "Reset Password", Form: form})
}
