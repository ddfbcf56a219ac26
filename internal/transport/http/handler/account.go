package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ninjahub/ninjahub-core/internal/domain"
	"github.com/ninjahub/ninjahub-core/internal/usecase"
)

// accountUsecaser is the subset of AccountUsecase the handler needs.
type accountUsecaser interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, identifier, password string) (string, error)
	Verify(ctx context.Context, userID int64, code string) error
	ResendVerification(ctx context.Context, userID int64) error
}

type AccountHandler struct {
	accounts accountUsecaser
	guard    *Guard
	logger   *slog.Logger
}

func NewAccountHandler(accounts accountUsecaser, guard *Guard, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		guard:    guard,
		logger:   logger.With("component", "account_handler"),
	}
}

type loginRequest struct {
	UserLogin    string `form:"user_login"    json:"user_login"    binding:"required"`
	UserPassword string `form:"user_password" json:"user_password" binding:"required"`
}

// POST /ajax/login
func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, errBadRequest)
		return
	}
	if err := h.guard.Check(c, "", "", FormLogin); err != nil {
		respondError(c, h.logger, "login guard", err)
		return
	}

	token, err := h.accounts.Login(c.Request.Context(), req.UserLogin, req.UserPassword)
	if err != nil {
		respondError(c, h.logger, "login", err)
		return
	}
	ok(c, "Logged in successfully.", gin.H{"token": token})
}

type registerRequest struct {
	UserLogin       string `form:"user_login"       json:"user_login"       binding:"required"`
	UserEmail       string `form:"user_email"       json:"user_email"       binding:"required,email"`
	UserPassword    string `form:"user_password"    json:"user_password"    binding:"required"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password" binding:"required"`
	FirstName       string `form:"first_name"       json:"first_name"`
	LastName        string `form:"last_name"        json:"last_name"`
	PhoneNumber     string `form:"phone_number"     json:"phone_number"`
}

// POST /ajax/register
func (h *AccountHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, errBadRequest)
		return
	}
	if err := h.guard.Check(c, "", "", FormRegistration); err != nil {
		respondError(c, h.logger, "register guard", err)
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), usecase.RegisterInput{
		Username:        req.UserLogin,
		Email:           req.UserEmail,
		Password:        req.UserPassword,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		PhoneNumber:     req.PhoneNumber,
	})
	if err != nil {
		respondError(c, h.logger, "register", err)
		return
	}
	c.JSON(http.StatusCreated, response{
		Success: true,
		Msg:     "Your account has been created. Please check your E-mail inbox for the verification code.",
		Data:    gin.H{"user_id": user.ID},
	})
}

type verifyRequest struct {
	Code string `form:"verification_code" json:"verification_code" binding:"required,len=4,numeric"`
}

// POST /ajax/verify-account
func (h *AccountHandler) VerifyAccount(c *gin.Context) {
	id, authed := userID(c)
	if !authed {
		fail(c, http.StatusUnauthorized, errUnauthorized)
		return
	}
	var req verifyRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, h.logger, "verify account", domain.ErrInvalidCode)
		return
	}

	if err := h.accounts.Verify(c.Request.Context(), id, req.Code); err != nil {
		respondError(c, h.logger, "verify account", err)
		return
	}
	ok(c, "Your account has been verified.", nil)
}

// POST /ajax/resend-verification
func (h *AccountHandler) ResendVerification(c *gin.Context) {
	id, authed := userID(c)
	if !authed {
		fail(c, http.StatusUnauthorized, errUnauthorized)
		return
	}
	if err := h.accounts.ResendVerification(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "resend verification", err)
		return
	}
	ok(c, "A new verification code has been sent to your E-mail.", nil)
}
