package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ninjahub/ninjahub-core/internal/cryptox"
	"github.com/ninjahub/ninjahub-core/internal/domain"
	"github.com/ninjahub/ninjahub-core/internal/mail"
	"github.com/ninjahub/ninjahub-core/internal/metrics"
	"github.com/ninjahub/ninjahub-core/internal/repository"
)

const (
	ResetPasswordPath     = "/my-account/reset-password"
	forgotPasswordMail    = "forgot-password/body"
	forgotPasswordSubject = "Forgot Password"
)

type ChangePasswordInput struct {
	Key             string
	Password        string
	ConfirmPassword string
}

// PasswordUsecase runs the forgot/reset password flow. A reset request is
// pending while the user's reset_password_key meta matches the key sealed
// in the emailed token, and consumed once that meta is cleared.
type PasswordUsecase struct {
	users   repository.UserRepository
	cryptor Cryptor
	mailer  *mail.Mailer
	siteURL string
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

func NewPasswordUsecase(users repository.UserRepository, cryptor Cryptor, mailer *mail.Mailer, siteURL string, logger *slog.Logger) *PasswordUsecase {
	return &PasswordUsecase{
		users:   users,
		cryptor: cryptor,
		mailer:  mailer,
		siteURL: siteURL,
		ttl:     domain.ResetTokenTTL,
		now:     time.Now,
		logger:  logger.With("component", "password"),
	}
}

// WithClock replaces the time source. Used by tests.
func (u *PasswordUsecase) WithClock(now func() time.Time) *PasswordUsecase {
	c := *u
	c.now = now
	return &c
}

// ResetLink builds the emailed link for an encrypted token.
func (u *PasswordUsecase) ResetLink(userID int64, token string) string {
	return u.siteURL + ResetPasswordPath + "?user=" + strconv.FormatInt(userID, 10) + "&key=" + url.QueryEscape(token)
}

// ForgotPassword resolves identifier as an email and then as a login, stores
// a fresh reset key and mails the reset link.
func (u *PasswordUsecase) ForgotPassword(ctx context.Context, identifier string) (err error) {
	defer func() { metrics.AuthEventsTotal.WithLabelValues("forgot_password", outcome(err)).Inc() }()

	user, err := u.findByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}

	key, err := cryptox.GenerateKey(cryptox.ResetKeyLength)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(domain.ResetToken{
		UserID:         user.ID,
		ResetKey:       key,
		ExpirationTime: u.now().Add(u.ttl).Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal reset token: %w", err)
	}
	token, err := u.cryptor.Encrypt(string(payload))
	if err != nil {
		return fmt.Errorf("encrypt reset token: %w", err)
	}

	if err := u.users.SetMeta(ctx, user.ID, map[string]string{domain.MetaResetPasswordKey: key}); err != nil {
		return fmt.Errorf("store reset key: %w", err)
	}

	err = u.mailer.New().
		To(user.Email).
		Subject(forgotPasswordSubject).
		AsHTML(true).
		Template(forgotPasswordMail, mail.Vars{
			"display_name": user.DisplayName,
			"user_login":   user.Username,
			"reset_link":   u.ResetLink(user.ID, token),
		}).
		Send(ctx)
	if err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}

	u.logger.InfoContext(ctx, "reset link sent", "user_id", user.ID)
	return nil
}

func (u *PasswordUsecase) findByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	user, err := u.users.FindByEmail(ctx, identifier)
	if errors.Is(err, domain.ErrUserNotFound) {
		user, err = u.users.FindByLogin(ctx, identifier)
	}
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidUsername
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// CheckResetKey validates an encrypted reset token and returns its user.
func (u *PasswordUsecase) CheckResetKey(ctx context.Context, key string) (*domain.User, error) {
	plain, err := u.cryptor.Decrypt(key)
	if err != nil {
		return nil, domain.ErrResetDecryption
	}

	var tok domain.ResetToken
	dec := json.NewDecoder(strings.NewReader(plain))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&tok); err != nil || tok.UserID <= 0 || tok.ResetKey == "" || tok.ExpirationTime <= 0 {
		return nil, domain.ErrResetShape
	}
	// The token is exactly one object; anything after it is tampering.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, domain.ErrResetShape
	}

	user, err := u.users.FindByID(ctx, tok.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrResetInvalidUser
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	stored := user.Meta.Get(domain.MetaResetPasswordKey)
	if stored == "" {
		return nil, domain.ErrResetEmptyKey
	}
	if !cryptox.Equal(stored, tok.ResetKey) {
		return nil, domain.ErrResetInvalidKey
	}
	if tok.Expired(u.now()) {
		return nil, domain.ErrResetExpired
	}
	return user, nil
}

// ChangePassword consumes a reset token. The repository clears the key only
// if it is still the one checked here, so a replayed or concurrent
// submission of the same token fails with ErrResetEmptyKey.
func (u *PasswordUsecase) ChangePassword(ctx context.Context, in ChangePasswordInput) (err error) {
	defer func() { metrics.AuthEventsTotal.WithLabelValues("change_password", outcome(err)).Inc() }()

	user, err := u.CheckResetKey(ctx, in.Key)
	if err != nil {
		return err
	}
	if in.Password != in.ConfirmPassword {
		return domain.ErrPasswordMismatch
	}
	if err := ValidatePassword(in.Password); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	resetKey := user.Meta.Get(domain.MetaResetPasswordKey)
	if err := u.users.ResetPassword(ctx, user.ID, resetKey, hash); err != nil {
		if domain.CodeOf(err) != "" {
			return err
		}
		return fmt.Errorf("reset password: %w", err)
	}

	u.logger.InfoContext(ctx, "password changed", "user_id", user.ID)
	return nil
}
