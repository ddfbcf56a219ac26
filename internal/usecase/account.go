package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ninjahub/ninjahub-core/internal/cryptox"
	"github.com/ninjahub/ninjahub-core/internal/domain"
	"github.com/ninjahub/ninjahub-core/internal/mail"
	"github.com/ninjahub/ninjahub-core/internal/metrics"
	"github.com/ninjahub/ninjahub-core/internal/repository"
)

const (
	defaultJWTTTL = 24 * time.Hour

	verificationCodeLength = 4
	verificationMail       = "account-verification/body"
	verificationSubject    = "Welcome to Nh - Please Verify Your Email"
)

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	PhoneNumber     string
}

type UpdateInput struct {
	Email       string
	FirstName   string
	LastName    string
	PhoneNumber string
	Language    string
}

// AccountUsecase registers users, signs them in and drives email
// verification.
type AccountUsecase struct {
	users  repository.UserRepository
	posts  *PostService
	mailer *mail.Mailer
	events Events
	jwtKey []byte
	jwtTTL time.Duration
	now    func() time.Time
	logger *slog.Logger
}

func NewAccountUsecase(
	users repository.UserRepository,
	posts *PostService,
	mailer *mail.Mailer,
	events Events,
	jwtKey []byte,
	logger *slog.Logger,
) *AccountUsecase {
	return &AccountUsecase{
		users:  users,
		posts:  posts,
		mailer: mailer,
		events: events,
		jwtKey: jwtKey,
		jwtTTL: defaultJWTTTL,
		now:    time.Now,
		logger: logger.With("component", "account"),
	}
}

// WithClock replaces the time source. Used by tests.
func (u *AccountUsecase) WithClock(now func() time.Time) *AccountUsecase {
	c := *u
	c.now = now
	return &c
}

// Register creates the user, its profile post and a pending verification
// code. The steps are not atomic: a failure after the user row is written
// leaves a user without a profile, which Login reports as invalid_profile.
func (u *AccountUsecase) Register(ctx context.Context, in RegisterInput) (user *domain.User, err error) {
	defer func() { metrics.AuthEventsTotal.WithLabelValues("register", outcome(err)).Inc() }()

	if in.Password != in.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	exists, err := u.users.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, domain.ErrExistingUserLogin
	}
	if exists, err = u.users.EmailExists(ctx, in.Email); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, domain.ErrExistingUserEmail
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	nu := domain.NewUser()
	nu.Username = in.Username
	nu.Email = in.Email
	nu.PasswordHash = hash
	_ = nu.Meta.Set(domain.MetaFirstName, in.FirstName)
	_ = nu.Meta.Set(domain.MetaLastName, in.LastName)
	_ = nu.Meta.Set(domain.MetaPhoneNumber, in.PhoneNumber)
	nu.NormalizeNames()
	_ = nu.Meta.Set(domain.MetaNickname, nu.DisplayName)

	user, err = u.users.Create(ctx, nu)
	if err != nil {
		return nil, err
	}

	profile := domain.NewPost(domain.TypeProfile)
	profile.Title = user.DisplayName
	if profile.Title == "" {
		profile.Title = user.Username
	}
	profile.AuthorID = user.ID
	_ = profile.SetMetaData("user_id", strconv.FormatInt(user.ID, 10))
	if profile, err = u.posts.Insert(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	profileID := strconv.FormatInt(profile.ID, 10)
	if err := u.users.SetMeta(ctx, user.ID, map[string]string{domain.MetaProfileID: profileID}); err != nil {
		return nil, fmt.Errorf("store profile id: %w", err)
	}
	_ = user.Meta.Set(domain.MetaProfileID, profileID)

	if err := u.setupVerification(ctx, user); err != nil {
		return nil, err
	}

	u.events.DoAction(ctx, HookAfterCreateUser, user)
	u.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and returns a signed session token. An
// unverified account gets a fresh code before the error is returned.
func (u *AccountUsecase) Login(ctx context.Context, identifier, password string) (token string, err error) {
	defer func() { metrics.AuthEventsTotal.WithLabelValues("login", outcome(err)).Inc() }()

	user, err := u.users.FindByLogin(ctx, identifier)
	if errors.Is(err, domain.ErrUserNotFound) {
		user, err = u.users.FindByEmail(ctx, identifier)
	}
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", domain.ErrInvalidUsername
	}
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			u.logger.WarnContext(ctx, "stored password hash unreadable", "user_id", user.ID, "error", err)
		}
		return "", domain.ErrInvalidPassword
	}

	if !user.Verified() {
		if err := u.setupVerification(ctx, user); err != nil {
			return "", err
		}
		return "", domain.ErrNotVerified
	}
	if user.ProfileID() == 0 {
		return "", domain.ErrInvalidProfile
	}

	return u.issueToken(user)
}

func (u *AccountUsecase) issueToken(user *domain.User) (string, error) {
	now := u.now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(u.jwtTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.jwtKey)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// setupVerification stores a new 4-digit code valid for five minutes and
// mails it.
func (u *AccountUsecase) setupVerification(ctx context.Context, user *domain.User) error {
	code, err := cryptox.GenerateDigits(verificationCodeLength)
	if err != nil {
		return err
	}
	values := map[string]string{
		domain.MetaAccountVerification:    "0",
		domain.MetaVerificationKey:        code,
		domain.MetaVerificationExpireDate: strconv.FormatInt(u.now().Add(domain.VerificationTTL).Unix(), 10),
	}
	if err := u.users.SetMeta(ctx, user.ID, values); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}
	user.Meta.Load(values)

	err = u.mailer.New().
		To(user.Email).
		Subject(verificationSubject).
		AsHTML(true).
		Template(verificationMail, mail.Vars{
			"display_name":      user.DisplayName,
			"verification_code": code,
			"expires_in":        int(domain.VerificationTTL / time.Minute),
		}).
		Send(ctx)
	if err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

// Verify marks the account verified when code matches and has not expired.
func (u *AccountUsecase) Verify(ctx context.Context, userID int64, code string) (err error) {
	defer func() { metrics.AuthEventsTotal.WithLabelValues("verify", outcome(err)).Inc() }()

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user.Verified() {
		return domain.ErrAlreadyVerified
	}

	stored := user.Meta.Get(domain.MetaVerificationKey)
	if stored == "" || !cryptox.Equal(stored, code) {
		return domain.ErrInvalidCode
	}
	expires, _ := strconv.ParseInt(user.Meta.Get(domain.MetaVerificationExpireDate), 10, 64)
	if expires < u.now().Unix() {
		return domain.ErrExpiredCode
	}

	err = u.users.SetMeta(ctx, user.ID, map[string]string{
		domain.MetaAccountVerification:    "1",
		domain.MetaVerificationKey:        "",
		domain.MetaVerificationExpireDate: "",
	})
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}

	u.events.DoAction(ctx, HookAfterVerifyUser, user)
	return nil
}

// ResendVerification issues and mails a new code.
func (u *AccountUsecase) ResendVerification(ctx context.Context, userID int64) error {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user.Verified() {
		return domain.ErrAlreadyVerified
	}
	return u.setupVerification(ctx, user)
}

// Update saves profile fields. Names are capitalized and the display name
// becomes "First Last".
func (u *AccountUsecase) Update(ctx context.Context, userID int64, in UpdateInput) (*domain.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if in.Email != "" && in.Email != user.Email {
		exists, err := u.users.EmailExists(ctx, in.Email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if exists {
			return nil, domain.ErrExistingUserEmail
		}
		user.Email = in.Email
	}

	_ = user.Meta.Set(domain.MetaFirstName, in.FirstName)
	_ = user.Meta.Set(domain.MetaLastName, in.LastName)
	if in.PhoneNumber != "" {
		_ = user.Meta.Set(domain.MetaPhoneNumber, in.PhoneNumber)
	}
	if in.Language != "" {
		_ = user.Meta.Set(domain.MetaSiteLanguage, in.Language)
	}
	user.NormalizeNames()

	if err := u.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if id := user.ProfileID(); id > 0 {
		profile, err := u.posts.Get(ctx, id)
		if err != nil && !errors.Is(err, domain.ErrPostNotFound) {
			return nil, err
		}
		if profile != nil && user.DisplayName != "" {
			profile.Title = user.DisplayName
			if _, err := u.posts.Update(ctx, profile); err != nil {
				return nil, fmt.Errorf("update profile: %w", err)
			}
		}
	}
	return user, nil
}

// SiteLanguage returns the language a user picked.
func (u *AccountUsecase) SiteLanguage(ctx context.Context, userID int64) (string, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Meta.Get(domain.MetaSiteLanguage), nil
}
