package domain

import (
	"errors"
	"time"
)

// ResetTokenTTL is how long a forgot-password link stays valid.
const ResetTokenTTL = time.Hour

// VerificationTTL is how long an account verification code stays valid.
const VerificationTTL = 5 * time.Minute

var ErrUnauthorized = errors.New("unauthorized")

// Registration and login
var (
	ErrExistingUserLogin = newCoded("existing_user_login", "Sorry, this phone number already exists!")
	ErrExistingUserEmail = newCoded("existing_user_email", "Sorry, that email already exists!")
	ErrInvalidUsername   = newCoded("invalid_username", "Your login credentials are invalid.")
	ErrInvalidPassword   = newCoded("invalid_password", "Your login credentials are invalid.")
	ErrNotVerified       = newCoded("account_verification", "Your account is pending! Please check your E-mail inbox for the verification code.")
	ErrInvalidProfile    = newCoded("invalid_profile", "This account is temporarily disabled or blocked. Please contact us.")
	ErrInvalidCode       = newCoded("invalid_verification_code", "Your verification code is invalid!.")
	ErrExpiredCode       = newCoded("expired_verification_code", "Your verification code is expired.")
	ErrAlreadyVerified   = newCoded("already_verified", "Your account is already verified.")
)

// Reset-password flow. Every failure except expiry shares one message so the
// response does not reveal which check rejected the token.
const resetKeyInvalid = "Your reset key is invalid!."

var (
	ErrResetDecryption  = newCoded("failed_decryption", resetKeyInvalid)
	ErrResetShape       = newCoded("invalid_key_shape", resetKeyInvalid)
	ErrResetInvalidUser = newCoded("invalid_user", resetKeyInvalid)
	ErrResetEmptyKey    = newCoded("empty_key", resetKeyInvalid)
	ErrResetInvalidKey  = newCoded("invalid_key", resetKeyInvalid)
	ErrResetExpired     = newCoded("expire_date", "Your reset key is expired.")

	ErrPasswordMismatch = newCoded("password_mismatch", "Passwords do not match.")
	ErrWeakPassword     = newCoded("weak_password", "Your password must contain at least one lowercase letter, one uppercase letter, one digit, and one special character from the following: ! @ # $ % ^ & *.")
)

// ResetToken is the payload encrypted into a reset-password link.
type ResetToken struct {
	UserID         int64  `json:"user_id"`
	ResetKey       string `json:"reset_key"`
	ExpirationTime int64  `json:"expiration_time"`
}

// Expired reports whether the token's expiration time has passed. A token
// is still valid during the second it expires in.
func (t ResetToken) Expired(now time.Time) bool {
	return t.ExpirationTime < now.Unix()
}
