package domain

import (
	"errors"
	"fmt"
)

// CodedError is a validation failure with a machine-readable code and a
// message safe to show to the user. Package-level values are used as
// sentinels and compared with errors.Is.
type CodedError struct {
	Code string
	Msg  string
}

func (e *CodedError) Error() string { return e.Msg }

func newCoded(code, msg string) *CodedError {
	return &CodedError{Code: code, Msg: msg}
}

// CodeOf returns the code of the first CodedError in err's chain, or "".
func CodeOf(err error) string {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

var (
	ErrUnknownMetaKey = errors.New("unknown meta key")
	ErrNotFound       = errors.New("not found")

	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrPostNotFound       = fmt.Errorf("post %w", ErrNotFound)
	ErrAttachmentNotFound = fmt.Errorf("attachment %w", ErrNotFound)
)

// Posts
var (
	ErrInvalidPostID = newCoded("invalid_id", "No invalid post id")
	ErrNoPosts       = newCoded("not_found", "No posts available.")
	ErrEmptyTitle    = newCoded("empty_title", "Post title is required.")
)

// Attachments
var (
	ErrEmptyFile         = newCoded("empty_file", "Can't upload empty file")
	ErrFileTooLarge      = newCoded("file_size", "File too large. File must be less than 5 megabytes.")
	ErrInvalidFileType   = newCoded("file_type", "Invalid file type.")
	ErrAttachmentRemoval = newCoded("remove_failed", "Can't remove attachment")
)

// Request guards
var (
	ErrInvalidNonce = newCoded("invalid_nonce", "Security check failed. Please reload the page and try again.")
	ErrRateLimited  = newCoded("rate_limited", "Too many requests. Please try again later.")
)

// Recaptcha wraps a reCAPTCHA verifier's message as a coded error.
func Recaptcha(msg string) error {
	return newCoded("recaptcha", msg)
}
