package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ninjahub/ninjahub-core/internal/domain"
)

const (
	errInternalServer = "Internal server error"
	errUnauthorized   = "Unauthorized"
	errNotFound       = "Not found"
	errBadRequest     = "Bad request"
)

// response is the envelope every AJAX action answers with.
type response struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Data    any    `json:"data,omitempty"`
}

func ok(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusOK, response{Success: true, Msg: msg, Data: data})
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, response{Msg: msg})
}

// credential codes answer 401; the rest of the coded errors are the caller's
// fault and answer 400.
var unauthorizedCodes = map[string]bool{
	"invalid_username":     true,
	"invalid_password":     true,
	"invalid_profile":      true,
	"account_verification": true,
}

// StatusOf maps an error onto the HTTP status the AJAX layer answers with.
func StatusOf(err error) int {
	switch code := domain.CodeOf(err); {
	case code == "rate_limited":
		return http.StatusTooManyRequests
	case code == "not_found":
		return http.StatusNotFound
	case unauthorizedCodes[code]:
		return http.StatusUnauthorized
	case code != "":
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respondError renders coded errors with their message. Anything else is
// logged and hidden behind a generic 500.
func respondError(c *gin.Context, logger *slog.Logger, op string, err error) {
	status := StatusOf(err)
	switch {
	case domain.CodeOf(err) != "":
		fail(c, status, err.Error())
	case status == http.StatusUnauthorized:
		fail(c, status, errUnauthorized)
	case status == http.StatusNotFound:
		fail(c, status, errNotFound)
	default:
		logger.ErrorContext(c.Request.Context(), op, "error", err)
		fail(c, http.StatusInternalServerError, errInternalServer)
	}
}

// userID reads the ID the Auth middleware stored.
func userID(c *gin.Context) (int64, bool) {
	id, ok := c.Get("userID")
	if !ok {
		return 0, false
	}
	v, ok := id.(int64)
	return v, ok && v > 0
}
