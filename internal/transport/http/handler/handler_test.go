package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ninjahub/ninjahub-core/internal/domain"
	"github.com/ninjahub/ninjahub-core/internal/forms"
	"github.com/ninjahub/ninjahub-core/internal/transport/http/handler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var testNow = time.Unix(1_760_000_000, 0)

func newNonces() *forms.Nonces {
	return forms.NewNonces([]byte("nonce-secret")).WithClock(func() time.Time { return testNow })
}

// fakeFilters answers the reCAPTCHA verification filter with verdict.
type fakeFilters struct {
	verdict any
	forms   []string
}

func (f *fakeFilters) ApplyFilters(_ context.Context, hook string, value any, args ...any) any {
	if hook != handler.FilterVerifyRecaptcha {
		return value
	}
	f.forms = append(f.forms, args[1].(string))
	if f.verdict == nil {
		return value
	}
	return f.verdict
}

// withUser stands in for the Auth middleware.
func withUser(id int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", id)
		c.Next()
	}
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return e
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidPassword, http.StatusUnauthorized},
		{domain.ErrNotVerified, http.StatusUnauthorized},
		{domain.ErrWeakPassword, http.StatusBadRequest},
		{domain.ErrResetExpired, http.StatusBadRequest},
		{domain.ErrNoPosts, http.StatusNotFound},
		{domain.ErrRateLimited, http.StatusTooManyRequests},
		{domain.ErrUserNotFound, http.StatusNotFound},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{errors.New("pool closed"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := handler.StatusOf(tc.err); got != tc.want {
			t.Errorf("StatusOf(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
