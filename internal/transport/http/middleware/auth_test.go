package middleware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ninjahub/ninjahub-core/internal/transport/http/middleware"
)

const testKey = "middleware-test-secret-32-chars!!"

func init() {
	gin.SetMode(gin.TestMode)
}

// newEngine builds a minimal gin engine with the Auth middleware protecting GET /protected.
// The handler writes the userID and role from context so we can assert they were set.
func newEngine() *gin.Engine {
	r := gin.New()
	r.GET("/protected", middleware.Auth([]byte(testKey)), func(c *gin.Context) {
		userID, _ := c.Get("userID")
		c.String(http.StatusOK, "%T:%v:%s", userID, userID, c.GetString("role"))
	})
	r.GET("/admin", middleware.Auth([]byte(testKey)), middleware.RequireRole("administrator"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func makeJWT(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign jwt: %v", err)
	}
	return s
}

func do(t *testing.T, path, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	newEngine().ServeHTTP(w, req)
	return w
}

func TestAuth_Rejects(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired", "Bearer " + makeJWT(t, []byte(testKey), jwt.MapClaims{
			"sub": "1", "exp": now.Add(-time.Hour).Unix(), "iat": now.Add(-2 * time.Hour).Unix(),
		})},
		{"wrong key", "Bearer " + makeJWT(t, []byte("different-key-that-is-32-chars!!"), jwt.MapClaims{
			"sub": "1", "exp": now.Add(time.Hour).Unix(),
		})},
		{"no expiry", "Bearer " + makeJWT(t, []byte(testKey), jwt.MapClaims{"sub": "1"})},
		{"non-numeric subject", "Bearer " + makeJWT(t, []byte(testKey), jwt.MapClaims{
			"sub": "user-abc", "exp": now.Add(time.Hour).Unix(),
		})},
		{"zero subject", "Bearer " + makeJWT(t, []byte(testKey), jwt.MapClaims{
			"sub": "0", "exp": now.Add(time.Hour).Unix(),
		})},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if w := do(t, "/protected", tc.header); w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestAuth_ValidToken_PassesAndSetsUserID(t *testing.T) {
	tok := makeJWT(t, []byte(testKey), jwt.MapClaims{
		"sub":  "42",
		"role": "subscriber",
		"exp":  time.Now().Add(time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	})

	w := do(t, "/protected", "Bearer "+tok)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got, want := w.Body.String(), fmt.Sprintf("%T:%v:%s", int64(42), 42, "subscriber"); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestRequireRole(t *testing.T) {
	token := func(role string) string {
		return "Bearer " + makeJWT(t, []byte(testKey), jwt.MapClaims{
			"sub": "1", "role": role, "exp": time.Now().Add(time.Hour).Unix(),
		})
	}
	if w := do(t, "/admin", token("subscriber")); w.Code != http.StatusForbidden {
		t.Errorf("subscriber status = %d, want 403", w.Code)
	}
	if w := do(t, "/admin", token("administrator")); w.Code != http.StatusNoContent {
		t.Errorf("administrator status = %d, want 204", w.Code)
	}
}
