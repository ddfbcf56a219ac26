package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ninjahub/ninjahub-core/internal/transport/http/middleware"
)

func TestRateLimit_PerIP(t *testing.T) {
	r := gin.New()
	r.POST("/ajax/login", middleware.RateLimit(middleware.RateLimitConfig{Requests: 2, Window: time.Minute, Burst: 2}),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/ajax/login", nil)
		req.RemoteAddr = ip + ":40000"
		r.ServeHTTP(w, req)
		return w
	}

	for i := range 2 {
		if w := send("10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, w.Code)
		}
	}
	w := send("10.0.0.1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	if w := send("10.0.0.2"); w.Code != http.StatusOK {
		t.Errorf("other IP status = %d, want 200", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func(id string) string {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if id != "" {
			req.Header.Set("X-Request-ID", id)
		}
		r.ServeHTTP(w, req)
		return w.Header().Get("X-Request-ID")
	}

	if got := get("abc-123"); got != "abc-123" {
		t.Errorf("kept id = %q", got)
	}
	if got := get("bad id\twith spaces"); got == "" || got == "bad id\twith spaces" {
		t.Errorf("invalid incoming id not replaced: %q", got)
	}
	if got := get(""); len(got) != 36 {
		t.Errorf("generated id = %q, want a UUID", got)
	}
}
