package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	ctxlog "github.com/ninjahub/ninjahub-core/internal/log"
	"github.com/ninjahub/ninjahub-core/internal/requestid"
)

func TestNew_JSONCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := ctxlog.New(&buf, "production", slog.LevelInfo).With("component", "test")

	ctx := requestid.WithRequestID(context.Background(), "req-1")
	logger.DebugContext(ctx, "hidden")
	logger.InfoContext(ctx, "hello")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("want one JSON record, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "hello" || rec["request_id"] != "req-1" || rec["component"] != "test" {
		t.Errorf("record = %v", rec)
	}
}

func TestNew_LocalIsText(t *testing.T) {
	var buf bytes.Buffer
	ctxlog.New(&buf, "local", slog.LevelDebug).Debug("tinted")
	if buf.Len() == 0 || json.Valid(buf.Bytes()) {
		t.Errorf("local output = %q", buf.String())
	}
}

func TestContextHandler_AddsUserID(t *testing.T) {
	var buf bytes.Buffer
	logger := ctxlog.New(&buf, "staging", slog.LevelInfo)

	logger.InfoContext(ctxlog.WithUserID(context.Background(), 42), "logged in")
	logger.InfoContext(context.Background(), "guest")

	dec := json.NewDecoder(&buf)
	var user, guest map[string]any
	if err := dec.Decode(&user); err != nil {
		t.Fatal(err)
	}
	if err := dec.Decode(&guest); err != nil {
		t.Fatal(err)
	}
	if user["user_id"] != float64(42) {
		t.Errorf("user record = %v", user)
	}
	if _, ok := guest["user_id"]; ok {
		t.Errorf("guest record carries user_id: %v", guest)
	}
}
