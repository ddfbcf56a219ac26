package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/ninjahub/ninjahub-core/config"
	"github.com/ninjahub/ninjahub-core/internal/cryptox"
)

func testApp(out *bytes.Buffer) *app {
	return &app{
		out: out,
		loadConfig: func() (*config.Config, error) {
			return &config.Config{
				Env:                "local",
				LogLevel:           "error",
				DatabaseURL:        "postgres://unused",
				CryptorSecret:      "0123456789abcdef0123456789abcdef",
				NotificationsLimit: 20,
			}, nil
		},
		openPool: func(context.Context, string) (*pgxpool.Pool, error) {
			return nil, errors.New("connection refused")
		},
	}
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	out := a.out.(*bytes.Buffer)
	out.Reset()
	cmd := newRootCmd(a)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return strings.TrimSpace(out.String()), err
}

func TestToken_RoundTrip(t *testing.T) {
	a := testApp(&bytes.Buffer{})

	sealed, err := run(t, a, "token", "encrypt", "42")
	require.NoError(t, err)
	require.NotEmpty(t, sealed)
	require.NotContains(t, sealed, "42")

	plain, err := run(t, a, "token", "decrypt", sealed)
	require.NoError(t, err)
	require.Equal(t, "42", plain)

	_, err = run(t, a, "token", "decrypt", "garbage")
	require.ErrorIs(t, err, cryptox.ErrDecrypt)
}

func TestHashPassword(t *testing.T) {
	a := testApp(&bytes.Buffer{})

	hash, err := run(t, a, "hash-password", "S3cure!pass")
	require.NoError(t, err)
	require.NoError(t, cryptox.VerifyPassword("S3cure!pass", hash))
}

func TestConfigErrorStopsEveryCommand(t *testing.T) {
	a := testApp(&bytes.Buffer{})
	a.loadConfig = func() (*config.Config, error) { return nil, errors.New("DATABASE_URL is required") }

	_, err := run(t, a, "hash-password", "x")
	require.ErrorContains(t, err, "config: DATABASE_URL is required")
}

func TestDatabaseCommands_ReportConnectionFailure(t *testing.T) {
	a := testApp(&bytes.Buffer{})

	for _, args := range [][]string{
		{"migrate", "up"},
		{"migrate", "version"},
		{"prune", "--dry-run"},
	} {
		_, err := run(t, a, args...)
		require.ErrorContains(t, err, "db: connection refused", "args %v", args)
	}

	_, err := run(t, a, "migrate", "down", "--steps", "0")
	require.ErrorContains(t, err, "--steps must be at least 1")
}
