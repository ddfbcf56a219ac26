// ninjactl is the operator CLI: schema migrations, manual notification
// pruning, and token and password utilities.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/ninjahub/ninjahub-core/config"
	"github.com/ninjahub/ninjahub-core/internal/cryptox"
	"github.com/ninjahub/ninjahub-core/internal/infrastructure/postgres"
	ctxlog "github.com/ninjahub/ninjahub-core/internal/log"
)

// app carries what subcommands share. Fields are swapped in tests.
type app struct {
	out        io.Writer
	loadConfig func() (*config.Config, error)
	openPool   func(ctx context.Context, url string) (*pgxpool.Pool, error)

	cfg *config.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		out:        os.Stdout,
		loadConfig: config.Load,
		openPool: func(ctx context.Context, url string) (*pgxpool.Pool, error) {
			return postgres.NewPool(ctx, url, postgres.WithMaxConns(2), postgres.WithApplicationName("ninjactl"))
		},
	}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "ninjactl",
		Short:        "Operate a NinjaHub deployment",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			a.cfg = cfg
			return nil
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(a.out)

	root.AddCommand(
		newMigrateCmd(a),
		newPruneCmd(a),
		newTokenCmd(a),
		newHashPasswordCmd(),
	)
	return root
}

func (a *app) logger() *slog.Logger {
	return ctxlog.New(os.Stderr, a.cfg.Env, a.cfg.SlogLevel())
}

// withPool opens a pool for the duration of fn.
func (a *app) withPool(ctx context.Context, fn func(*pgxpool.Pool) error) error {
	pool, err := a.openPool(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()
	return fn(pool)
}

func (a *app) cryptor() (*cryptox.Cryptor, error) {
	var opts []cryptox.Option
	if a.cfg.CryptorLegacyKey != "" {
		legacy, err := cryptox.NewLegacyCBC(a.cfg.CryptorLegacyKey, a.cfg.CryptorLegacyIV)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cryptox.WithLegacy(legacy))
	}
	return cryptox.New(a.cfg.CryptorSecret, opts...)
}
