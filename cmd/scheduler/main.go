package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ninjahub/ninjahub-core/config"
	"github.com/ninjahub/ninjahub-core/internal/health"
	"github.com/ninjahub/ninjahub-core/internal/hooks"
	"github.com/ninjahub/ninjahub-core/internal/infrastructure/postgres"
	ctxlog "github.com/ninjahub/ninjahub-core/internal/log"
	"github.com/ninjahub/ninjahub-core/internal/metrics"
	"github.com/ninjahub/ninjahub-core/internal/scheduler"
	"github.com/ninjahub/ninjahub-core/internal/usecase"
)

// pruneTimeout bounds one pruning run.
const pruneTimeout = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := ctxlog.New(os.Stdout, cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL,
		postgres.WithMaxConns(4),
		postgres.WithApplicationName("ninjahub-scheduler"),
	)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	metrics.Register()
	checker := health.NewChecker(logger, prometheus.DefaultRegisterer, health.Dependency{Name: "postgres", Pinger: pool})

	bus := hooks.NewBus(logger)
	pruner := usecase.NewNotificationPruner(
		postgres.NewNotificationRepository(pool),
		bus,
		cfg.NotificationsLimit,
		logger,
	)

	sched := scheduler.New(logger, pruneTimeout)
	if err := sched.Add(scheduler.CheckNotifications, cfg.PruneSchedule, scheduler.PruneJob(pruner, logger)); err != nil {
		stop()
		log.Fatalf("schedule: %v", err)
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	// Blocks until a signal arrives and running jobs return.
	sched.Start(ctx)
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}
