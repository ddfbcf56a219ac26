package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ninjahub/ninjahub-core/internal/domain"
	"github.com/ninjahub/ninjahub-core/internal/metrics"
	"github.com/ninjahub/ninjahub-core/internal/repository"
)

// NotificationPruner keeps the newest notifications of every author and
// permanently deletes the rest.
type NotificationPruner struct {
	repo   repository.NotificationRepository
	events Events
	keep   int
	logger *slog.Logger
}

func NewNotificationPruner(repo repository.NotificationRepository, events Events, keep int, logger *slog.Logger) *NotificationPruner {
	return &NotificationPruner{
		repo:   repo,
		events: events,
		keep:   keep,
		logger: logger.With("component", "notification_pruner"),
	}
}

// Preview returns the IDs a prune would delete, without deleting them.
func (p *NotificationPruner) Preview(ctx context.Context) ([]int64, error) {
	ids, err := p.repo.ExcessIDs(ctx, p.keep)
	if err != nil {
		return nil, fmt.Errorf("select excess notifications: %w", err)
	}
	return ids, nil
}

// Prune deletes every notification beyond the newest keep per author and
// fires the delete hook for each once the transaction has committed.
func (p *NotificationPruner) Prune(ctx context.Context) ([]int64, error) {
	start := time.Now()
	ids, err := p.repo.PruneExcess(ctx, p.keep)
	metrics.PruneDuration.Observe(time.Since(start).Seconds())
	metrics.PruneRunsTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		p.logger.ErrorContext(ctx, "prune failed", "error", err)
		return nil, fmt.Errorf("prune notifications: %w", err)
	}

	metrics.PruneDeletedTotal.Add(float64(len(ids)))
	hook := AfterDelete(domain.TypeNotification)
	for _, id := range ids {
		p.events.DoAction(ctx, hook, id, true)
	}

	p.logger.InfoContext(ctx, "notifications pruned", "deleted", len(ids), "keep", p.keep)
	return ids, nil
}
