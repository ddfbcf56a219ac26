package scheduler

import (
	"context"
	"log/slog"
)

// CheckNotifications is the name of the notification pruning job.
const CheckNotifications = "ninja_check_notifications"

// Pruner deletes notifications beyond the retention limit.
type Pruner interface {
	Prune(ctx context.Context) ([]int64, error)
}

// PruneJob wraps p as a Job that logs how many notifications it removed.
func PruneJob(p Pruner, logger *slog.Logger) Job {
	logger = logger.With("job", CheckNotifications)
	return func(ctx context.Context) error {
		ids, err := p.Prune(ctx)
		if err != nil {
			return err
		}
		if len(ids) > 0 {
			logger.InfoContext(ctx, "notifications pruned", "count", len(ids))
		}
		return nil
	}
}
