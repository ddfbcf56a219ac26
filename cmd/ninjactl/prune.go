package main

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/ninjahub/ninjahub-core/internal/hooks"
	"github.com/ninjahub/ninjahub-core/internal/infrastructure/postgres"
	"github.com/ninjahub/ninjahub-core/internal/usecase"
)

func newPruneCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete notifications beyond each user's limit",
		Long: `Runs the same pruning pass as the scheduler's ninja_check_notifications job.
Each user keeps their newest NOTIFICATIONS_LIMIT published notifications.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			logger := a.logger()

			return a.withPool(cmd.Context(), func(pool *pgxpool.Pool) error {
				pruner := usecase.NewNotificationPruner(
					postgres.NewNotificationRepository(pool),
					hooks.NewBus(logger),
					a.cfg.NotificationsLimit,
					logger,
				)

				if dryRun {
					ids, err := pruner.Preview(cmd.Context())
					if err != nil {
						return err
					}
					cmd.Printf("would delete %d notifications: %v\n", len(ids), ids)
					return nil
				}

				ids, err := pruner.Prune(cmd.Context())
				if err != nil {
					return err
				}
				cmd.Printf("deleted %d notifications\n", len(ids))
				return nil
			})
		},
	}
	cmd.Flags().Bool("dry-run", false, "list the notifications that would be deleted without deleting them")
	return cmd
}
