package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// ExcessIDs returns, for every author with more than keep published
// notifications, the IDs beyond the newest keep. Nothing is modified.
func (r *NotificationRepository) ExcessIDs(ctx context.Context, keep int) ([]int64, error) {
	var ids []int64
	err := withTx(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		var err error
		ids, err = selectExcess(ctx, tx, keep)
		return err
	})
	return ids, err
}

// PruneExcess permanently deletes the IDs ExcessIDs would return. Selection
// and deletion share one REPEATABLE READ snapshot.
func (r *NotificationRepository) PruneExcess(ctx context.Context, keep int) ([]int64, error) {
	var deleted []int64
	err := withTx(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.RepeatableRead}, func(tx pgx.Tx) error {
		ids, err := selectExcess(ctx, tx, keep)
		if err != nil || len(ids) == 0 {
			return err
		}

		rows, err := tx.Query(ctx, `DELETE FROM posts WHERE id = ANY($1) RETURNING id`, ids)
		if err != nil {
			return fmt.Errorf("delete notifications: %w", err)
		}
		deleted, err = pgx.CollectRows(rows, pgx.RowTo[int64])
		if err != nil {
			return fmt.Errorf("collect deleted: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func selectExcess(ctx context.Context, tx pgx.Tx, keep int) ([]int64, error) {
	rows, err := tx.Query(ctx, `
		SELECT author_id
		FROM   posts
		WHERE  type = 'notification' AND status = 'publish'
		GROUP  BY author_id
		HAVING COUNT(*) > $1
		ORDER  BY author_id`, keep)
	if err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}
	authors, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("collect authors: %w", err)
	}

	var ids []int64
	for _, author := range authors {
		rows, err := tx.Query(ctx, `
			SELECT id
			FROM   posts
			WHERE  type = 'notification' AND status = 'publish' AND author_id = $1
			ORDER  BY id DESC
			OFFSET $2`, author, keep)
		if err != nil {
			return nil, fmt.Errorf("select excess for author %d: %w", author, err)
		}
		excess, err := pgx.CollectRows(rows, pgx.RowTo[int64])
		if err != nil {
			return nil, fmt.Errorf("collect excess for author %d: %w", author, err)
		}
		ids = append(ids, excess...)
	}
	return ids, nil
}
