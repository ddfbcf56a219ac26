package repository

import (
	"context"

	"github.com/ninjahub/ninjahub-core/internal/domain"
)

// PostRepository persists posts of every type. Insert and Update write the
// row, meta and term associations atomically.
type PostRepository interface {
	Insert(ctx context.Context, p *domain.Post) (*domain.Post, error)
	Update(ctx context.Context, p *domain.Post) (*domain.Post, error)
	Delete(ctx context.Context, id int64, force bool) error
	GetByID(ctx context.Context, id int64) (*domain.Post, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Post, error)
	List(ctx context.Context, q domain.PostQuery) ([]*domain.Post, error)
	Count(ctx context.Context, q domain.PostQuery) (int, error)
	Terms(ctx context.Context, taxonomy string) ([]domain.Term, error)
}

type NotificationRepository interface {
	ExcessIDs(ctx context.Context, keep int) ([]int64, error)
	PruneExcess(ctx context.Context, keep int) ([]int64, error)
}
