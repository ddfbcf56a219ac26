package repository

import (
	"context"

	"github.com/ninjahub/ninjahub-core/internal/domain"
)

type AttachmentRepository interface {
	Create(ctx context.Context, a *domain.Attachment) (*domain.Attachment, error)
	GetByID(ctx context.Context, id int64) (*domain.Attachment, error)
	Delete(ctx context.Context, id, ownerID int64) error
}
