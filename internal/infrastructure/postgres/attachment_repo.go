package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ninjahub/ninjahub-core/internal/domain"
)

type AttachmentRepository struct {
	pool *pgxpool.Pool
}

func NewAttachmentRepository(pool *pgxpool.Pool) *AttachmentRepository {
	return &AttachmentRepository{pool: pool}
}

const attachmentColumns = `id, owner_id, object_key, file_name, mime_type, size, created_at`

func (r *AttachmentRepository) Create(ctx context.Context, a *domain.Attachment) (*domain.Attachment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO attachments (owner_id, object_key, file_name, mime_type, size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+attachmentColumns,
		a.OwnerID, a.ObjectKey, a.FileName, a.MimeType, a.Size,
	)
	return scanAttachment(row)
}

func (r *AttachmentRepository) GetByID(ctx context.Context, id int64) (*domain.Attachment, error) {
	return scanAttachment(r.pool.QueryRow(ctx, `SELECT `+attachmentColumns+` FROM attachments WHERE id = $1`, id))
}

// Delete removes the attachment only when ownerID owns it.
func (r *AttachmentRepository) Delete(ctx context.Context, id, ownerID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM attachments WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAttachmentNotFound
	}
	return nil
}

func scanAttachment(row rowScanner) (*domain.Attachment, error) {
	var a domain.Attachment
	err := row.Scan(&a.ID, &a.OwnerID, &a.ObjectKey, &a.FileName, &a.MimeType, &a.Size, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAttachmentNotFound
		}
		return nil, fmt.Errorf("scan attachment: %w", err)
	}
	return &a, nil
}
