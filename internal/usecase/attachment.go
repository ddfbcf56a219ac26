package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ninjahub/ninjahub-core/internal/domain"
	"github.com/ninjahub/ninjahub-core/internal/metrics"
	"github.com/ninjahub/ninjahub-core/internal/repository"
	"github.com/ninjahub/ninjahub-core/internal/storage"
)

// FilterAcceptedTypes lets plugins widen or narrow the accepted MIME types.
const FilterAcceptedTypes = "ninjahub_file_uploader_accepted_extensions"

// DefaultAcceptedTypes are accepted when no filter changes them.
var DefaultAcceptedTypes = []string{"image/jpeg", "image/jpg", "image/png"}

// sniffLen covers every signature mimetype checks.
const sniffLen = 3072

type UploadInput struct {
	OwnerID  int64
	FileName string
	Size     int64
	Body     io.Reader
}

type UploadResult struct {
	AttachmentID string `json:"attachment_ID"`
	URL          string `json:"url"`
}

type AttachmentUsecase struct {
	repo     repository.AttachmentRepository
	store    storage.Storage
	cryptor  Cryptor
	filters  Filters
	maxBytes int64
	now      func() time.Time
	logger   *slog.Logger
}

func NewAttachmentUsecase(
	repo repository.AttachmentRepository,
	store storage.Storage,
	cryptor Cryptor,
	filters Filters,
	maxBytes int64,
	logger *slog.Logger,
) *AttachmentUsecase {
	return &AttachmentUsecase{
		repo:     repo,
		store:    store,
		cryptor:  cryptor,
		filters:  filters,
		maxBytes: maxBytes,
		now:      time.Now,
		logger:   logger.With("component", "attachments"),
	}
}

// AcceptedTypes returns the MIME types uploads may have.
func (u *AttachmentUsecase) AcceptedTypes(ctx context.Context) []string {
	out := u.filters.ApplyFilters(ctx, FilterAcceptedTypes, DefaultAcceptedTypes)
	if types, ok := out.([]string); ok {
		return types
	}
	return DefaultAcceptedTypes
}

// Upload stores a file whose content sniffs as an accepted type and returns
// its encrypted ID.
func (u *AttachmentUsecase) Upload(ctx context.Context, in UploadInput) (res UploadResult, err error) {
	defer func() {
		label := "ok"
		if err != nil {
			label = domain.CodeOf(err)
			if label == "" {
				label = "error"
			}
		}
		metrics.UploadsTotal.WithLabelValues(label).Inc()
	}()

	if in.Body == nil || in.FileName == "" {
		return UploadResult{}, domain.ErrEmptyFile
	}
	if in.Size <= 0 || in.Size >= u.maxBytes {
		return UploadResult{}, domain.ErrFileTooLarge
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(in.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return UploadResult{}, fmt.Errorf("read upload: %w", err)
	}
	if n == 0 {
		return UploadResult{}, domain.ErrEmptyFile
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	if !accepts(mt, u.AcceptedTypes(ctx)) {
		return UploadResult{}, domain.ErrInvalidFileType
	}

	key := storage.NewObjectKey(in.OwnerID, in.FileName, u.now())
	body := io.MultiReader(bytes.NewReader(head), in.Body)
	if err := u.store.Put(ctx, key, body, in.Size, mt.String()); err != nil {
		return UploadResult{}, fmt.Errorf("store upload: %w", err)
	}

	att, err := u.repo.Create(ctx, &domain.Attachment{
		OwnerID:   in.OwnerID,
		ObjectKey: key,
		FileName:  filepath.Base(in.FileName),
		MimeType:  mt.String(),
		Size:      in.Size,
	})
	if err != nil {
		if derr := u.store.Delete(ctx, key); derr != nil {
			u.logger.ErrorContext(ctx, "orphaned upload", "key", key, "error", derr)
		}
		return UploadResult{}, fmt.Errorf("save attachment: %w", err)
	}

	id, err := u.cryptor.Encrypt(strconv.FormatInt(att.ID, 10))
	if err != nil {
		return UploadResult{}, fmt.Errorf("encrypt attachment id: %w", err)
	}

	metrics.UploadBytes.Observe(float64(in.Size))
	u.logger.InfoContext(ctx, "attachment uploaded", "attachment_id", att.ID, "owner_id", in.OwnerID, "mime", mt.String())
	return UploadResult{AttachmentID: id, URL: u.store.URL(key)}, nil
}

func accepts(mt *mimetype.MIME, accepted []string) bool {
	for _, a := range accepted {
		if mt.Is(a) {
			return true
		}
	}
	return false
}

// Remove deletes an attachment owned by ownerID. Every failure the caller
// can cause is reported as ErrAttachmentRemoval.
func (u *AttachmentUsecase) Remove(ctx context.Context, ownerID int64, encryptedID string) error {
	plain, err := u.cryptor.Decrypt(encryptedID)
	if err != nil {
		return domain.ErrAttachmentRemoval
	}
	id, err := strconv.ParseInt(plain, 10, 64)
	if err != nil || id <= 0 {
		return domain.ErrAttachmentRemoval
	}

	att, err := u.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrAttachmentNotFound) {
		return domain.ErrAttachmentRemoval
	}
	if err != nil {
		return fmt.Errorf("find attachment: %w", err)
	}
	if att.OwnerID != ownerID {
		return domain.ErrAttachmentRemoval
	}

	if err := u.repo.Delete(ctx, id, ownerID); err != nil {
		if errors.Is(err, domain.ErrAttachmentNotFound) {
			return domain.ErrAttachmentRemoval
		}
		return fmt.Errorf("delete attachment: %w", err)
	}
	if err := u.store.Delete(ctx, att.ObjectKey); err != nil {
		u.logger.ErrorContext(ctx, "delete attachment object", "key", att.ObjectKey, "error", err)
	}
	return nil
}
