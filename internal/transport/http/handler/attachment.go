package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ninjahub/ninjahub-core/internal/domain"
	"github.com/ninjahub/ninjahub-core/internal/usecase"
)

// FileField is the multipart field an upload arrives in.
const FileField = "file"

type attachmentUsecaser interface {
	Upload(ctx context.Context, in usecase.UploadInput) (usecase.UploadResult, error)
	Remove(ctx context.Context, ownerID int64, encryptedID string) error
}

type AttachmentHandler struct {
	attachments attachmentUsecaser
	guard       *Guard
	logger      *slog.Logger
}

func NewAttachmentHandler(attachments attachmentUsecaser, guard *Guard, logger *slog.Logger) *AttachmentHandler {
	return &AttachmentHandler{
		attachments: attachments,
		guard:       guard,
		logger:      logger.With("component", "attachment_handler"),
	}
}

// POST /ajax/upload-attachment (multipart)
func (h *AttachmentHandler) Upload(c *gin.Context) {
	owner, authed := userID(c)
	if !authed {
		fail(c, http.StatusUnauthorized, errUnauthorized)
		return
	}
	if err := h.guard.Check(c, c.PostForm(NonceField), NonceAttachment, FormAttachment); err != nil {
		respondError(c, h.logger, "upload guard", err)
		return
	}

	fh, err := c.FormFile(FileField)
	if err != nil {
		respondError(c, h.logger, "upload", domain.ErrEmptyFile)
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, h.logger, "open upload", err)
		return
	}
	defer f.Close()

	res, err := h.attachments.Upload(c.Request.Context(), usecase.UploadInput{
		OwnerID:  owner,
		FileName: fh.Filename,
		Size:     fh.Size,
		Body:     f,
	})
	if err != nil {
		respondError(c, h.logger, "upload", err)
		return
	}
	ok(c, "File uploaded successfully.", res)
}

type removeAttachmentRequest struct {
	AttachmentID string `form:"attachment_ID" json:"attachment_ID" binding:"required"`
	Nonce        string `form:"nonce"         json:"nonce"`
}

// POST /ajax/remove-attachment
func (h *AttachmentHandler) Remove(c *gin.Context) {
	owner, authed := userID(c)
	if !authed {
		fail(c, http.StatusUnauthorized, errUnauthorized)
		return
	}
	var req removeAttachmentRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, h.logger, "remove attachment", domain.ErrAttachmentRemoval)
		return
	}
	if err := h.guard.Check(c, req.Nonce, NonceAttachment, FormAttachment); err != nil {
		respondError(c, h.logger, "remove guard", err)
		return
	}

	if err := h.attachments.Remove(c.Request.Context(), owner, req.AttachmentID); err != nil {
		respondError(c, h.logger, "remove attachment", err)
		return
	}
	ok(c, "Attachment removed.", nil)
}
