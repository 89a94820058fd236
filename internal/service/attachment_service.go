package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path"
	"time"

	"github.com/rs/zerolog"

	"mescore/api/internal/ids"
	"mescore/api/internal/models"
	"mescore/api/internal/repository"
	"mescore/api/internal/storage"
)

const (
	maxAttachmentSize     = 25 << 20 // 25 MiB
	attachmentLinkExpiry  = 15 * time.Minute
	defaultAttachmentType = "application/octet-stream"
)

var ErrAttachmentTooLarge = errors.New("attachment exceeds size limit")

type AttachmentService struct {
	orders *repository.WorkOrderRepository
	store  *storage.ObjectStore
	log    zerolog.Logger
}

func NewAttachmentService(orders *repository.WorkOrderRepository, store *storage.ObjectStore, log zerolog.Logger) *AttachmentService {
	return &AttachmentService{
		orders: orders,
		store:  store,
		log:    log,
	}
}

type AttachmentInput struct {
	WorkOrderID string
	UploadedBy  string
	File        multipart.File
	Header      *multipart.FileHeader
}

// Upload streams the file into the object store first, then records the
// metadata row. A failed insert leaves an orphan object, which is cheaper to
// clean up than a metadata row pointing at nothing.
func (s *AttachmentService) Upload(ctx context.Context, input AttachmentInput) (models.Attachment, error) {
	if input.File == nil || input.Header == nil {
		return models.Attachment{}, errors.New("invalid file payload")
	}
	if input.Header.Size > maxAttachmentSize {
		return models.Attachment{}, ErrAttachmentTooLarge
	}

	contentType := input.Header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultAttachmentType
	}

	att := models.Attachment{
		ID:          ids.New(),
		WorkOrderID: input.WorkOrderID,
		FileName:    path.Base(input.Header.Filename),
		ContentType: contentType,
		SizeBytes:   input.Header.Size,
		UploadedBy:  input.UploadedBy,
	}
	att.ObjectKey = fmt.Sprintf("work-orders/%s/%s-%s", input.WorkOrderID, att.ID, att.FileName)

	if err := s.store.Put(ctx, att.ObjectKey, input.File, att.SizeBytes, att.ContentType); err != nil {
		return models.Attachment{}, err
	}

	if err := s.orders.CreateAttachment(ctx, att); err != nil {
		if removeErr := s.store.Remove(ctx, att.ObjectKey); removeErr != nil {
			s.log.Error().Err(removeErr).Str("key", att.ObjectKey).Msg("orphan object cleanup failed")
		}
		return models.Attachment{}, err
	}

	return att, nil
}

// DownloadURL returns a presigned link for an existing attachment.
func (s *AttachmentService) DownloadURL(ctx context.Context, attachmentID string) (models.Attachment, string, error) {
	att, err := s.orders.GetAttachment(ctx, attachmentID)
	if err != nil {
		return models.Attachment{}, "", err
	}

	url, err := s.store.PresignedGet(ctx, att.ObjectKey, att.FileName, attachmentLinkExpiry)
	if err != nil {
		return models.Attachment{}, "", err
	}
	return att, url, nil
}
