package kanban

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
)

// ObjectStorageService abstracts the S3-compatible backend holding
// attachment payloads. Rows in the attachments table only carry metadata
// and the storage key.
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	// GenerateDownloadURL generates a presigned URL for downloading a file
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error
	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// AttachmentServiceConfig holds configuration for the attachment service
type AttachmentServiceConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
	MaxPerCard        int
}

// DefaultAttachmentServiceConfig returns the default configuration
func DefaultAttachmentServiceConfig() AttachmentServiceConfig {
	return AttachmentServiceConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: 1 * time.Hour,
		MaxPerCard:        20,
	}
}

// AttachmentService handles card attachment operations
type AttachmentService struct {
	attachmentRepo kanban.AttachmentRepository
	cardRepo       kanban.CardRepository
	storageService ObjectStorageService
	config         AttachmentServiceConfig
	eventPublisher shared.EventPublisher
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(
	attachmentRepo kanban.AttachmentRepository,
	cardRepo kanban.CardRepository,
	storageService ObjectStorageService,
) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		cardRepo:       cardRepo,
		storageService: storageService,
		config:         DefaultAttachmentServiceConfig(),
	}
}

// SetConfig sets the service configuration
func (s *AttachmentService) SetConfig(config AttachmentServiceConfig) {
	s.config = config
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AttachmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *AttachmentService) publishDomainEvents(ctx context.Context, att *kanban.Attachment) {
	if s.eventPublisher == nil {
		return
	}
	events := att.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	att.ClearDomainEvents()
}

// generateStorageKey builds a collision-free object key scoped by tenant
// and card. The original file name survives only as the extension.
func (s *AttachmentService) generateStorageKey(tenantID, cardID uuid.UUID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("attachments/%s/%s/%s%s", tenantID, cardID, uuid.New(), ext)
}

// InitiateUpload records attachment metadata and returns a presigned
// upload URL. The client uploads the payload directly to object storage.
func (s *AttachmentService) InitiateUpload(ctx context.Context, tenantID, cardID uuid.UUID, req InitiateUploadRequest) (*InitiateUploadResponse, error) {
	if _, err := s.cardRepo.FindByIDForTenant(ctx, tenantID, cardID); err != nil {
		return nil, err
	}

	existing, err := s.attachmentRepo.ListByCard(ctx, tenantID, cardID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= s.config.MaxPerCard {
		return nil, shared.NewDomainError("ATTACHMENT_LIMIT_EXCEEDED",
			fmt.Sprintf("Maximum %d attachments per card allowed", s.config.MaxPerCard))
	}

	storageKey := s.generateStorageKey(tenantID, cardID, req.FileName)
	attachment, err := kanban.NewAttachment(tenantID, cardID, req.FileName, req.ContentType, req.SizeBytes, storageKey)
	if err != nil {
		return nil, err
	}
	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		return nil, err
	}

	uploadURL, expiresAt, err := s.storageService.GenerateUploadURL(ctx, storageKey, req.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	s.publishDomainEvents(ctx, attachment)
	return &InitiateUploadResponse{
		AttachmentID: attachment.ID,
		UploadURL:    uploadURL,
		ExpiresAt:    expiresAt,
	}, nil
}

// ListByCard returns a card's attachment metadata
func (s *AttachmentService) ListByCard(ctx context.Context, tenantID, cardID uuid.UUID) ([]*AttachmentResponse, error) {
	if _, err := s.cardRepo.FindByIDForTenant(ctx, tenantID, cardID); err != nil {
		return nil, err
	}
	attachments, err := s.attachmentRepo.ListByCard(ctx, tenantID, cardID)
	if err != nil {
		return nil, err
	}
	return ToAttachmentResponses(attachments), nil
}

// GetDownloadURL returns a presigned download URL for an attachment. The
// object must exist in storage; a metadata row without a payload means
// the upload never completed.
func (s *AttachmentService) GetDownloadURL(ctx context.Context, tenantID, attachmentID uuid.UUID) (*DownloadURLResponse, error) {
	attachment, err := s.attachmentRepo.FindByIDForTenant(ctx, tenantID, attachmentID)
	if err != nil {
		return nil, err
	}

	exists, err := s.storageService.ObjectExists(ctx, attachment.StorageKey)
	if err != nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Failed to check attachment storage")
	}
	if !exists {
		return nil, shared.ErrNotFound
	}

	downloadURL, expiresAt, err := s.storageService.GenerateDownloadURL(ctx, attachment.StorageKey, s.config.DownloadURLExpiry)
	if err != nil {
		return nil, shared.NewDomainError("DOWNLOAD_URL_FAILED", "Failed to generate download URL")
	}
	return &DownloadURLResponse{
		DownloadURL: downloadURL,
		ExpiresAt:   expiresAt,
	}, nil
}

// Delete soft-deletes attachment metadata and deletes the stored object
// best-effort: a storage failure leaves an orphan object, never a
// dangling metadata row.
func (s *AttachmentService) Delete(ctx context.Context, tenantID, attachmentID uuid.UUID) error {
	attachment, err := s.attachmentRepo.FindByIDForTenant(ctx, tenantID, attachmentID)
	if err != nil {
		return err
	}
	if err := attachment.Delete(); err != nil {
		return err
	}
	if err := s.attachmentRepo.SaveWithLock(ctx, attachment); err != nil {
		return err
	}

	_ = s.storageService.DeleteObject(ctx, attachment.StorageKey)

	s.publishDomainEvents(ctx, attachment)
	return nil
}
