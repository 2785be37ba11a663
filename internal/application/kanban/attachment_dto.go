package kanban

import (
	"time"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/kanban"
)

// InitiateUploadRequest represents a request to start an attachment upload
type InitiateUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,min=1,max=256"`
	ContentType string `json:"content_type" binding:"required"`
	SizeBytes   int64  `json:"size_bytes" binding:"required,min=1"`
}

// InitiateUploadResponse carries the presigned URL the client uploads to
type InitiateUploadResponse struct {
	AttachmentID uuid.UUID `json:"attachment_id"`
	UploadURL    string    `json:"upload_url"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// DownloadURLResponse carries a presigned download URL
type DownloadURLResponse struct {
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AttachmentResponse represents attachment metadata in API responses
type AttachmentResponse struct {
	ID          uuid.UUID `json:"id"`
	CardID      uuid.UUID `json:"card_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToAttachmentResponse converts an attachment entity to a response DTO
func ToAttachmentResponse(a *kanban.Attachment) *AttachmentResponse {
	return &AttachmentResponse{
		ID:          a.ID,
		CardID:      a.CardID,
		FileName:    a.FileName,
		ContentType: a.ContentType,
		SizeBytes:   a.SizeBytes,
		Version:     a.Version,
		CreatedAt:   a.CreatedAt,
	}
}

// ToAttachmentResponses converts a slice of attachment entities
func ToAttachmentResponses(attachments []kanban.Attachment) []*AttachmentResponse {
	out := make([]*AttachmentResponse, len(attachments))
	for i := range attachments {
		out[i] = ToAttachmentResponse(&attachments[i])
	}
	return out
}
