package kanban

import (
	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/shared"
)

// MaxAttachmentSize limits attachment payloads (25MB)
const MaxAttachmentSize = 25 * 1024 * 1024

// Attachment is a file linked to a card. The row holds metadata only;
// the payload lives in object storage under StorageKey.
type Attachment struct {
	shared.TenantAggregateRoot
	CardID      uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName    string    `gorm:"type:varchar(256);not null"`
	ContentType string    `gorm:"type:varchar(128);not null"`
	SizeBytes   int64     `gorm:"not null"`
	StorageKey  string    `gorm:"type:varchar(512);not null"`
}

// TableName returns the table name for GORM
func (Attachment) TableName() string {
	return "attachments"
}

// NewAttachment creates attachment metadata for an uploaded file
func NewAttachment(tenantID, cardID uuid.UUID, fileName, contentType string, sizeBytes int64, storageKey string) (*Attachment, error) {
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILENAME", "Attachment file name cannot be empty")
	}
	if sizeBytes <= 0 || sizeBytes > MaxAttachmentSize {
		return nil, shared.NewDomainError("INVALID_SIZE", "Attachment size must be between 1 byte and 25MB")
	}
	if storageKey == "" {
		return nil, shared.NewDomainError("INVALID_STORAGE_KEY", "Attachment storage key cannot be empty")
	}
	att := &Attachment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CardID:              cardID,
		FileName:            fileName,
		ContentType:         contentType,
		SizeBytes:           sizeBytes,
		StorageKey:          storageKey,
	}
	att.AddDomainEvent(&AttachmentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventAttachmentAdded, "Attachment", att.ID, tenantID),
		CardID:          cardID,
	})
	return att, nil
}

// Delete soft-deletes the attachment metadata. Object storage cleanup is
// the caller's concern and may lag behind.
func (a *Attachment) Delete() error {
	if a.IsDeleted() {
		return shared.ErrNotFound
	}
	a.SoftDelete()
	a.AddDomainEvent(&AttachmentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventAttachmentDeleted, "Attachment", a.ID, a.TenantID),
		CardID:          a.CardID,
	})
	return nil
}

// AttachmentEvent is the event shape for attachment lifecycle changes
type AttachmentEvent struct {
	shared.BaseDomainEvent
	CardID uuid.UUID `json:"card_id"`
}
