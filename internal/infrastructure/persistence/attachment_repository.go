package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormAttachmentRepository implements AttachmentRepository using GORM
type GormAttachmentRepository struct {
	db *gorm.DB
}

// NewGormAttachmentRepository creates a new GormAttachmentRepository
func NewGormAttachmentRepository(db *gorm.DB) *GormAttachmentRepository {
	return &GormAttachmentRepository{db: db}
}

// FindByIDForTenant finds attachment metadata by ID within a tenant
func (r *GormAttachmentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*kanban.Attachment, error) {
	var att kanban.Attachment
	if err := notDeleted(r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id)).
		First(&att).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &att, nil
}

// ListByCard returns a card's attachments newest first
func (r *GormAttachmentRepository) ListByCard(ctx context.Context, tenantID, cardID uuid.UUID) ([]kanban.Attachment, error) {
	var attachments []kanban.Attachment
	if err := notDeleted(r.db.WithContext(ctx).
		Where("tenant_id = ? AND card_id = ?", tenantID, cardID)).
		Order("created_at DESC").
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// Create inserts new attachment metadata
func (r *GormAttachmentRepository) Create(ctx context.Context, attachment *kanban.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormAttachmentRepository) SaveWithLock(ctx context.Context, attachment *kanban.Attachment) error {
	result := r.db.WithContext(ctx).
		Model(&kanban.Attachment{}).
		Where("tenant_id = ? AND id = ? AND version = ?", attachment.TenantID, attachment.ID, attachment.Version-1).
		Select("version", "updated_at", "deleted_at").
		Updates(attachment)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrVersionConflict
	}
	return nil
}

// Ensure GormAttachmentRepository implements AttachmentRepository
var _ kanban.AttachmentRepository = (*GormAttachmentRepository)(nil)
