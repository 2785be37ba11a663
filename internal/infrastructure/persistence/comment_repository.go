package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCommentRepository implements CommentRepository using GORM
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// FindByIDForTenant finds a comment by ID within a tenant
func (r *GormCommentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*kanban.Comment, error) {
	var comment kanban.Comment
	if err := notDeleted(r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id)).
		First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// ListByCard returns a card's comments oldest first
func (r *GormCommentRepository) ListByCard(ctx context.Context, tenantID, cardID uuid.UUID, filter shared.Filter) ([]kanban.Comment, int64, error) {
	base := notDeleted(r.db.WithContext(ctx).
		Model(&kanban.Comment{}).
		Where("tenant_id = ? AND card_id = ?", tenantID, cardID))

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []kanban.Comment
	query := notDeleted(r.db.WithContext(ctx).
		Where("tenant_id = ? AND card_id = ?", tenantID, cardID)).
		Order("created_at ASC")
	query = applyPagination(query, filter)

	if err := query.Find(&comments).Error; err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// Create inserts a new comment
func (r *GormCommentRepository) Create(ctx context.Context, comment *kanban.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormCommentRepository) SaveWithLock(ctx context.Context, comment *kanban.Comment) error {
	result := r.db.WithContext(ctx).
		Model(&kanban.Comment{}).
		Where("tenant_id = ? AND id = ? AND version = ?", comment.TenantID, comment.ID, comment.Version-1).
		Select("body", "version", "updated_at", "deleted_at").
		Updates(comment)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrVersionConflict
	}
	return nil
}

// Ensure GormCommentRepository implements CommentRepository
var _ kanban.CommentRepository = (*GormCommentRepository)(nil)
