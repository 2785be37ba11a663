package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormColumnRepository implements ColumnRepository using GORM
type GormColumnRepository struct {
	db *gorm.DB
}

// NewGormColumnRepository creates a new GormColumnRepository
func NewGormColumnRepository(db *gorm.DB) *GormColumnRepository {
	return &GormColumnRepository{db: db}
}

// FindByIDForTenant finds a column by ID within a tenant
func (r *GormColumnRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*kanban.Column, error) {
	var column kanban.Column
	if err := notDeleted(r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id)).
		First(&column).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &column, nil
}

// ListByBoard returns the board's non-deleted columns ordered by position
func (r *GormColumnRepository) ListByBoard(ctx context.Context, tenantID, boardID uuid.UUID) ([]kanban.Column, error) {
	var columns []kanban.Column
	if err := notDeleted(r.db.WithContext(ctx).
		Where("tenant_id = ? AND board_id = ?", tenantID, boardID)).
		Order("position ASC").
		Find(&columns).Error; err != nil {
		return nil, err
	}
	return columns, nil
}

// Create inserts a new column
func (r *GormColumnRepository) Create(ctx context.Context, column *kanban.Column) error {
	return r.db.WithContext(ctx).Create(column).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormColumnRepository) SaveWithLock(ctx context.Context, column *kanban.Column) error {
	result := r.db.WithContext(ctx).
		Model(&kanban.Column{}).
		Where("tenant_id = ? AND id = ? AND version = ?", column.TenantID, column.ID, column.Version-1).
		Select("name", "wip_limit", "position", "version", "updated_at", "deleted_at").
		Updates(column)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrVersionConflict
	}
	return nil
}

// UpdatePositions applies a rebalance batch to the board's columns. Each
// row is renumbered and its version bumped by exactly one. A missing row
// means a sibling vanished underneath the caller; it reports NotFound,
// failing the whole batch and rolling back the ambient transaction.
func (r *GormColumnRepository) UpdatePositions(ctx context.Context, tenantID, boardID uuid.UUID, assignments []kanban.PositionAssignment) error {
	now := time.Now()
	for _, a := range assignments {
		result := r.db.WithContext(ctx).
			Model(&kanban.Column{}).
			Where("tenant_id = ? AND board_id = ? AND id = ? AND deleted_at IS NULL", tenantID, boardID, a.ID).
			Updates(map[string]interface{}{
				"position":   a.Position,
				"version":    gorm.Expr("version + 1"),
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
	}
	return nil
}

// Ensure GormColumnRepository implements ColumnRepository
var _ kanban.ColumnRepository = (*GormColumnRepository)(nil)
