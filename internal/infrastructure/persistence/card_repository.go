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

// GormCardRepository implements CardRepository using GORM
type GormCardRepository struct {
	db *gorm.DB
}

// NewGormCardRepository creates a new GormCardRepository
func NewGormCardRepository(db *gorm.DB) *GormCardRepository {
	return &GormCardRepository{db: db}
}

// FindByIDForTenant finds a card by ID within a tenant
func (r *GormCardRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*kanban.Card, error) {
	var card kanban.Card
	if err := notDeleted(r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id)).
		First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &card, nil
}

// ListByColumn returns the column's non-deleted cards ordered by position
func (r *GormCardRepository) ListByColumn(ctx context.Context, tenantID, columnID uuid.UUID) ([]kanban.Card, error) {
	var cards []kanban.Card
	if err := notDeleted(r.db.WithContext(ctx).
		Where("tenant_id = ? AND column_id = ?", tenantID, columnID)).
		Order("position ASC").
		Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

// ListByBoard returns cards across a board with filtering and search
func (r *GormCardRepository) ListByBoard(ctx context.Context, tenantID, boardID uuid.UUID, filter kanban.CardFilter) ([]kanban.Card, int64, error) {
	base := r.boardQuery(ctx, tenantID, boardID, filter)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.boardQuery(ctx, tenantID, boardID, filter)
	if filter.OrderBy != "" {
		query = applySort(query, filter.Filter, CardSortFields, "created_at")
	} else {
		// Board view order: lane by lane, top to bottom
		query = query.Order("column_id ASC").Order("position ASC")
	}
	query = applyPagination(query, filter.Filter)

	var cards []kanban.Card
	if err := query.Find(&cards).Error; err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// CountActiveByColumn counts non-deleted cards in a column, for WIP checks
func (r *GormCardRepository) CountActiveByColumn(ctx context.Context, tenantID, columnID uuid.UUID) (int64, error) {
	var count int64
	if err := notDeleted(r.db.WithContext(ctx).
		Model(&kanban.Card{}).
		Where("tenant_id = ? AND column_id = ?", tenantID, columnID)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new card
func (r *GormCardRepository) Create(ctx context.Context, card *kanban.Card) error {
	return r.db.WithContext(ctx).Create(card).Error
}

// SaveWithLock saves with optimistic locking. ColumnID is in the update
// set because moves change it under the same version check as any other
// mutation.
func (r *GormCardRepository) SaveWithLock(ctx context.Context, card *kanban.Card) error {
	result := r.db.WithContext(ctx).
		Model(&kanban.Card{}).
		Where("tenant_id = ? AND id = ? AND version = ?", card.TenantID, card.ID, card.Version-1).
		Select("column_id", "title", "description", "priority", "labels", "assignees",
			"due_at", "position", "version", "updated_at", "deleted_at").
		Updates(card)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrVersionConflict
	}
	return nil
}

// UpdatePositions applies a rebalance batch to the column's cards. Each
// row is renumbered and its version bumped by exactly one. A row that is
// gone, soft-deleted or outside the tenant reports NotFound and fails
// the whole batch, rolling back the ambient transaction.
func (r *GormCardRepository) UpdatePositions(ctx context.Context, tenantID, columnID uuid.UUID, assignments []kanban.PositionAssignment) error {
	now := time.Now()
	for _, a := range assignments {
		result := r.db.WithContext(ctx).
			Model(&kanban.Card{}).
			Where("tenant_id = ? AND column_id = ? AND id = ? AND deleted_at IS NULL", tenantID, columnID, a.ID).
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

func (r *GormCardRepository) boardQuery(ctx context.Context, tenantID, boardID uuid.UUID, filter kanban.CardFilter) *gorm.DB {
	query := notDeleted(r.db.WithContext(ctx).
		Model(&kanban.Card{}).
		Where("tenant_id = ? AND board_id = ?", tenantID, boardID))

	if filter.ColumnID != nil {
		query = query.Where("column_id = ?", *filter.ColumnID)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.Label != "" {
		// Labels are stored as a JSON array; match the quoted element
		query = query.Where("labels LIKE ?", "%\""+filter.Label+"\"%")
	}
	if filter.Assignee != "" {
		query = query.Where("assignees LIKE ?", "%\""+filter.Assignee+"\"%")
	}
	if filter.DueBefore != nil {
		query = query.Where("due_at IS NOT NULL AND due_at < ?", *filter.DueBefore)
	}
	if filter.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// Ensure GormCardRepository implements CardRepository
var _ kanban.CardRepository = (*GormCardRepository)(nil)
