package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormBoardRepository implements BoardRepository using GORM
type GormBoardRepository struct {
	db *gorm.DB
}

// NewGormBoardRepository creates a new GormBoardRepository
func NewGormBoardRepository(db *gorm.DB) *GormBoardRepository {
	return &GormBoardRepository{db: db}
}

// FindByIDForTenant finds a board by ID within a tenant
func (r *GormBoardRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*kanban.Board, error) {
	var board kanban.Board
	if err := notDeleted(r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id)).
		First(&board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &board, nil
}

// FindAllForTenant finds all boards for a tenant
func (r *GormBoardRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]kanban.Board, error) {
	var boards []kanban.Board
	query := r.filtered(ctx, tenantID, filter)
	query = applySort(query, filter, BoardSortFields, "created_at")
	query = applyPagination(query, filter)

	if err := query.Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}

// CountForTenant counts boards for a tenant under the same filter as FindAllForTenant
func (r *GormBoardRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new board
func (r *GormBoardRepository) Create(ctx context.Context, board *kanban.Board) error {
	return r.db.WithContext(ctx).Create(board).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormBoardRepository) SaveWithLock(ctx context.Context, board *kanban.Board) error {
	result := r.db.WithContext(ctx).
		Model(&kanban.Board{}).
		Where("tenant_id = ? AND id = ? AND version = ?", board.TenantID, board.ID, board.Version-1).
		Select("name", "description", "version", "updated_at", "deleted_at").
		Updates(board)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrVersionConflict
	}
	return nil
}

func (r *GormBoardRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) *gorm.DB {
	query := notDeleted(r.db.WithContext(ctx).
		Model(&kanban.Board{}).
		Where("tenant_id = ?", tenantID))
	if workspaceID, ok := filter.Filters["workspace_id"]; ok {
		query = query.Where("workspace_id = ?", workspaceID)
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// Ensure GormBoardRepository implements BoardRepository
var _ kanban.BoardRepository = (*GormBoardRepository)(nil)
