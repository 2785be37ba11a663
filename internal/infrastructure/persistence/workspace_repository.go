package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormWorkspaceRepository implements WorkspaceRepository using GORM
type GormWorkspaceRepository struct {
	db *gorm.DB
}

// NewGormWorkspaceRepository creates a new GormWorkspaceRepository
func NewGormWorkspaceRepository(db *gorm.DB) *GormWorkspaceRepository {
	return &GormWorkspaceRepository{db: db}
}

// FindByIDForTenant finds a workspace by ID within a tenant
func (r *GormWorkspaceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*kanban.Workspace, error) {
	var ws kanban.Workspace
	if err := notDeleted(r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id)).
		First(&ws).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ws, nil
}

// FindAllForTenant finds all workspaces for a tenant
func (r *GormWorkspaceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]kanban.Workspace, error) {
	var workspaces []kanban.Workspace
	query := notDeleted(r.db.WithContext(ctx).
		Model(&kanban.Workspace{}).
		Where("tenant_id = ?", tenantID))
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	query = applySort(query, filter, WorkspaceSortFields, "created_at")
	query = applyPagination(query, filter)

	if err := query.Find(&workspaces).Error; err != nil {
		return nil, err
	}
	return workspaces, nil
}

// CountForTenant counts workspaces for a tenant
func (r *GormWorkspaceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := notDeleted(r.db.WithContext(ctx).
		Model(&kanban.Workspace{}).
		Where("tenant_id = ?", tenantID)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new workspace
func (r *GormWorkspaceRepository) Create(ctx context.Context, ws *kanban.Workspace) error {
	return r.db.WithContext(ctx).Create(ws).Error
}

// SaveWithLock saves with optimistic locking. The aggregate's version has
// already been incremented in memory; the write matches version-1 on the
// row and reports a conflict when zero rows update.
func (r *GormWorkspaceRepository) SaveWithLock(ctx context.Context, ws *kanban.Workspace) error {
	result := r.db.WithContext(ctx).
		Model(&kanban.Workspace{}).
		Where("tenant_id = ? AND id = ? AND version = ?", ws.TenantID, ws.ID, ws.Version-1).
		Select("name", "description", "version", "updated_at", "deleted_at").
		Updates(ws)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrVersionConflict
	}
	return nil
}

// Ensure GormWorkspaceRepository implements WorkspaceRepository
var _ kanban.WorkspaceRepository = (*GormWorkspaceRepository)(nil)
