package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormAuditRepository implements AuditRepository using GORM. The table is
// append-only: records are never updated or deleted.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Append writes one audit record
func (r *GormAuditRepository) Append(ctx context.Context, record *kanban.AuditRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// ListForTenant reads audit records for a tenant, newest first by default
func (r *GormAuditRepository) ListForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]kanban.AuditRecord, int64, error) {
	base := r.filtered(ctx, tenantID, filter)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.filtered(ctx, tenantID, filter)
	query = applySort(query, filter, AuditSortFields, "occurred_at")
	query = applyPagination(query, filter)

	var records []kanban.AuditRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *GormAuditRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&kanban.AuditRecord{}).
		Where("tenant_id = ?", tenantID)

	if aggregateID, ok := filter.Filters["aggregate_id"]; ok {
		query = query.Where("aggregate_id = ?", aggregateID)
	}
	if aggregateType, ok := filter.Filters["aggregate_type"]; ok {
		query = query.Where("aggregate_type = ?", aggregateType)
	}
	if operation, ok := filter.Filters["operation"]; ok {
		query = query.Where("operation = ?", operation)
	}
	return query
}

// Ensure GormAuditRepository implements AuditRepository
var _ kanban.AuditRepository = (*GormAuditRepository)(nil)
