// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBoardMetricsProvider implements BoardMetricsProvider using GORM.
// It queries the cards and columns tables directly for aggregated metrics.
type GormBoardMetricsProvider struct {
	db *gorm.DB
}

// NewGormBoardMetricsProvider creates a new GormBoardMetricsProvider.
func NewGormBoardMetricsProvider(db *gorm.DB) *GormBoardMetricsProvider {
	return &GormBoardMetricsProvider{db: db}
}

// GetActiveCardCountByColumn returns active card counts per column for a tenant.
func (p *GormBoardMetricsProvider) GetActiveCardCountByColumn(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]int64, error) {
	type result struct {
		ColumnID  uuid.UUID `gorm:"column:column_id"`
		CardCount int64     `gorm:"column:card_count"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("cards").
		Select("column_id, COUNT(*) as card_count").
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID).
		Group("column_id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	m := make(map[uuid.UUID]int64, len(results))
	for _, r := range results {
		m[r.ColumnID] = r.CardCount
	}

	return m, nil
}

// GetWIPBreachCount returns the number of columns whose active card count
// exceeds their WIP limit for a tenant.
func (p *GormBoardMetricsProvider) GetWIPBreachCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("columns").
		Where("tenant_id = ? AND deleted_at IS NULL AND wip_limit IS NOT NULL", tenantID).
		Where("(SELECT COUNT(*) FROM cards WHERE cards.column_id = columns.id AND cards.deleted_at IS NULL) > wip_limit").
		Count(&count).Error

	return count, err
}

// GormTenantProvider implements TenantProvider using GORM. Tenants are
// derived from the workspaces they own.
type GormTenantProvider struct {
	db *gorm.DB
}

// NewGormTenantProvider creates a new GormTenantProvider.
func NewGormTenantProvider(db *gorm.DB) *GormTenantProvider {
	return &GormTenantProvider{db: db}
}

// GetActiveTenantIDs returns the tenant IDs with at least one live workspace.
func (p *GormTenantProvider) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("workspaces").
		Distinct("tenant_id").
		Where("deleted_at IS NULL").
		Find(&ids).Error

	return ids, err
}
