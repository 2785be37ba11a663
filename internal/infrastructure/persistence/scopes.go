package persistence

import (
	"github.com/kanban/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// notDeleted excludes soft-deleted rows. Every tenant-facing query goes
// through this predicate; callers never see a deleted aggregate.
func notDeleted(query *gorm.DB) *gorm.DB {
	return query.Where("deleted_at IS NULL")
}

// applySort orders a query from filter fields validated against an allowlist
func applySort(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	return query.Order(field + " " + dir)
}

// applyPagination applies page and page size offsets
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}
