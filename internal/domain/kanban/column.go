package kanban

import (
	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/shared"
)

// MaxColumnNameLength limits column names
const MaxColumnNameLength = 100

// Column is an ordered lane within a board. It is an item of its board's
// sibling set and at the same time the container for its cards.
type Column struct {
	shared.TenantAggregateRoot
	BoardID  uuid.UUID `gorm:"type:uuid;not null;index:idx_columns_board_position,priority:1"`
	Name     string    `gorm:"type:varchar(100);not null"`
	Position int       `gorm:"not null;index:idx_columns_board_position,priority:2"`
	WIPLimit *int      ``
}

// TableName returns the table name for GORM
func (Column) TableName() string {
	return "columns"
}

// NewColumn creates a column at the given position within a board
func NewColumn(tenantID, boardID uuid.UUID, name string, position int) (*Column, error) {
	if err := validateColumnName(name); err != nil {
		return nil, err
	}
	column := &Column{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BoardID:             boardID,
		Name:                name,
		Position:            position,
	}
	column.AddDomainEvent(NewColumnCreatedEvent(column))
	return column, nil
}

// SetWIPLimit sets the limit at creation time, before the column is
// persisted. Post-creation changes go through Update.
func (c *Column) SetWIPLimit(wipLimit *int) error {
	if wipLimit != nil && *wipLimit < 1 {
		return shared.NewDomainError("INVALID_WIP_LIMIT", "WIP limit must be at least 1")
	}
	c.WIPLimit = wipLimit
	return nil
}

// Update changes the column's name and WIP limit as one mutation
func (c *Column) Update(name string, wipLimit *int) error {
	if err := validateColumnName(name); err != nil {
		return err
	}
	if wipLimit != nil && *wipLimit < 1 {
		return shared.NewDomainError("INVALID_WIP_LIMIT", "WIP limit must be at least 1")
	}
	c.Name = name
	c.WIPLimit = wipLimit

	change := OrderingChange{
		Operation:   OpUpdate,
		OldPosition: c.Position,
		NewPosition: c.Position,
		OldVersion:  c.Version,
		NewVersion:  c.Version + 1,
	}
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewColumnUpdatedEvent(c, change))
	return nil
}

// PlaceAt reorders the column within its board
func (c *Column) PlaceAt(position int, rebalanced bool) {
	change := OrderingChange{
		Operation:   OpReorder,
		OldPosition: c.Position,
		NewPosition: position,
		OldVersion:  c.Version,
		NewVersion:  c.Version + 1,
		Rebalanced:  rebalanced,
	}
	c.Position = position
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewColumnReorderedEvent(c, change))
}

// Delete soft-deletes the column
func (c *Column) Delete() error {
	if c.IsDeleted() {
		return shared.ErrNotFound
	}
	c.SoftDelete()
	c.AddDomainEvent(NewColumnDeletedEvent(c))
	return nil
}

// CanAcceptCard reports whether another card fits under the WIP limit.
// activeCards is the current count of non-deleted cards in this column.
func (c *Column) CanAcceptCard(activeCards int64) bool {
	if c.WIPLimit == nil {
		return true
	}
	return activeCards < int64(*c.WIPLimit)
}

func validateColumnName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Column name cannot be empty")
	}
	if len(name) > MaxColumnNameLength {
		return shared.NewDomainError("INVALID_NAME", "Column name cannot exceed 100 characters")
	}
	return nil
}
