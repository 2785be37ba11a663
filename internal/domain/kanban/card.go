package kanban

import (
	"time"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/shared"
)

const (
	// MaxCardTitleLength limits card titles
	MaxCardTitleLength = 256
	// MaxCardDescriptionLength limits card descriptions (16KB)
	MaxCardDescriptionLength = 16 * 1024
)

// Priority ranks a card's urgency
type Priority int

const (
	PriorityNone   Priority = 0
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
	PriorityUrgent Priority = 4
)

// Valid reports whether the priority is in the accepted range
func (p Priority) Valid() bool {
	return p >= PriorityNone && p <= PriorityUrgent
}

// Card is a positioned work item belonging to exactly one column at a
// time. Position orders it among the non-deleted cards of its column;
// ColumnID changes only through MoveTo, never through a field update.
type Card struct {
	shared.TenantAggregateRoot
	BoardID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	ColumnID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_cards_column_position,priority:1"`
	Title       string     `gorm:"type:varchar(256);not null"`
	Description string     `gorm:"type:text"`
	Priority    Priority   `gorm:"type:smallint;not null;default:0"`
	Labels      []string   `gorm:"serializer:json"`
	Assignees   []string   `gorm:"serializer:json"`
	DueAt       *time.Time ``
	Position    int        `gorm:"not null;index:idx_cards_column_position,priority:2"`
}

// TableName returns the table name for GORM
func (Card) TableName() string {
	return "cards"
}

// NewCard creates a card at the given position within a column. The
// position must come from the position manager so sibling invariants hold.
func NewCard(tenantID, boardID, columnID uuid.UUID, title string, position int) (*Card, error) {
	if err := validateCardTitle(title); err != nil {
		return nil, err
	}
	card := &Card{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BoardID:             boardID,
		ColumnID:            columnID,
		Title:               title,
		Priority:            PriorityNone,
		Position:            position,
	}
	card.AddDomainEvent(NewCardCreatedEvent(card))
	return card, nil
}

// CardPatch carries the optional field updates of a PATCH request.
// Nil pointers leave the field untouched.
type CardPatch struct {
	Title       *string
	Description *string
	Priority    *Priority
	Labels      []string
	Assignees   []string
	DueAt       *time.Time
	ClearDueAt  bool
}

// Apply updates the card's fields from the patch. It is a single
// mutation: the version increments exactly once however many fields the
// patch touches.
func (c *Card) Apply(patch CardPatch) error {
	if err := c.applyFields(patch); err != nil {
		return err
	}

	change := OrderingChange{
		Operation:   OpUpdate,
		OldPosition: c.Position,
		NewPosition: c.Position,
		OldVersion:  c.Version,
		NewVersion:  c.Version + 1,
	}
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewCardUpdatedEvent(c, change))
	return nil
}

// ApplyInitial sets optional fields at creation time. Creation is a
// single mutation already counted by NewCard, so no version increment
// and no extra event here.
func (c *Card) ApplyInitial(patch CardPatch) error {
	return c.applyFields(patch)
}

func (c *Card) applyFields(patch CardPatch) error {
	if patch.Title != nil {
		if err := validateCardTitle(*patch.Title); err != nil {
			return err
		}
		c.Title = *patch.Title
	}
	if patch.Description != nil {
		if len(*patch.Description) > MaxCardDescriptionLength {
			return shared.NewDomainError("INVALID_DESCRIPTION", "Card description cannot exceed 16KB")
		}
		c.Description = *patch.Description
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return shared.NewDomainError("INVALID_PRIORITY", "Card priority must be between 0 and 4")
		}
		c.Priority = *patch.Priority
	}
	if patch.Labels != nil {
		c.Labels = patch.Labels
	}
	if patch.Assignees != nil {
		c.Assignees = patch.Assignees
	}
	if patch.ClearDueAt {
		c.DueAt = nil
	} else if patch.DueAt != nil {
		c.DueAt = patch.DueAt
	}
	return nil
}

// PlaceAt reorders the card within its current column.
func (c *Card) PlaceAt(position int, rebalanced bool) {
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
	c.AddDomainEvent(NewCardReorderedEvent(c, change))
}

// MoveTo moves the card into a column at the given position. Moving to
// the current column is accepted and still counts as a mutation: any
// accepted request increments the version, no exceptions.
func (c *Card) MoveTo(columnID uuid.UUID, position int, rebalanced bool) {
	change := OrderingChange{
		Operation:   OpMove,
		OldPosition: c.Position,
		NewPosition: position,
		OldVersion:  c.Version,
		NewVersion:  c.Version + 1,
		Rebalanced:  rebalanced,
	}
	source := c.ColumnID
	c.ColumnID = columnID
	c.Position = position
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewCardMovedEvent(c, source, change))
}

// Delete soft-deletes the card
func (c *Card) Delete() error {
	if c.IsDeleted() {
		return shared.ErrNotFound
	}
	c.SoftDelete()
	c.AddDomainEvent(NewCardDeletedEvent(c))
	return nil
}

func validateCardTitle(title string) error {
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Card title cannot be empty")
	}
	if len(title) > MaxCardTitleLength {
		return shared.NewDomainError("INVALID_TITLE", "Card title cannot exceed 256 characters")
	}
	return nil
}
