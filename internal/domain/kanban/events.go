package kanban

import (
	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/shared"
)

// Event type constants
const (
	EventWorkspaceCreated = "kanban.workspace.created"
	EventWorkspaceUpdated = "kanban.workspace.updated"
	EventWorkspaceDeleted = "kanban.workspace.deleted"

	EventBoardCreated = "kanban.board.created"
	EventBoardUpdated = "kanban.board.updated"
	EventBoardDeleted = "kanban.board.deleted"

	EventColumnCreated   = "kanban.column.created"
	EventColumnUpdated   = "kanban.column.updated"
	EventColumnReordered = "kanban.column.reordered"
	EventColumnDeleted   = "kanban.column.deleted"

	EventCardCreated   = "kanban.card.created"
	EventCardUpdated   = "kanban.card.updated"
	EventCardReordered = "kanban.card.reordered"
	EventCardMoved     = "kanban.card.moved"
	EventCardDeleted   = "kanban.card.deleted"

	EventCommentAdded   = "kanban.comment.added"
	EventCommentDeleted = "kanban.comment.deleted"

	EventAttachmentAdded   = "kanban.attachment.added"
	EventAttachmentDeleted = "kanban.attachment.deleted"
)

// Operation identifies the kind of mutation an ordering event records.
type Operation string

const (
	OpCreate  Operation = "create"
	OpUpdate  Operation = "update"
	OpReorder Operation = "reorder"
	OpMove    Operation = "move"
	OpDelete  Operation = "delete"
)

// OrderingChange carries the before/after ordering facts of a mutation.
// It is embedded in every event the audit collaborator consumes.
type OrderingChange struct {
	Operation   Operation `json:"operation"`
	OldPosition int       `json:"old_position"`
	NewPosition int       `json:"new_position"`
	OldVersion  int       `json:"old_version"`
	NewVersion  int       `json:"new_version"`
	Rebalanced  bool      `json:"rebalanced"`
}

// CardCreatedEvent is emitted when a card is created
type CardCreatedEvent struct {
	shared.BaseDomainEvent
	BoardID  uuid.UUID `json:"board_id"`
	ColumnID uuid.UUID `json:"column_id"`
	Title    string    `json:"title"`
	Position int       `json:"position"`
}

// NewCardCreatedEvent creates a CardCreatedEvent
func NewCardCreatedEvent(c *Card) *CardCreatedEvent {
	return &CardCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCardCreated, "Card", c.ID, c.TenantID),
		BoardID:         c.BoardID,
		ColumnID:        c.ColumnID,
		Title:           c.Title,
		Position:        c.Position,
	}
}

// CardUpdatedEvent is emitted when a card's fields change
type CardUpdatedEvent struct {
	shared.BaseDomainEvent
	Change OrderingChange `json:"change"`
}

// NewCardUpdatedEvent creates a CardUpdatedEvent
func NewCardUpdatedEvent(c *Card, change OrderingChange) *CardUpdatedEvent {
	return &CardUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCardUpdated, "Card", c.ID, c.TenantID),
		Change:          change,
	}
}

// CardReorderedEvent is emitted when a card changes position within its column
type CardReorderedEvent struct {
	shared.BaseDomainEvent
	ColumnID uuid.UUID      `json:"column_id"`
	Change   OrderingChange `json:"change"`
}

// NewCardReorderedEvent creates a CardReorderedEvent
func NewCardReorderedEvent(c *Card, change OrderingChange) *CardReorderedEvent {
	return &CardReorderedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCardReordered, "Card", c.ID, c.TenantID),
		ColumnID:        c.ColumnID,
		Change:          change,
	}
}

// CardMovedEvent is emitted when a card changes column
type CardMovedEvent struct {
	shared.BaseDomainEvent
	SourceColumnID uuid.UUID      `json:"source_column_id"`
	TargetColumnID uuid.UUID      `json:"target_column_id"`
	Change         OrderingChange `json:"change"`
}

// NewCardMovedEvent creates a CardMovedEvent
func NewCardMovedEvent(c *Card, sourceColumnID uuid.UUID, change OrderingChange) *CardMovedEvent {
	return &CardMovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCardMoved, "Card", c.ID, c.TenantID),
		SourceColumnID:  sourceColumnID,
		TargetColumnID:  c.ColumnID,
		Change:          change,
	}
}

// CardDeletedEvent is emitted when a card is soft-deleted
type CardDeletedEvent struct {
	shared.BaseDomainEvent
	ColumnID uuid.UUID `json:"column_id"`
}

// NewCardDeletedEvent creates a CardDeletedEvent
func NewCardDeletedEvent(c *Card) *CardDeletedEvent {
	return &CardDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCardDeleted, "Card", c.ID, c.TenantID),
		ColumnID:        c.ColumnID,
	}
}

// ColumnCreatedEvent is emitted when a column is created
type ColumnCreatedEvent struct {
	shared.BaseDomainEvent
	BoardID  uuid.UUID `json:"board_id"`
	Name     string    `json:"name"`
	Position int       `json:"position"`
}

// NewColumnCreatedEvent creates a ColumnCreatedEvent
func NewColumnCreatedEvent(c *Column) *ColumnCreatedEvent {
	return &ColumnCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventColumnCreated, "Column", c.ID, c.TenantID),
		BoardID:         c.BoardID,
		Name:            c.Name,
		Position:        c.Position,
	}
}

// ColumnUpdatedEvent is emitted when a column's fields change
type ColumnUpdatedEvent struct {
	shared.BaseDomainEvent
	BoardID uuid.UUID      `json:"board_id"`
	Change  OrderingChange `json:"change"`
}

// NewColumnUpdatedEvent creates a ColumnUpdatedEvent
func NewColumnUpdatedEvent(c *Column, change OrderingChange) *ColumnUpdatedEvent {
	return &ColumnUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventColumnUpdated, "Column", c.ID, c.TenantID),
		BoardID:         c.BoardID,
		Change:          change,
	}
}

// ColumnReorderedEvent is emitted when a column changes position within its board
type ColumnReorderedEvent struct {
	shared.BaseDomainEvent
	BoardID uuid.UUID      `json:"board_id"`
	Change  OrderingChange `json:"change"`
}

// NewColumnReorderedEvent creates a ColumnReorderedEvent
func NewColumnReorderedEvent(c *Column, change OrderingChange) *ColumnReorderedEvent {
	return &ColumnReorderedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventColumnReordered, "Column", c.ID, c.TenantID),
		BoardID:         c.BoardID,
		Change:          change,
	}
}

// ColumnDeletedEvent is emitted when a column is soft-deleted
type ColumnDeletedEvent struct {
	shared.BaseDomainEvent
	BoardID uuid.UUID `json:"board_id"`
}

// NewColumnDeletedEvent creates a ColumnDeletedEvent
func NewColumnDeletedEvent(c *Column) *ColumnDeletedEvent {
	return &ColumnDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventColumnDeleted, "Column", c.ID, c.TenantID),
		BoardID:         c.BoardID,
	}
}

// BoardCreatedEvent is emitted when a board is created
type BoardCreatedEvent struct {
	shared.BaseDomainEvent
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Name        string    `json:"name"`
}

// NewBoardCreatedEvent creates a BoardCreatedEvent
func NewBoardCreatedEvent(b *Board) *BoardCreatedEvent {
	return &BoardCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventBoardCreated, "Board", b.ID, b.TenantID),
		WorkspaceID:     b.WorkspaceID,
		Name:            b.Name,
	}
}

// BoardUpdatedEvent is emitted when a board's fields change
type BoardUpdatedEvent struct {
	shared.BaseDomainEvent
}

// NewBoardUpdatedEvent creates a BoardUpdatedEvent
func NewBoardUpdatedEvent(b *Board) *BoardUpdatedEvent {
	return &BoardUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventBoardUpdated, "Board", b.ID, b.TenantID),
	}
}

// BoardDeletedEvent is emitted when a board is soft-deleted
type BoardDeletedEvent struct {
	shared.BaseDomainEvent
}

// NewBoardDeletedEvent creates a BoardDeletedEvent
func NewBoardDeletedEvent(b *Board) *BoardDeletedEvent {
	return &BoardDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventBoardDeleted, "Board", b.ID, b.TenantID),
	}
}
