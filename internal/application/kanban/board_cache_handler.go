package kanban

import (
	"context"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
)

// BoardCacheInvalidator drops cached board detail whenever a column
// mutation changes the board's shape. Board-level mutations invalidate
// inline in BoardService; column events arrive here via the bus.
type BoardCacheInvalidator struct {
	cache BoardCache
}

// NewBoardCacheInvalidator creates a new BoardCacheInvalidator
func NewBoardCacheInvalidator(cache BoardCache) *BoardCacheInvalidator {
	return &BoardCacheInvalidator{cache: cache}
}

// EventTypes returns the column events that change a board's shape
func (h *BoardCacheInvalidator) EventTypes() []string {
	return []string{
		kanban.EventColumnCreated,
		kanban.EventColumnUpdated,
		kanban.EventColumnReordered,
		kanban.EventColumnDeleted,
	}
}

// Handle invalidates the cached board the column belongs to
func (h *BoardCacheInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	var boardID uuid.UUID
	switch e := event.(type) {
	case *kanban.ColumnCreatedEvent:
		boardID = e.BoardID
	case *kanban.ColumnUpdatedEvent:
		boardID = e.BoardID
	case *kanban.ColumnReorderedEvent:
		boardID = e.BoardID
	case *kanban.ColumnDeletedEvent:
		boardID = e.BoardID
	default:
		return nil
	}
	h.cache.InvalidateBoard(ctx, event.TenantID(), boardID)
	return nil
}
