package kanban

import (
	"context"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditHandler records every kanban mutation as an append-only audit row.
// It runs asynchronously off the event bus after the mutation committed;
// an audit write failure is logged and never surfaces to the caller.
type AuditHandler struct {
	auditRepo kanban.AuditRepository
	logger    *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditRepo kanban.AuditRepository, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in.
// Empty means all events; the audit trail covers every mutation.
func (h *AuditHandler) EventTypes() []string {
	return nil
}

// Handle persists an audit record for the event
func (h *AuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	record := &kanban.AuditRecord{
		ID:            uuid.New(),
		TenantID:      event.TenantID(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		EventType:     event.EventType(),
		Operation:     string(operationFor(event)),
		OccurredAt:    event.OccurredAt(),
	}

	if change, ok := orderingChangeOf(event); ok {
		record.OldPosition = &change.OldPosition
		record.NewPosition = &change.NewPosition
		record.OldVersion = &change.OldVersion
		record.NewVersion = &change.NewVersion
		record.Rebalanced = change.Rebalanced
	}

	if err := h.auditRepo.Append(ctx, record); err != nil {
		h.logger.Error("failed to append audit record",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// orderingChangeOf extracts the before/after ordering facts from events
// that carry them.
func orderingChangeOf(event shared.DomainEvent) (kanban.OrderingChange, bool) {
	switch e := event.(type) {
	case *kanban.CardUpdatedEvent:
		return e.Change, true
	case *kanban.CardReorderedEvent:
		return e.Change, true
	case *kanban.CardMovedEvent:
		return e.Change, true
	case *kanban.ColumnUpdatedEvent:
		return e.Change, true
	case *kanban.ColumnReorderedEvent:
		return e.Change, true
	default:
		return kanban.OrderingChange{}, false
	}
}

func operationFor(event shared.DomainEvent) kanban.Operation {
	if change, ok := orderingChangeOf(event); ok {
		return change.Operation
	}
	switch event.EventType() {
	case kanban.EventCardDeleted, kanban.EventColumnDeleted, kanban.EventBoardDeleted,
		kanban.EventWorkspaceDeleted, kanban.EventCommentDeleted, kanban.EventAttachmentDeleted:
		return kanban.OpDelete
	case kanban.EventBoardUpdated, kanban.EventWorkspaceUpdated:
		return kanban.OpUpdate
	default:
		return kanban.OpCreate
	}
}
