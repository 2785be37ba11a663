package kanban

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/shared"
)

// Repository contracts for the kanban aggregates.
//
// Every read excludes soft-deleted rows and filters on tenant_id; the
// soft-delete predicate is the repository's responsibility, never the
// caller's. SaveWithLock is the optimistic concurrency primitive: it
// writes WHERE version = aggregate.Version-1 inside the ambient
// transaction and reports VersionConflict when the row moved underneath
// the caller. UpdatePositions is the rebalance primitive: one atomic
// batch that renumbers siblings and bumps each touched row's version by
// exactly one.

// WorkspaceRepository persists workspaces
type WorkspaceRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Workspace, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Workspace, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
	Create(ctx context.Context, ws *Workspace) error
	SaveWithLock(ctx context.Context, ws *Workspace) error
}

// BoardRepository persists boards
type BoardRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Board, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Board, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Create(ctx context.Context, board *Board) error
	SaveWithLock(ctx context.Context, board *Board) error
}

// ColumnRepository persists columns and their board-scoped ordering
type ColumnRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Column, error)
	// ListByBoard returns the board's non-deleted columns ordered by position
	ListByBoard(ctx context.Context, tenantID, boardID uuid.UUID) ([]Column, error)
	Create(ctx context.Context, column *Column) error
	SaveWithLock(ctx context.Context, column *Column) error
	// UpdatePositions applies a rebalance batch to the board's columns.
	// Must run inside a transaction; each row's version increments by 1.
	UpdatePositions(ctx context.Context, tenantID, boardID uuid.UUID, assignments []PositionAssignment) error
}

// CardFilter narrows card listings
type CardFilter struct {
	shared.Filter
	ColumnID  *uuid.UUID
	Priority  *Priority
	Label     string
	Assignee  string
	DueBefore *time.Time
}

// CardRepository persists cards and their column-scoped ordering
type CardRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Card, error)
	// ListByColumn returns the column's non-deleted cards ordered by position
	ListByColumn(ctx context.Context, tenantID, columnID uuid.UUID) ([]Card, error)
	// ListByBoard returns cards across a board with filtering and search
	ListByBoard(ctx context.Context, tenantID, boardID uuid.UUID, filter CardFilter) ([]Card, int64, error)
	// CountActiveByColumn counts non-deleted cards, for WIP checks
	CountActiveByColumn(ctx context.Context, tenantID, columnID uuid.UUID) (int64, error)
	Create(ctx context.Context, card *Card) error
	SaveWithLock(ctx context.Context, card *Card) error
	// UpdatePositions applies a rebalance batch to the column's cards.
	// Must run inside a transaction; each row's version increments by 1.
	UpdatePositions(ctx context.Context, tenantID, columnID uuid.UUID, assignments []PositionAssignment) error
}

// CommentRepository persists card comments
type CommentRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Comment, error)
	ListByCard(ctx context.Context, tenantID, cardID uuid.UUID, filter shared.Filter) ([]Comment, int64, error)
	Create(ctx context.Context, comment *Comment) error
	SaveWithLock(ctx context.Context, comment *Comment) error
}

// AttachmentRepository persists attachment metadata
type AttachmentRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Attachment, error)
	ListByCard(ctx context.Context, tenantID, cardID uuid.UUID) ([]Attachment, error)
	Create(ctx context.Context, attachment *Attachment) error
	SaveWithLock(ctx context.Context, attachment *Attachment) error
}

// AuditRepository appends and reads audit records
type AuditRepository interface {
	Append(ctx context.Context, record *AuditRecord) error
	ListForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]AuditRecord, int64, error)
}
