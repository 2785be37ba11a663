package kanban

import (
	"context"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
)

// ColumnService coordinates column lifecycle and board-scoped ordering.
// Columns use the same sparse positioning and version guard as cards;
// reorders route through the transaction scope so rebalance batches
// commit atomically with the moved column.
type ColumnService struct {
	columnRepo     kanban.ColumnRepository
	boardRepo      kanban.BoardRepository
	cardRepo       kanban.CardRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
}

// NewColumnService creates a new ColumnService
func NewColumnService(
	columnRepo kanban.ColumnRepository,
	boardRepo kanban.BoardRepository,
	cardRepo kanban.CardRepository,
	txScope TransactionScope,
) *ColumnService {
	return &ColumnService{
		columnRepo: columnRepo,
		boardRepo:  boardRepo,
		cardRepo:   cardRepo,
		txScope:    txScope,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ColumnService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ColumnService) publishDomainEvents(ctx context.Context, column *kanban.Column) {
	if s.eventPublisher == nil {
		return
	}
	events := column.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	column.ClearDomainEvents()
}

// resolveColumnPlacement mirrors resolveCardPlacement for board columns.
func resolveColumnPlacement(
	ctx context.Context,
	repo kanban.ColumnRepository,
	tenantID, boardID, columnID uuid.UUID,
	placement kanban.Placement,
) (int, error) {
	if !placement.Rebalance {
		return placement.Position, nil
	}

	position := placement.Position
	rest := make([]kanban.PositionAssignment, 0, len(placement.Assignments))
	for _, a := range placement.Assignments {
		if a.ID == columnID {
			position = a.Position
			continue
		}
		rest = append(rest, a)
	}
	if len(rest) > 0 {
		if err := repo.UpdatePositions(ctx, tenantID, boardID, rest); err != nil {
			return 0, err
		}
	}
	return position, nil
}

// Create appends a column at the end of its board.
func (s *ColumnService) Create(ctx context.Context, tenantID uuid.UUID, req CreateColumnRequest) (*ColumnResponse, error) {
	var column *kanban.Column
	attempt := func(repos TransactionalRepositories) error {
		board, err := repos.BoardRepo().FindByIDForTenant(ctx, tenantID, req.BoardID)
		if err != nil {
			return err
		}

		siblings, err := repos.ColumnRepo().ListByBoard(ctx, tenantID, board.ID)
		if err != nil {
			return err
		}

		placement, err := kanban.ComputePlacement(kanban.ColumnSiblings(siblings, uuid.Nil), uuid.Nil, kanban.End(), false)
		if err != nil {
			return err
		}

		column, err = kanban.NewColumn(tenantID, board.ID, req.Name, placement.Position)
		if err != nil {
			return err
		}
		if req.WIPLimit != nil {
			if err := column.SetWIPLimit(req.WIPLimit); err != nil {
				return err
			}
		}

		return repos.ColumnRepo().Create(ctx, column)
	}
	err := retryPlacement(func() error {
		return s.txScope.Execute(ctx, attempt)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, column)
	return ToColumnResponse(column), nil
}

// GetByID retrieves a column by ID
func (s *ColumnService) GetByID(ctx context.Context, tenantID, columnID uuid.UUID) (*ColumnResponse, error) {
	column, err := s.columnRepo.FindByIDForTenant(ctx, tenantID, columnID)
	if err != nil {
		return nil, err
	}
	return ToColumnResponse(column), nil
}

// ListByBoard returns a board's columns in position order
func (s *ColumnService) ListByBoard(ctx context.Context, tenantID, boardID uuid.UUID) ([]*ColumnResponse, error) {
	if _, err := s.boardRepo.FindByIDForTenant(ctx, tenantID, boardID); err != nil {
		return nil, err
	}
	columns, err := s.columnRepo.ListByBoard(ctx, tenantID, boardID)
	if err != nil {
		return nil, err
	}
	out := make([]*ColumnResponse, len(columns))
	for i := range columns {
		out[i] = ToColumnResponse(&columns[i])
	}
	return out, nil
}

// Update changes a column's name and WIP limit.
func (s *ColumnService) Update(ctx context.Context, tenantID, columnID uuid.UUID, req UpdateColumnRequest) (*ColumnResponse, error) {
	var column *kanban.Column
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		column, err = repos.ColumnRepo().FindByIDForTenant(ctx, tenantID, columnID)
		if err != nil {
			return err
		}
		if err := checkVersion(column.Version, req.ExpectedVersion); err != nil {
			return err
		}

		wipLimit := req.WIPLimit
		if req.ClearWIPLimit {
			wipLimit = nil
		} else if wipLimit == nil {
			wipLimit = column.WIPLimit
		}
		if err := column.Update(req.Name, wipLimit); err != nil {
			return err
		}

		return repos.ColumnRepo().SaveWithLock(ctx, column)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, column)
	return ToColumnResponse(column), nil
}

// Reorder repositions a column within its board.
func (s *ColumnService) Reorder(ctx context.Context, tenantID, columnID uuid.UUID, req ReorderColumnRequest) (*ColumnResponse, error) {
	target, err := req.Target.ToDomain()
	if err != nil {
		return nil, err
	}

	var column *kanban.Column
	attempt := func(repos TransactionalRepositories) error {
		var err error
		column, err = repos.ColumnRepo().FindByIDForTenant(ctx, tenantID, columnID)
		if err != nil {
			return err
		}
		if err := checkVersion(column.Version, req.ExpectedVersion); err != nil {
			return err
		}

		siblings, err := repos.ColumnRepo().ListByBoard(ctx, tenantID, column.BoardID)
		if err != nil {
			return err
		}

		placement, err := kanban.ComputePlacement(kanban.ColumnSiblings(siblings, column.ID), column.ID, target, req.Displace)
		if err != nil {
			return err
		}
		position, err := resolveColumnPlacement(ctx, repos.ColumnRepo(), tenantID, column.BoardID, column.ID, placement)
		if err != nil {
			return err
		}

		column.PlaceAt(position, placement.Rebalance)
		return repos.ColumnRepo().SaveWithLock(ctx, column)
	}
	err = retryPlacement(func() error {
		return s.txScope.Execute(ctx, attempt)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, column)
	return ToColumnResponse(column), nil
}

// Delete soft-deletes a column. A column still holding active cards
// cannot be deleted; move or delete the cards first.
func (s *ColumnService) Delete(ctx context.Context, tenantID, columnID uuid.UUID, expectedVersion *int) error {
	var column *kanban.Column
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		column, err = repos.ColumnRepo().FindByIDForTenant(ctx, tenantID, columnID)
		if err != nil {
			return err
		}
		if err := checkVersion(column.Version, expectedVersion); err != nil {
			return err
		}

		active, err := repos.CardRepo().CountActiveByColumn(ctx, tenantID, column.ID)
		if err != nil {
			return err
		}
		if active > 0 {
			return shared.ErrInvalidState
		}

		if err := column.Delete(); err != nil {
			return err
		}
		return repos.ColumnRepo().SaveWithLock(ctx, column)
	})
	if err != nil {
		return err
	}

	s.publishDomainEvents(ctx, column)
	return nil
}
