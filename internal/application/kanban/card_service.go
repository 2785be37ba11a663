package kanban

import (
	"context"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
)

// CardService coordinates card operations: content updates, placement
// within a column, and moves across columns. Every mutation runs inside a
// transaction scope so that placement writes (the card plus any rebalance
// batch) commit atomically, and every write goes through the version
// guard so that concurrent editors lose cleanly instead of silently.
// When two placements race onto the same position the database rejects
// the second commit and the transaction reruns against the winner's rows.
type CardService struct {
	cardRepo       kanban.CardRepository
	columnRepo     kanban.ColumnRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
}

// NewCardService creates a new CardService
func NewCardService(
	cardRepo kanban.CardRepository,
	columnRepo kanban.ColumnRepository,
	txScope TransactionScope,
) *CardService {
	return &CardService{
		cardRepo:   cardRepo,
		columnRepo: columnRepo,
		txScope:    txScope,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CardService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishDomainEvents publishes the card's accumulated events after commit.
// Publish failures are logged by the bus, never propagated to the caller.
func (s *CardService) publishDomainEvents(ctx context.Context, card *kanban.Card) {
	if s.eventPublisher == nil {
		return
	}
	events := card.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	card.ClearDomainEvents()
}

// checkVersion is the optimistic concurrency pre-check. A nil expected
// version skips the guard (unconditional write); a stale one fails fast
// before any state is touched. The definitive check still happens at
// write time inside SaveWithLock.
func checkVersion(current int, expected *int) error {
	if expected == nil {
		return nil
	}
	if *expected != current {
		return shared.ErrVersionConflict
	}
	return nil
}

// resolvePlacement applies a computed placement to a column's cards.
// For a plain placement it returns the slot untouched. For a rebalance it
// extracts the placed card's slot from the batch and writes the remaining
// assignments through the repository, all inside the ambient transaction.
func resolveCardPlacement(
	ctx context.Context,
	repo kanban.CardRepository,
	tenantID, columnID, cardID uuid.UUID,
	placement kanban.Placement,
) (int, error) {
	if !placement.Rebalance {
		return placement.Position, nil
	}

	position := placement.Position
	rest := make([]kanban.PositionAssignment, 0, len(placement.Assignments))
	for _, a := range placement.Assignments {
		if a.ID == cardID {
			position = a.Position
			continue
		}
		rest = append(rest, a)
	}
	if len(rest) > 0 {
		if err := repo.UpdatePositions(ctx, tenantID, columnID, rest); err != nil {
			return 0, err
		}
	}
	return position, nil
}

// Create creates a card in a column, placed according to the request
// target (end of column when omitted).
func (s *CardService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCardRequest) (*CardResponse, error) {
	target := kanban.End()
	if req.Target != nil {
		var err error
		if target, err = req.Target.ToDomain(); err != nil {
			return nil, err
		}
	}

	var card *kanban.Card
	attempt := func(repos TransactionalRepositories) error {
		column, err := repos.ColumnRepo().FindByIDForTenant(ctx, tenantID, req.ColumnID)
		if err != nil {
			return err
		}

		active, err := repos.CardRepo().CountActiveByColumn(ctx, tenantID, column.ID)
		if err != nil {
			return err
		}
		if !column.CanAcceptCard(active) {
			return shared.ErrWIPLimitReached
		}

		siblings, err := repos.CardRepo().ListByColumn(ctx, tenantID, column.ID)
		if err != nil {
			return err
		}

		// The card does not exist yet, so uuid.Nil stands in for it in the
		// placement batch and is skipped when the batch is written.
		placement, err := kanban.ComputePlacement(kanban.CardSiblings(siblings, uuid.Nil), uuid.Nil, target, false)
		if err != nil {
			return err
		}
		position, err := resolveCardPlacement(ctx, repos.CardRepo(), tenantID, column.ID, uuid.Nil, placement)
		if err != nil {
			return err
		}

		card, err = kanban.NewCard(tenantID, column.BoardID, column.ID, req.Title, position)
		if err != nil {
			return err
		}

		patch := kanban.CardPatch{
			Description: &req.Description,
			Labels:      req.Labels,
			Assignees:   req.Assignees,
			DueAt:       req.DueAt,
		}
		if req.Priority != nil {
			p := kanban.Priority(*req.Priority)
			patch.Priority = &p
		}
		if err := card.ApplyInitial(patch); err != nil {
			return err
		}

		return repos.CardRepo().Create(ctx, card)
	}
	err := retryPlacement(func() error {
		return s.txScope.Execute(ctx, attempt)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, card)
	return ToCardResponse(card), nil
}

// GetByID retrieves a card by ID
func (s *CardService) GetByID(ctx context.Context, tenantID, cardID uuid.UUID) (*CardResponse, error) {
	card, err := s.cardRepo.FindByIDForTenant(ctx, tenantID, cardID)
	if err != nil {
		return nil, err
	}
	return ToCardResponse(card), nil
}

// ListByColumn returns a column's cards in board order
func (s *CardService) ListByColumn(ctx context.Context, tenantID, columnID uuid.UUID) ([]*CardResponse, error) {
	if _, err := s.columnRepo.FindByIDForTenant(ctx, tenantID, columnID); err != nil {
		return nil, err
	}
	cards, err := s.cardRepo.ListByColumn(ctx, tenantID, columnID)
	if err != nil {
		return nil, err
	}
	out := make([]*CardResponse, len(cards))
	for i := range cards {
		out[i] = ToCardResponse(&cards[i])
	}
	return out, nil
}

// ListByBoard returns a filtered, paginated card listing across a board
func (s *CardService) ListByBoard(ctx context.Context, tenantID, boardID uuid.UUID, filter CardListFilter) (*PaginatedResponse[*CardResponse], error) {
	domainFilter := filter.ToDomain()
	cards, total, err := s.cardRepo.ListByBoard(ctx, tenantID, boardID, domainFilter)
	if err != nil {
		return nil, err
	}
	items := make([]*CardResponse, len(cards))
	for i := range cards {
		items[i] = ToCardResponse(&cards[i])
	}
	return NewPaginatedResponse(items, total, domainFilter.Page, domainFilter.PageSize), nil
}

// Update patches a card's content fields. The whole patch is one
// mutation: one version increment regardless of how many fields change.
func (s *CardService) Update(ctx context.Context, tenantID, cardID uuid.UUID, req UpdateCardRequest) (*CardResponse, error) {
	var card *kanban.Card
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		card, err = repos.CardRepo().FindByIDForTenant(ctx, tenantID, cardID)
		if err != nil {
			return err
		}
		if err := checkVersion(card.Version, req.ExpectedVersion); err != nil {
			return err
		}

		patch := kanban.CardPatch{
			Title:       req.Title,
			Description: req.Description,
			Labels:      req.Labels,
			Assignees:   req.Assignees,
			DueAt:       req.DueAt,
			ClearDueAt:  req.ClearDueAt,
		}
		if req.Priority != nil {
			p := kanban.Priority(*req.Priority)
			patch.Priority = &p
		}
		if err := card.Apply(patch); err != nil {
			return err
		}

		return repos.CardRepo().SaveWithLock(ctx, card)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, card)
	return ToCardResponse(card), nil
}

// Reorder repositions a card within its current column.
func (s *CardService) Reorder(ctx context.Context, tenantID, cardID uuid.UUID, req ReorderCardRequest) (*CardResponse, error) {
	target, err := req.Target.ToDomain()
	if err != nil {
		return nil, err
	}

	var card *kanban.Card
	attempt := func(repos TransactionalRepositories) error {
		var err error
		card, err = repos.CardRepo().FindByIDForTenant(ctx, tenantID, cardID)
		if err != nil {
			return err
		}
		if err := checkVersion(card.Version, req.ExpectedVersion); err != nil {
			return err
		}

		siblings, err := repos.CardRepo().ListByColumn(ctx, tenantID, card.ColumnID)
		if err != nil {
			return err
		}

		placement, err := kanban.ComputePlacement(kanban.CardSiblings(siblings, card.ID), card.ID, target, req.Displace)
		if err != nil {
			return err
		}
		position, err := resolveCardPlacement(ctx, repos.CardRepo(), tenantID, card.ColumnID, card.ID, placement)
		if err != nil {
			return err
		}

		card.PlaceAt(position, placement.Rebalance)
		return repos.CardRepo().SaveWithLock(ctx, card)
	}
	err = retryPlacement(func() error {
		return s.txScope.Execute(ctx, attempt)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, card)
	return ToCardResponse(card), nil
}

// Move transfers a card to a target column at a target placement. Moving
// to the card's current column is accepted and behaves like a reorder,
// but still counts as a mutation: the version increments either way.
func (s *CardService) Move(ctx context.Context, tenantID, cardID uuid.UUID, req MoveCardRequest) (*CardResponse, error) {
	target, err := req.Target.ToDomain()
	if err != nil {
		return nil, err
	}

	var card *kanban.Card
	attempt := func(repos TransactionalRepositories) error {
		var err error
		card, err = repos.CardRepo().FindByIDForTenant(ctx, tenantID, cardID)
		if err != nil {
			return err
		}
		if err := checkVersion(card.Version, req.ExpectedVersion); err != nil {
			return err
		}

		column, err := repos.ColumnRepo().FindByIDForTenant(ctx, tenantID, req.TargetColumnID)
		if err != nil {
			return err
		}
		if column.BoardID != card.BoardID {
			return shared.ErrInvalidTarget
		}

		if column.ID != card.ColumnID {
			active, err := repos.CardRepo().CountActiveByColumn(ctx, tenantID, column.ID)
			if err != nil {
				return err
			}
			if !column.CanAcceptCard(active) {
				return shared.ErrWIPLimitReached
			}
		}

		// The destination sibling set never contains the moving card:
		// excluded when moving within the same column, absent otherwise.
		siblings, err := repos.CardRepo().ListByColumn(ctx, tenantID, column.ID)
		if err != nil {
			return err
		}

		placement, err := kanban.ComputePlacement(kanban.CardSiblings(siblings, card.ID), card.ID, target, req.Displace)
		if err != nil {
			return err
		}
		position, err := resolveCardPlacement(ctx, repos.CardRepo(), tenantID, column.ID, card.ID, placement)
		if err != nil {
			return err
		}

		card.MoveTo(column.ID, position, placement.Rebalance)
		return repos.CardRepo().SaveWithLock(ctx, card)
	}
	err = retryPlacement(func() error {
		return s.txScope.Execute(ctx, attempt)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, card)
	return ToCardResponse(card), nil
}

// Delete soft-deletes a card. The row survives with its deletion
// timestamp set and drops out of every listing and sibling set.
func (s *CardService) Delete(ctx context.Context, tenantID, cardID uuid.UUID, expectedVersion *int) error {
	var card *kanban.Card
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		card, err = repos.CardRepo().FindByIDForTenant(ctx, tenantID, cardID)
		if err != nil {
			return err
		}
		if err := checkVersion(card.Version, expectedVersion); err != nil {
			return err
		}
		if err := card.Delete(); err != nil {
			return err
		}
		return repos.CardRepo().SaveWithLock(ctx, card)
	})
	if err != nil {
		return err
	}

	s.publishDomainEvents(ctx, card)
	return nil
}
