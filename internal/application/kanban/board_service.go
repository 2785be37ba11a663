package kanban

import (
	"context"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
)

// BoardCache caches board detail lookups. Implementations must treat the
// cache as advisory: a miss or cache error falls through to the database.
type BoardCache interface {
	GetBoard(ctx context.Context, tenantID, boardID uuid.UUID) (*BoardDetailResponse, bool)
	SetBoard(ctx context.Context, tenantID uuid.UUID, board *BoardDetailResponse)
	InvalidateBoard(ctx context.Context, tenantID, boardID uuid.UUID)
}

// BoardService handles board lifecycle operations
type BoardService struct {
	boardRepo      kanban.BoardRepository
	columnRepo     kanban.ColumnRepository
	workspaceRepo  kanban.WorkspaceRepository
	cache          BoardCache
	eventPublisher shared.EventPublisher
}

// NewBoardService creates a new BoardService
func NewBoardService(
	boardRepo kanban.BoardRepository,
	columnRepo kanban.ColumnRepository,
	workspaceRepo kanban.WorkspaceRepository,
) *BoardService {
	return &BoardService{
		boardRepo:     boardRepo,
		columnRepo:    columnRepo,
		workspaceRepo: workspaceRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *BoardService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetCache sets the board detail cache
func (s *BoardService) SetCache(cache BoardCache) {
	s.cache = cache
}

func (s *BoardService) publishDomainEvents(ctx context.Context, board *kanban.Board) {
	if s.eventPublisher == nil {
		return
	}
	events := board.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	board.ClearDomainEvents()
}

func (s *BoardService) invalidate(ctx context.Context, tenantID, boardID uuid.UUID) {
	if s.cache != nil {
		s.cache.InvalidateBoard(ctx, tenantID, boardID)
	}
}

// Create creates a board within a workspace
func (s *BoardService) Create(ctx context.Context, tenantID uuid.UUID, req CreateBoardRequest) (*BoardResponse, error) {
	if _, err := s.workspaceRepo.FindByIDForTenant(ctx, tenantID, req.WorkspaceID); err != nil {
		return nil, err
	}

	board, err := kanban.NewBoard(tenantID, req.WorkspaceID, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.boardRepo.Create(ctx, board); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, board)
	return ToBoardResponse(board), nil
}

// GetByID retrieves a board by ID
func (s *BoardService) GetByID(ctx context.Context, tenantID, boardID uuid.UUID) (*BoardResponse, error) {
	board, err := s.boardRepo.FindByIDForTenant(ctx, tenantID, boardID)
	if err != nil {
		return nil, err
	}
	return ToBoardResponse(board), nil
}

// GetDetail retrieves a board with its ordered columns, served from the
// cache when warm.
func (s *BoardService) GetDetail(ctx context.Context, tenantID, boardID uuid.UUID) (*BoardDetailResponse, error) {
	if s.cache != nil {
		if detail, ok := s.cache.GetBoard(ctx, tenantID, boardID); ok {
			return detail, nil
		}
	}

	board, err := s.boardRepo.FindByIDForTenant(ctx, tenantID, boardID)
	if err != nil {
		return nil, err
	}
	columns, err := s.columnRepo.ListByBoard(ctx, tenantID, boardID)
	if err != nil {
		return nil, err
	}

	detail := &BoardDetailResponse{BoardResponse: *ToBoardResponse(board)}
	detail.Columns = make([]*ColumnResponse, len(columns))
	for i := range columns {
		detail.Columns[i] = ToColumnResponse(&columns[i])
	}

	if s.cache != nil {
		s.cache.SetBoard(ctx, tenantID, detail)
	}
	return detail, nil
}

// List returns the tenant's boards, paginated
func (s *BoardService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*PaginatedResponse[*BoardResponse], error) {
	boards, err := s.boardRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.boardRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]*BoardResponse, len(boards))
	for i := range boards {
		items[i] = ToBoardResponse(&boards[i])
	}
	return NewPaginatedResponse(items, total, filter.Page, filter.PageSize), nil
}

// Update changes a board's name and description
func (s *BoardService) Update(ctx context.Context, tenantID, boardID uuid.UUID, req UpdateBoardRequest) (*BoardResponse, error) {
	board, err := s.boardRepo.FindByIDForTenant(ctx, tenantID, boardID)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(board.Version, req.ExpectedVersion); err != nil {
		return nil, err
	}
	if err := board.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	if err := s.boardRepo.SaveWithLock(ctx, board); err != nil {
		return nil, err
	}

	s.invalidate(ctx, tenantID, boardID)
	s.publishDomainEvents(ctx, board)
	return ToBoardResponse(board), nil
}

// Delete soft-deletes a board
func (s *BoardService) Delete(ctx context.Context, tenantID, boardID uuid.UUID, expectedVersion *int) error {
	board, err := s.boardRepo.FindByIDForTenant(ctx, tenantID, boardID)
	if err != nil {
		return err
	}
	if err := checkVersion(board.Version, expectedVersion); err != nil {
		return err
	}
	if err := board.Delete(); err != nil {
		return err
	}
	if err := s.boardRepo.SaveWithLock(ctx, board); err != nil {
		return err
	}

	s.invalidate(ctx, tenantID, boardID)
	s.publishDomainEvents(ctx, board)
	return nil
}
