package kanban

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type boardServiceFixture struct {
	boardRepo     *MockBoardRepository
	columnRepo    *MockColumnRepository
	workspaceRepo *MockWorkspaceRepository
	cache         *MockBoardCache
	publisher     *MockEventPublisher
	service       *BoardService

	tenantID  uuid.UUID
	workspace *kanban.Workspace
}

func newBoardServiceFixture(t *testing.T) *boardServiceFixture {
	t.Helper()

	f := &boardServiceFixture{
		boardRepo:     new(MockBoardRepository),
		columnRepo:    new(MockColumnRepository),
		workspaceRepo: new(MockWorkspaceRepository),
		cache:         NewMockBoardCache(),
		publisher:     NewMockEventPublisher(),
		tenantID:      uuid.New(),
	}

	ws, err := kanban.NewWorkspace(f.tenantID, "Engineering", "")
	require.NoError(t, err)
	ws.ClearDomainEvents()
	f.workspace = ws

	f.service = NewBoardService(f.boardRepo, f.columnRepo, f.workspaceRepo)
	f.service.SetEventPublisher(f.publisher)
	f.service.SetCache(f.cache)
	return f
}

func (f *boardServiceFixture) newTestBoard(t *testing.T, name string) *kanban.Board {
	t.Helper()
	board, err := kanban.NewBoard(f.tenantID, f.workspace.ID, name, "")
	require.NoError(t, err)
	board.ClearDomainEvents()
	return board
}

func TestBoardServiceCreate(t *testing.T) {
	ctx := context.Background()
	f := newBoardServiceFixture(t)

	f.workspaceRepo.On("FindByIDForTenant", ctx, f.tenantID, f.workspace.ID).Return(f.workspace, nil)
	f.boardRepo.On("Create", ctx, mock.AnythingOfType("*kanban.Board")).Return(nil)

	resp, err := f.service.Create(ctx, f.tenantID, CreateBoardRequest{
		WorkspaceID: f.workspace.ID,
		Name:        "Sprint 12",
	})

	require.NoError(t, err)
	assert.Equal(t, "Sprint 12", resp.Name)
	assert.Equal(t, 1, resp.Version)
	assert.Len(t, f.publisher.GetEventsByType(kanban.EventBoardCreated), 1)
}

func TestBoardServiceGetDetail(t *testing.T) {
	ctx := context.Background()

	t.Run("cold cache loads and warms", func(t *testing.T) {
		f := newBoardServiceFixture(t)
		board := f.newTestBoard(t, "Sprint")
		columns := []kanban.Column{}

		f.boardRepo.On("FindByIDForTenant", ctx, f.tenantID, board.ID).Return(board, nil)
		f.columnRepo.On("ListByBoard", ctx, f.tenantID, board.ID).Return(columns, nil)

		detail, err := f.service.GetDetail(ctx, f.tenantID, board.ID)

		require.NoError(t, err)
		assert.Equal(t, board.ID, detail.ID)

		// Second call is served from cache; the mocks only allow one DB hit.
		again, err := f.service.GetDetail(ctx, f.tenantID, board.ID)
		require.NoError(t, err)
		assert.Equal(t, detail, again)
		f.boardRepo.AssertNumberOfCalls(t, "FindByIDForTenant", 1)
	})

	t.Run("update invalidates cached detail", func(t *testing.T) {
		f := newBoardServiceFixture(t)
		board := f.newTestBoard(t, "Sprint")

		f.boardRepo.On("FindByIDForTenant", ctx, f.tenantID, board.ID).Return(board, nil)
		f.columnRepo.On("ListByBoard", ctx, f.tenantID, board.ID).Return([]kanban.Column{}, nil)
		f.boardRepo.On("SaveWithLock", ctx, board).Return(nil)

		_, err := f.service.GetDetail(ctx, f.tenantID, board.ID)
		require.NoError(t, err)

		_, err = f.service.Update(ctx, f.tenantID, board.ID, UpdateBoardRequest{Name: "Renamed"})
		require.NoError(t, err)

		assert.Contains(t, f.cache.Invalidated(), board.ID)
	})
}

func TestBoardServiceUpdateVersionGuard(t *testing.T) {
	ctx := context.Background()
	f := newBoardServiceFixture(t)
	board := f.newTestBoard(t, "Guarded")
	board.IncrementVersion()

	f.boardRepo.On("FindByIDForTenant", ctx, f.tenantID, board.ID).Return(board, nil)

	stale := 1
	_, err := f.service.Update(ctx, f.tenantID, board.ID, UpdateBoardRequest{
		Name:            "Mine",
		ExpectedVersion: &stale,
	})

	assert.ErrorIs(t, err, shared.ErrVersionConflict)
}

func TestBoardCacheInvalidator(t *testing.T) {
	ctx := context.Background()
	cache := NewMockBoardCache()
	handler := NewBoardCacheInvalidator(cache)

	tenantID := uuid.New()
	boardID := uuid.New()
	column, err := kanban.NewColumn(tenantID, boardID, "Todo", 1024)
	require.NoError(t, err)

	events := column.GetDomainEvents()
	require.Len(t, events, 1)
	require.NoError(t, handler.Handle(ctx, events[0]))

	assert.Contains(t, cache.Invalidated(), boardID)
}
