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

type columnServiceFixture struct {
	columnRepo *MockColumnRepository
	boardRepo  *MockBoardRepository
	cardRepo   *MockCardRepository
	publisher  *MockEventPublisher
	service    *ColumnService

	tenantID uuid.UUID
	board    *kanban.Board
}

func newColumnServiceFixture(t *testing.T) *columnServiceFixture {
	t.Helper()

	f := &columnServiceFixture{
		columnRepo: new(MockColumnRepository),
		boardRepo:  new(MockBoardRepository),
		cardRepo:   new(MockCardRepository),
		publisher:  NewMockEventPublisher(),
		tenantID:   uuid.New(),
	}

	board, err := kanban.NewBoard(f.tenantID, uuid.New(), "Sprint", "")
	require.NoError(t, err)
	board.ClearDomainEvents()
	f.board = board

	txScope := NewNoOpTransactionScope(f.boardRepo, f.columnRepo, f.cardRepo)
	f.service = NewColumnService(f.columnRepo, f.boardRepo, f.cardRepo, txScope)
	f.service.SetEventPublisher(f.publisher)
	return f
}

func (f *columnServiceFixture) newTestColumn(t *testing.T, name string, position int) *kanban.Column {
	t.Helper()
	column, err := kanban.NewColumn(f.tenantID, f.board.ID, name, position)
	require.NoError(t, err)
	column.ClearDomainEvents()
	return column
}

func TestColumnServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("appends after existing columns", func(t *testing.T) {
		f := newColumnServiceFixture(t)
		existing := []kanban.Column{
			*f.newTestColumn(t, "Todo", 1024),
			*f.newTestColumn(t, "Doing", 2048),
		}

		f.boardRepo.On("FindByIDForTenant", ctx, f.tenantID, f.board.ID).Return(f.board, nil)
		f.columnRepo.On("ListByBoard", ctx, f.tenantID, f.board.ID).Return(existing, nil)
		f.columnRepo.On("Create", ctx, mock.AnythingOfType("*kanban.Column")).Return(nil)

		limit := 5
		resp, err := f.service.Create(ctx, f.tenantID, CreateColumnRequest{
			BoardID:  f.board.ID,
			Name:     "Done",
			WIPLimit: &limit,
		})

		require.NoError(t, err)
		assert.Equal(t, 3072, resp.Position)
		assert.Equal(t, 1, resp.Version)
		require.NotNil(t, resp.WIPLimit)
		assert.Equal(t, 5, *resp.WIPLimit)
		assert.Len(t, f.publisher.GetEventsByType(kanban.EventColumnCreated), 1)
	})

	t.Run("unknown board is not found", func(t *testing.T) {
		f := newColumnServiceFixture(t)
		boardID := uuid.New()

		f.boardRepo.On("FindByIDForTenant", ctx, f.tenantID, boardID).Return(nil, shared.ErrNotFound)

		_, err := f.service.Create(ctx, f.tenantID, CreateColumnRequest{
			BoardID: boardID,
			Name:    "Nowhere",
		})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestColumnServiceReorder(t *testing.T) {
	ctx := context.Background()

	t.Run("start target goes before first sibling", func(t *testing.T) {
		f := newColumnServiceFixture(t)
		first := f.newTestColumn(t, "Todo", 1024)
		moving := f.newTestColumn(t, "Done", 2048)

		f.columnRepo.On("FindByIDForTenant", ctx, f.tenantID, moving.ID).Return(moving, nil)
		f.columnRepo.On("ListByBoard", ctx, f.tenantID, f.board.ID).Return([]kanban.Column{*first, *moving}, nil)
		f.columnRepo.On("SaveWithLock", ctx, moving).Return(nil)

		resp, err := f.service.Reorder(ctx, f.tenantID, moving.ID, ReorderColumnRequest{
			Target: TargetRequest{Kind: "start"},
		})

		require.NoError(t, err)
		assert.Equal(t, 0, resp.Position)
		assert.Equal(t, 2, resp.Version)
		assert.Len(t, f.publisher.GetEventsByType(kanban.EventColumnReordered), 1)
	})

	t.Run("start onto occupied floor rebalances", func(t *testing.T) {
		f := newColumnServiceFixture(t)
		first := f.newTestColumn(t, "Todo", 0)
		moving := f.newTestColumn(t, "Done", 1024)

		var batch []kanban.PositionAssignment
		f.columnRepo.On("FindByIDForTenant", ctx, f.tenantID, moving.ID).Return(moving, nil)
		f.columnRepo.On("ListByBoard", ctx, f.tenantID, f.board.ID).Return([]kanban.Column{*first, *moving}, nil)
		f.columnRepo.On("UpdatePositions", ctx, f.tenantID, f.board.ID, mock.Anything).
			Run(func(args mock.Arguments) {
				batch = args.Get(3).([]kanban.PositionAssignment)
			}).Return(nil)
		f.columnRepo.On("SaveWithLock", ctx, moving).Return(nil)

		resp, err := f.service.Reorder(ctx, f.tenantID, moving.ID, ReorderColumnRequest{
			Target: TargetRequest{Kind: "start"},
		})

		require.NoError(t, err)
		assert.Equal(t, 0, resp.Position)
		require.Len(t, batch, 1)
		assert.Equal(t, kanban.PositionAssignment{ID: first.ID, Position: kanban.DefaultGap}, batch[0])
	})

	t.Run("stale expected version fails", func(t *testing.T) {
		f := newColumnServiceFixture(t)
		moving := f.newTestColumn(t, "Contested", 1024)
		moving.IncrementVersion()

		f.columnRepo.On("FindByIDForTenant", ctx, f.tenantID, moving.ID).Return(moving, nil)

		stale := 1
		_, err := f.service.Reorder(ctx, f.tenantID, moving.ID, ReorderColumnRequest{
			Target:          TargetRequest{Kind: "end"},
			ExpectedVersion: &stale,
		})

		assert.ErrorIs(t, err, shared.ErrVersionConflict)
		f.columnRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestColumnServiceUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("renames and clears WIP limit", func(t *testing.T) {
		f := newColumnServiceFixture(t)
		column := f.newTestColumn(t, "Old", 1024)
		limit := 3
		require.NoError(t, column.SetWIPLimit(&limit))

		f.columnRepo.On("FindByIDForTenant", ctx, f.tenantID, column.ID).Return(column, nil)
		f.columnRepo.On("SaveWithLock", ctx, column).Return(nil)

		resp, err := f.service.Update(ctx, f.tenantID, column.ID, UpdateColumnRequest{
			Name:          "New",
			ClearWIPLimit: true,
		})

		require.NoError(t, err)
		assert.Equal(t, "New", resp.Name)
		assert.Nil(t, resp.WIPLimit)
		assert.Equal(t, 2, resp.Version)
	})

	t.Run("omitted WIP limit keeps the current one", func(t *testing.T) {
		f := newColumnServiceFixture(t)
		column := f.newTestColumn(t, "Old", 1024)
		limit := 3
		require.NoError(t, column.SetWIPLimit(&limit))

		f.columnRepo.On("FindByIDForTenant", ctx, f.tenantID, column.ID).Return(column, nil)
		f.columnRepo.On("SaveWithLock", ctx, column).Return(nil)

		resp, err := f.service.Update(ctx, f.tenantID, column.ID, UpdateColumnRequest{Name: "New"})

		require.NoError(t, err)
		require.NotNil(t, resp.WIPLimit)
		assert.Equal(t, 3, *resp.WIPLimit)
	})
}

func TestColumnServiceDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes empty column", func(t *testing.T) {
		f := newColumnServiceFixture(t)
		column := f.newTestColumn(t, "Empty", 1024)

		f.columnRepo.On("FindByIDForTenant", ctx, f.tenantID, column.ID).Return(column, nil)
		f.cardRepo.On("CountActiveByColumn", ctx, f.tenantID, column.ID).Return(int64(0), nil)
		f.columnRepo.On("SaveWithLock", ctx, column).Return(nil)

		err := f.service.Delete(ctx, f.tenantID, column.ID, nil)

		require.NoError(t, err)
		assert.True(t, column.IsDeleted())
	})

	t.Run("refuses to delete column holding cards", func(t *testing.T) {
		f := newColumnServiceFixture(t)
		column := f.newTestColumn(t, "Busy", 1024)

		f.columnRepo.On("FindByIDForTenant", ctx, f.tenantID, column.ID).Return(column, nil)
		f.cardRepo.On("CountActiveByColumn", ctx, f.tenantID, column.ID).Return(int64(3), nil)

		err := f.service.Delete(ctx, f.tenantID, column.ID, nil)

		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.False(t, column.IsDeleted())
	})
}
