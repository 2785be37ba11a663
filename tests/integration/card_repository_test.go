package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
	"github.com/kanban/backend/internal/infrastructure/persistence"
)

// TestMain runs before any tests and handles cleanup
func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

// seedBoard creates a workspace, a board and three columns at sparse
// positions, giving card tests a realistic container to work in.
func seedBoard(t *testing.T, db *gorm.DB, tenantID uuid.UUID) (*kanban.Board, []*kanban.Column) {
	t.Helper()
	ctx := context.Background()

	wsRepo := persistence.NewGormWorkspaceRepository(db)
	boardRepo := persistence.NewGormBoardRepository(db)
	columnRepo := persistence.NewGormColumnRepository(db)

	ws, err := kanban.NewWorkspace(tenantID, "Engineering", "")
	require.NoError(t, err)
	require.NoError(t, wsRepo.Create(ctx, ws))

	board, err := kanban.NewBoard(tenantID, ws.ID, "Sprint Board", "")
	require.NoError(t, err)
	require.NoError(t, boardRepo.Create(ctx, board))

	names := []string{"Todo", "Doing", "Done"}
	columns := make([]*kanban.Column, 0, len(names))
	for i, name := range names {
		col, err := kanban.NewColumn(tenantID, board.ID, name, (i+1)*kanban.DefaultGap)
		require.NoError(t, err)
		require.NoError(t, columnRepo.Create(ctx, col))
		columns = append(columns, col)
	}
	return board, columns
}

func seedCard(t *testing.T, db *gorm.DB, tenantID uuid.UUID, board *kanban.Board, column *kanban.Column, title string, position int) *kanban.Card {
	t.Helper()
	card, err := kanban.NewCard(tenantID, board.ID, column.ID, title, position)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormCardRepository(db).Create(context.Background(), card))
	return card
}

// TestCardRepository_Integration exercises the card repository against a
// real PostgreSQL database.
func TestCardRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormCardRepository(testDB.DB)
	ctx := context.Background()
	tenantID := uuid.New()

	board, columns := seedBoard(t, testDB.DB, tenantID)
	todo := columns[0]

	t.Run("Create and FindByIDForTenant", func(t *testing.T) {
		card := seedCard(t, testDB.DB, tenantID, board, todo, "Write release notes", kanban.DefaultGap)

		found, err := repo.FindByIDForTenant(ctx, tenantID, card.ID)
		require.NoError(t, err)
		assert.Equal(t, card.ID, found.ID)
		assert.Equal(t, "Write release notes", found.Title)
		assert.Equal(t, todo.ID, found.ColumnID)
		assert.Equal(t, 1, found.Version)

		// Other tenants never see the row
		_, err = repo.FindByIDForTenant(ctx, uuid.New(), card.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("ListByColumn returns position order", func(t *testing.T) {
		col := columns[1]
		c3 := seedCard(t, testDB.DB, tenantID, board, col, "third", 3*kanban.DefaultGap)
		c1 := seedCard(t, testDB.DB, tenantID, board, col, "first", kanban.DefaultGap)
		c2 := seedCard(t, testDB.DB, tenantID, board, col, "second", 2*kanban.DefaultGap)

		cards, err := repo.ListByColumn(ctx, tenantID, col.ID)
		require.NoError(t, err)
		require.Len(t, cards, 3)
		assert.Equal(t, []uuid.UUID{c1.ID, c2.ID, c3.ID}, []uuid.UUID{cards[0].ID, cards[1].ID, cards[2].ID})
	})

	t.Run("SaveWithLock detects version conflicts", func(t *testing.T) {
		card := seedCard(t, testDB.DB, tenantID, board, todo, "Contested card", 5*kanban.DefaultGap)

		first, err := repo.FindByIDForTenant(ctx, tenantID, card.ID)
		require.NoError(t, err)
		second, err := repo.FindByIDForTenant(ctx, tenantID, card.ID)
		require.NoError(t, err)

		require.NoError(t, first.Apply(kanban.CardPatch{Description: strPtr("first writer")}))
		require.NoError(t, repo.SaveWithLock(ctx, first))

		// The second writer still holds the old version
		require.NoError(t, second.Apply(kanban.CardPatch{Description: strPtr("second writer")}))
		err = repo.SaveWithLock(ctx, second)
		assert.ErrorIs(t, err, shared.ErrVersionConflict)

		current, err := repo.FindByIDForTenant(ctx, tenantID, card.ID)
		require.NoError(t, err)
		assert.Equal(t, "first writer", current.Description)
		assert.Equal(t, 2, current.Version)
	})

	t.Run("UpdatePositions renumbers and bumps versions", func(t *testing.T) {
		col := columns[2]
		a := seedCard(t, testDB.DB, tenantID, board, col, "a", 1)
		b := seedCard(t, testDB.DB, tenantID, board, col, "b", 2)

		err := repo.UpdatePositions(ctx, tenantID, col.ID, []kanban.PositionAssignment{
			{ID: a.ID, Position: kanban.DefaultGap},
			{ID: b.ID, Position: 2 * kanban.DefaultGap},
		})
		require.NoError(t, err)

		cards, err := repo.ListByColumn(ctx, tenantID, col.ID)
		require.NoError(t, err)
		require.Len(t, cards, 2)
		assert.Equal(t, kanban.DefaultGap, cards[0].Position)
		assert.Equal(t, 2*kanban.DefaultGap, cards[1].Position)
		assert.Equal(t, 2, cards[0].Version)
		assert.Equal(t, 2, cards[1].Version)
	})

	t.Run("Soft delete drops the card from every read", func(t *testing.T) {
		card := seedCard(t, testDB.DB, tenantID, board, todo, "Doomed card", 9*kanban.DefaultGap)

		before, err := repo.CountActiveByColumn(ctx, tenantID, todo.ID)
		require.NoError(t, err)

		require.NoError(t, card.Delete())
		require.NoError(t, repo.SaveWithLock(ctx, card))

		_, err = repo.FindByIDForTenant(ctx, tenantID, card.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		after, err := repo.CountActiveByColumn(ctx, tenantID, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, before-1, after)

		// The row itself survives with its deletion timestamp set
		var deletedAt *time.Time
		err = testDB.DB.Table("cards").Select("deleted_at").Where("id = ?", card.ID).Scan(&deletedAt).Error
		require.NoError(t, err)
		assert.NotNil(t, deletedAt)
	})
}

func strPtr(s string) *string { return &s }
