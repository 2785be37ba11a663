package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	appkanban "github.com/kanban/backend/internal/application/kanban"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
	"github.com/kanban/backend/internal/infrastructure/persistence"
)

func newCardService(db *gorm.DB) *appkanban.CardService {
	return appkanban.NewCardService(
		persistence.NewGormCardRepository(db),
		persistence.NewGormColumnRepository(db),
		persistence.NewGormTransactionScope(db),
	)
}

func newColumnService(db *gorm.DB) *appkanban.ColumnService {
	return appkanban.NewColumnService(
		persistence.NewGormColumnRepository(db),
		persistence.NewGormBoardRepository(db),
		persistence.NewGormCardRepository(db),
		persistence.NewGormTransactionScope(db),
	)
}

// TestCardOrdering_Integration drives card placement through the
// application services over a real database: sparse appends, midpoint
// inserts, displacement rebalances and cross-column moves, all inside
// real transactions.
func TestCardOrdering_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	ctx := context.Background()
	tenantID := uuid.New()

	board, columns := seedBoard(t, testDB.DB, tenantID)
	todo, doing := columns[0], columns[1]

	svc := newCardService(testDB.DB)
	cardRepo := persistence.NewGormCardRepository(testDB.DB)

	t.Run("Create appends at sparse gaps", func(t *testing.T) {
		first, err := svc.Create(ctx, tenantID, appkanban.CreateCardRequest{ColumnID: todo.ID, Title: "first"})
		require.NoError(t, err)
		assert.Equal(t, kanban.DefaultGap, first.Position)
		assert.Equal(t, 1, first.Version)

		second, err := svc.Create(ctx, tenantID, appkanban.CreateCardRequest{ColumnID: todo.ID, Title: "second"})
		require.NoError(t, err)
		assert.Equal(t, 2*kanban.DefaultGap, second.Position)

		third, err := svc.Create(ctx, tenantID, appkanban.CreateCardRequest{ColumnID: todo.ID, Title: "third"})
		require.NoError(t, err)
		assert.Equal(t, 3*kanban.DefaultGap, third.Position)

		t.Run("Reorder before a sibling takes the midpoint", func(t *testing.T) {
			moved, err := svc.Reorder(ctx, tenantID, third.ID, appkanban.ReorderCardRequest{
				Target: appkanban.TargetRequest{Kind: "before", Ref: &second.ID},
			})
			require.NoError(t, err)
			// Midpoint of 1024 and 2048
			assert.Equal(t, kanban.DefaultGap+kanban.DefaultGap/2, moved.Position)
			assert.Equal(t, 2, moved.Version)
			assert.False(t, movedSiblingsTouched(t, cardRepo, ctx, tenantID, todo.ID, first.ID, second.ID))
		})

		t.Run("Reorder to start floors at zero", func(t *testing.T) {
			moved, err := svc.Reorder(ctx, tenantID, second.ID, appkanban.ReorderCardRequest{
				Target: appkanban.TargetRequest{Kind: "start"},
			})
			require.NoError(t, err)
			assert.Equal(t, kanban.MinPosition, moved.Position)
		})
	})

	t.Run("Absolute collision rejects without displace", func(t *testing.T) {
		a, err := svc.Create(ctx, tenantID, appkanban.CreateCardRequest{ColumnID: doing.ID, Title: "a"})
		require.NoError(t, err)
		b, err := svc.Create(ctx, tenantID, appkanban.CreateCardRequest{ColumnID: doing.ID, Title: "b"})
		require.NoError(t, err)

		_, err = svc.Reorder(ctx, tenantID, b.ID, appkanban.ReorderCardRequest{
			Target: appkanban.TargetRequest{Kind: "absolute", Position: intPtr(a.Position)},
		})
		assert.ErrorIs(t, err, shared.ErrPositionConflict)

		t.Run("Displace renumbers the whole column", func(t *testing.T) {
			moved, err := svc.Reorder(ctx, tenantID, b.ID, appkanban.ReorderCardRequest{
				Target:   appkanban.TargetRequest{Kind: "absolute", Position: intPtr(a.Position)},
				Displace: true,
			})
			require.NoError(t, err)
			// b takes the occupant's slot, a shifts one gap back
			assert.Equal(t, kanban.MinPosition, moved.Position)

			cards, err := cardRepo.ListByColumn(ctx, tenantID, doing.ID)
			require.NoError(t, err)
			require.Len(t, cards, 2)
			assert.Equal(t, b.ID, cards[0].ID)
			assert.Equal(t, a.ID, cards[1].ID)
			assert.Equal(t, kanban.DefaultGap, cards[1].Position)
			// The displaced sibling's version moved with it
			assert.Equal(t, a.Version+1, cards[1].Version)
		})
	})

	t.Run("Move transfers across columns and bumps the version", func(t *testing.T) {
		card, err := svc.Create(ctx, tenantID, appkanban.CreateCardRequest{ColumnID: todo.ID, Title: "migrating"})
		require.NoError(t, err)

		moved, err := svc.Move(ctx, tenantID, card.ID, appkanban.MoveCardRequest{
			TargetColumnID: doing.ID,
			Target:         appkanban.TargetRequest{Kind: "end"},
		})
		require.NoError(t, err)
		assert.Equal(t, doing.ID, moved.ColumnID)
		assert.Equal(t, card.Version+1, moved.Version)

		cards, err := cardRepo.ListByColumn(ctx, tenantID, doing.ID)
		require.NoError(t, err)
		assert.Equal(t, moved.ID, cards[len(cards)-1].ID)
	})

	t.Run("Move respects the target column WIP limit", func(t *testing.T) {
		colSvc := newColumnService(testDB.DB)
		limit := 1
		limited, err := colSvc.Create(ctx, tenantID, appkanban.CreateColumnRequest{
			BoardID:  board.ID,
			Name:     "Review",
			WIPLimit: &limit,
		})
		require.NoError(t, err)

		_, err = svc.Create(ctx, tenantID, appkanban.CreateCardRequest{ColumnID: limited.ID, Title: "occupant"})
		require.NoError(t, err)

		extra, err := svc.Create(ctx, tenantID, appkanban.CreateCardRequest{ColumnID: todo.ID, Title: "extra"})
		require.NoError(t, err)

		_, err = svc.Move(ctx, tenantID, extra.ID, appkanban.MoveCardRequest{
			TargetColumnID: limited.ID,
			Target:         appkanban.TargetRequest{Kind: "end"},
		})
		assert.ErrorIs(t, err, shared.ErrWIPLimitReached)
	})

	t.Run("Stale expected version fails fast", func(t *testing.T) {
		card, err := svc.Create(ctx, tenantID, appkanban.CreateCardRequest{ColumnID: todo.ID, Title: "guarded"})
		require.NoError(t, err)

		_, err = svc.Update(ctx, tenantID, card.ID, appkanban.UpdateCardRequest{
			Title:           strPtr("renamed"),
			ExpectedVersion: intPtr(card.Version),
		})
		require.NoError(t, err)

		// Same expected version again: the first update already advanced it
		_, err = svc.Update(ctx, tenantID, card.ID, appkanban.UpdateCardRequest{
			Title:           strPtr("renamed again"),
			ExpectedVersion: intPtr(card.Version),
		})
		assert.ErrorIs(t, err, shared.ErrVersionConflict)
	})
}

// TestCardMoveAtomicity_Integration verifies a cross-column move touches
// exactly one row outside the destination: the moved card. The source
// column's remaining cards keep their positions and versions.
func TestCardMoveAtomicity_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	ctx := context.Background()
	tenantID := uuid.New()

	_, columns := seedBoard(t, testDB.DB, tenantID)
	todo, doing := columns[0], columns[1]

	svc := newCardService(testDB.DB)
	cardRepo := persistence.NewGormCardRepository(testDB.DB)

	moving, err := svc.Create(ctx, tenantID, appkanban.CreateCardRequest{ColumnID: todo.ID, Title: "moving"})
	require.NoError(t, err)
	stayA, err := svc.Create(ctx, tenantID, appkanban.CreateCardRequest{ColumnID: todo.ID, Title: "stays first"})
	require.NoError(t, err)
	stayB, err := svc.Create(ctx, tenantID, appkanban.CreateCardRequest{ColumnID: todo.ID, Title: "stays second"})
	require.NoError(t, err)

	moved, err := svc.Move(ctx, tenantID, moving.ID, appkanban.MoveCardRequest{
		TargetColumnID: doing.ID,
		Target:         appkanban.TargetRequest{Kind: "end"},
	})
	require.NoError(t, err)
	assert.Equal(t, doing.ID, moved.ColumnID)
	assert.Equal(t, moving.Version+1, moved.Version)

	remaining, err := cardRepo.ListByColumn(ctx, tenantID, todo.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, stayA.ID, remaining[0].ID)
	assert.Equal(t, stayA.Position, remaining[0].Position)
	assert.Equal(t, stayA.Version, remaining[0].Version)
	assert.Equal(t, stayB.ID, remaining[1].ID)
	assert.Equal(t, stayB.Position, remaining[1].Position)
	assert.Equal(t, stayB.Version, remaining[1].Version)
}

// TestConcurrentPlacement_Integration covers two writers landing in the
// same column at once. The deferred position constraint rejects the
// second tied commit, and the service-level rerun settles racing moves
// on distinct positions.
func TestConcurrentPlacement_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	ctx := context.Background()
	tenantID := uuid.New()

	board, columns := seedBoard(t, testDB.DB, tenantID)
	todo, doing, done := columns[0], columns[1], columns[2]

	t.Run("Second tied commit is rejected at the database", func(t *testing.T) {
		first, err := kanban.NewCard(tenantID, board.ID, done.ID, "lands first", 5*kanban.DefaultGap)
		require.NoError(t, err)
		second, err := kanban.NewCard(tenantID, board.ID, done.ID, "lands second", 5*kanban.DefaultGap)
		require.NoError(t, err)

		tx1 := testDB.DB.Begin()
		require.NoError(t, tx1.Error)
		tx2 := testDB.DB.Begin()
		require.NoError(t, tx2.Error)

		// Both transactions write the same slot; the deferred check lets
		// both INSERTs through and fails the second COMMIT.
		require.NoError(t, tx1.Create(first).Error)
		require.NoError(t, tx2.Create(second).Error)
		require.NoError(t, tx1.Commit().Error)

		err = tx2.Commit().Error
		require.Error(t, err)
		var pgErr *pgconn.PgError
		require.ErrorAs(t, err, &pgErr)
		assert.Equal(t, "23P01", pgErr.Code)
		assert.Equal(t, "excl_cards_column_position_live", pgErr.ConstraintName)
	})

	t.Run("Racing moves into one column settle on distinct positions", func(t *testing.T) {
		svc := newCardService(testDB.DB)
		cardRepo := persistence.NewGormCardRepository(testDB.DB)

		left, err := svc.Create(ctx, tenantID, appkanban.CreateCardRequest{ColumnID: todo.ID, Title: "left"})
		require.NoError(t, err)
		right, err := svc.Create(ctx, tenantID, appkanban.CreateCardRequest{ColumnID: todo.ID, Title: "right"})
		require.NoError(t, err)

		errs := make([]error, 2)
		var wg sync.WaitGroup
		for i, id := range []uuid.UUID{left.ID, right.ID} {
			wg.Add(1)
			go func(i int, id uuid.UUID) {
				defer wg.Done()
				_, errs[i] = svc.Move(ctx, tenantID, id, appkanban.MoveCardRequest{
					TargetColumnID: doing.ID,
					Target:         appkanban.TargetRequest{Kind: "end"},
				})
			}(i, id)
		}
		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])

		cards, err := cardRepo.ListByColumn(ctx, tenantID, doing.ID)
		require.NoError(t, err)
		require.Len(t, cards, 2)
		assert.NotEqual(t, cards[0].Position, cards[1].Position)
	})
}

// TestColumnOrdering_Integration covers board-scoped column reordering.
func TestColumnOrdering_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	ctx := context.Background()
	tenantID := uuid.New()

	board, columns := seedBoard(t, testDB.DB, tenantID)
	todo, doing, done := columns[0], columns[1], columns[2]

	svc := newColumnService(testDB.DB)
	columnRepo := persistence.NewGormColumnRepository(testDB.DB)

	t.Run("Reorder after a sibling", func(t *testing.T) {
		moved, err := svc.Reorder(ctx, tenantID, todo.ID, appkanban.ReorderColumnRequest{
			Target: appkanban.TargetRequest{Kind: "after", Ref: &doing.ID},
		})
		require.NoError(t, err)
		// Midpoint of Doing (2048) and Done (3072)
		assert.Equal(t, 2*kanban.DefaultGap+kanban.DefaultGap/2, moved.Position)

		listed, err := columnRepo.ListByBoard(ctx, tenantID, board.ID)
		require.NoError(t, err)
		require.Len(t, listed, 3)
		assert.Equal(t, []uuid.UUID{doing.ID, todo.ID, done.ID},
			[]uuid.UUID{listed[0].ID, listed[1].ID, listed[2].ID})
	})

	t.Run("Delete refuses a column with active cards", func(t *testing.T) {
		seedCard(t, testDB.DB, tenantID, board, done, "blocker", kanban.DefaultGap)

		err := svc.Delete(ctx, tenantID, done.ID, nil)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

// movedSiblingsTouched reports whether any of the given siblings gained a
// version past the initial one, which a plain midpoint insert must not do.
func movedSiblingsTouched(t *testing.T, repo kanban.CardRepository, ctx context.Context, tenantID, columnID uuid.UUID, ids ...uuid.UUID) bool {
	t.Helper()
	cards, err := repo.ListByColumn(ctx, tenantID, columnID)
	require.NoError(t, err)
	byID := make(map[uuid.UUID]kanban.Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}
	for _, id := range ids {
		if c, ok := byID[id]; ok && c.Version > 1 {
			return true
		}
	}
	return false
}

func intPtr(i int) *int { return &i }
