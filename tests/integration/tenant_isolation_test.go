package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appkanban "github.com/kanban/backend/internal/application/kanban"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
	"github.com/kanban/backend/internal/infrastructure/persistence"
)

// TestTenantIsolation_Integration verifies that every repository read and
// write is fenced by tenant_id. One tenant's aggregates must be invisible
// and immutable to any other tenant, even with a valid row ID in hand.
func TestTenantIsolation_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	ctx := context.Background()

	tenantA := uuid.New()
	tenantB := uuid.New()

	boardA, columnsA := seedBoard(t, testDB.DB, tenantA)
	cardA := seedCard(t, testDB.DB, tenantA, boardA, columnsA[0], "Tenant A card", kanban.DefaultGap)

	wsRepo := persistence.NewGormWorkspaceRepository(testDB.DB)
	boardRepo := persistence.NewGormBoardRepository(testDB.DB)
	columnRepo := persistence.NewGormColumnRepository(testDB.DB)
	cardRepo := persistence.NewGormCardRepository(testDB.DB)

	t.Run("Listings are tenant-scoped", func(t *testing.T) {
		workspaces, err := wsRepo.FindAllForTenant(ctx, tenantB, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Empty(t, workspaces)

		boards, err := boardRepo.FindAllForTenant(ctx, tenantB, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Empty(t, boards)

		columns, err := columnRepo.ListByBoard(ctx, tenantB, boardA.ID)
		require.NoError(t, err)
		assert.Empty(t, columns)

		cards, err := cardRepo.ListByColumn(ctx, tenantB, columnsA[0].ID)
		require.NoError(t, err)
		assert.Empty(t, cards)
	})

	t.Run("Point reads with a stolen ID fail", func(t *testing.T) {
		_, err := boardRepo.FindByIDForTenant(ctx, tenantB, boardA.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = columnRepo.FindByIDForTenant(ctx, tenantB, columnsA[0].ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = cardRepo.FindByIDForTenant(ctx, tenantB, cardA.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Cross-tenant writes through services fail as not found", func(t *testing.T) {
		svc := newCardService(testDB.DB)

		_, err := svc.Update(ctx, tenantB, cardA.ID, appkanban.UpdateCardRequest{Title: strPtr("hijacked")})
		assert.ErrorIs(t, err, shared.ErrNotFound)

		err = svc.Delete(ctx, tenantB, cardA.ID, nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		// The card is untouched
		current, err := cardRepo.FindByIDForTenant(ctx, tenantA, cardA.ID)
		require.NoError(t, err)
		assert.Equal(t, "Tenant A card", current.Title)
		assert.Equal(t, 1, current.Version)
	})

	t.Run("Rebalance batches cannot reach another tenant's rows", func(t *testing.T) {
		err := cardRepo.UpdatePositions(ctx, tenantB, columnsA[0].ID, []kanban.PositionAssignment{
			{ID: cardA.ID, Position: 0},
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)

		current, err := cardRepo.FindByIDForTenant(ctx, tenantA, cardA.ID)
		require.NoError(t, err)
		assert.Equal(t, kanban.DefaultGap, current.Position)
	})

	t.Run("Audit trail is tenant-scoped", func(t *testing.T) {
		auditRepo := persistence.NewGormAuditRepository(testDB.DB)

		record := &kanban.AuditRecord{
			ID:            uuid.New(),
			TenantID:      tenantA,
			AggregateType: "card",
			AggregateID:   cardA.ID,
			EventType:     "kanban.card.created",
			Operation:     string(kanban.OpCreate),
			OccurredAt:    time.Now(),
		}
		require.NoError(t, auditRepo.Append(ctx, record))

		own, total, err := auditRepo.ListForTenant(ctx, tenantA, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, own, 1)

		foreign, total, err := auditRepo.ListForTenant(ctx, tenantB, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		assert.Empty(t, foreign)
	})
}
