package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
	"github.com/kanban/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := testutil.NewMockEventHandler(kanban.EventCardReordered)
	bus.Subscribe(handler)

	event := testutil.NewStubEvent(kanban.EventCardReordered, uuid.New())
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler.Handled(), 1)
	assert.Equal(t, event, handler.Handled()[0])
}

func TestInMemoryEventBus_Publish_MultipleEvents(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := testutil.NewMockEventHandler(kanban.EventCardReordered)
	bus.Subscribe(handler)

	event1 := testutil.NewStubEvent(kanban.EventCardReordered, uuid.New())
	event2 := testutil.NewStubEvent(kanban.EventCardReordered, uuid.New())
	err := bus.Publish(context.Background(), event1, event2)

	require.NoError(t, err)
	assert.Len(t, handler.Handled(), 2)
}

func TestInMemoryEventBus_Publish_TypeFiltering(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	cardHandler := testutil.NewMockEventHandler(kanban.EventCardReordered)
	columnHandler := testutil.NewMockEventHandler(kanban.EventColumnReordered)
	bus.Subscribe(cardHandler)
	bus.Subscribe(columnHandler)

	err := bus.Publish(context.Background(), testutil.NewStubEvent(kanban.EventCardReordered, uuid.New()))

	require.NoError(t, err)
	assert.Len(t, cardHandler.Handled(), 1)
	assert.Empty(t, columnHandler.Handled())
}

func TestInMemoryEventBus_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	// A handler with nil event types receives everything, the way the
	// audit trail subscribes
	wildcard := testutil.NewMockEventHandler()
	bus.Subscribe(wildcard)

	err := bus.Publish(context.Background(),
		testutil.NewStubEvent(kanban.EventCardReordered, uuid.New()),
		testutil.NewStubEvent(kanban.EventBoardCreated, uuid.New()),
		testutil.NewStubEvent(kanban.EventWorkspaceDeleted, uuid.New()),
	)

	require.NoError(t, err)
	assert.Len(t, wildcard.Handled(), 3)
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopDispatch(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := testutil.NewMockEventHandler(kanban.EventCardReordered)
	failing.SetError(errors.New("handler broke"))
	healthy := testutil.NewMockEventHandler(kanban.EventCardReordered)
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), testutil.NewStubEvent(kanban.EventCardReordered, uuid.New()))

	// Publication is best-effort: the bus never propagates handler errors
	require.NoError(t, err)
	assert.Len(t, failing.Handled(), 1)
	assert.Len(t, healthy.Handled(), 1)
}

func TestInMemoryEventBus_PanickingHandlerIsContained(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	bus.Subscribe(&panicHandler{})
	healthy := testutil.NewMockEventHandler(kanban.EventCardReordered)
	bus.Subscribe(healthy)

	assert.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), testutil.NewStubEvent(kanban.EventCardReordered, uuid.New()))
	})
	assert.Len(t, healthy.Handled(), 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := testutil.NewMockEventHandler(kanban.EventCardReordered)
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	err := bus.Publish(context.Background(), testutil.NewStubEvent(kanban.EventCardReordered, uuid.New()))

	require.NoError(t, err)
	assert.Empty(t, handler.Handled())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Stop(context.Background()))
}

type panicHandler struct{}

func (h *panicHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	panic("boom")
}

func (h *panicHandler) EventTypes() []string {
	return []string{kanban.EventCardReordered}
}
