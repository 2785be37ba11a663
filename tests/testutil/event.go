// Package testutil provides shared test doubles for the Kanban backend:
// an event handler that records what it saw, a stub domain event, and
// polling helpers for asynchronous assertions.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kanban/backend/internal/domain/shared"
)

// MockEventHandler records every event it handles. Safe for concurrent
// use; the bus dispatches from multiple goroutines.
type MockEventHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
}

// NewMockEventHandler subscribes to the given event types. No types
// means a wildcard subscription, the way the audit trail listens.
func NewMockEventHandler(eventTypes ...string) *MockEventHandler {
	return &MockEventHandler{eventTypes: eventTypes}
}

func (h *MockEventHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *MockEventHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

// Handled returns a copy of every event handled so far.
func (h *MockEventHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func (h *MockEventHandler) HandledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// SetError makes every subsequent Handle call fail with err.
func (h *MockEventHandler) SetError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// Reset drops the recorded events and clears any injected error.
func (h *MockEventHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = nil
	h.err = nil
}

// StubEvent is a minimal domain event for exercising buses and handlers
// without dragging a real aggregate into the test.
type StubEvent struct {
	shared.BaseDomainEvent
	Payload string `json:"payload"`
}

// NewStubEvent builds a stub event of the given type against a fresh
// card aggregate ID.
func NewStubEvent(eventType string, tenantID uuid.UUID) *StubEvent {
	return &StubEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "card", uuid.New(), tenantID),
		Payload:         "stub",
	}
}

// WaitForCondition polls until the condition holds or the timeout runs
// out, reporting whether it was ever met.
func WaitForCondition(t *testing.T, condition func() bool, timeout, interval time.Duration) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}
	return false
}

// WaitForEventCount polls until the handler has seen at least count
// events.
func WaitForEventCount(t *testing.T, handler *MockEventHandler, count int, timeout time.Duration) bool {
	t.Helper()
	return WaitForCondition(t, func() bool {
		return handler.HandledCount() >= count
	}, timeout, 10*time.Millisecond)
}
