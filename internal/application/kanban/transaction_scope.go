package kanban

import (
	"context"
	"errors"

	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
)

// TransactionScope provides transactional access to kanban repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the kanban repositories within a transaction.
// All repositories returned share the same underlying database transaction.
//
// Move and reorder operations require this: a placement may rewrite the positions of
// every sibling in a column (rebalance) in addition to the moved item itself, and the
// whole batch must land atomically or not at all.
type TransactionalRepositories interface {
	// BoardRepo returns the board repository scoped to the current transaction
	BoardRepo() kanban.BoardRepository
	// ColumnRepo returns the column repository scoped to the current transaction
	ColumnRepo() kanban.ColumnRepository
	// CardRepo returns the card repository scoped to the current transaction
	CardRepo() kanban.CardRepository
}

// placementRetryAttempts bounds the reruns of a placement transaction
// whose commit collided with a concurrent writer.
const placementRetryAttempts = 3

// retryPlacement reruns a placement transaction after a deferred
// position constraint fired at commit. Each rerun reads a fresh sibling
// snapshot, so the losing writer recomputes a position the winner has
// not taken. When the attempts run out the caller gets the standard
// conflict signal: re-read and retry.
func retryPlacement(run func() error) error {
	for attempt := 0; attempt < placementRetryAttempts; attempt++ {
		if err := run(); !errors.Is(err, shared.ErrConcurrentPlacement) {
			return err
		}
	}
	return shared.ErrVersionConflict
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	boardRepo  kanban.BoardRepository
	columnRepo kanban.ColumnRepository
	cardRepo   kanban.CardRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	boardRepo kanban.BoardRepository,
	columnRepo kanban.ColumnRepository,
	cardRepo kanban.CardRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		boardRepo:  boardRepo,
		columnRepo: columnRepo,
		cardRepo:   cardRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// BoardRepo returns the board repository.
func (s *NoOpTransactionScope) BoardRepo() kanban.BoardRepository {
	return s.boardRepo
}

// ColumnRepo returns the column repository.
func (s *NoOpTransactionScope) ColumnRepo() kanban.ColumnRepository {
	return s.columnRepo
}

// CardRepo returns the card repository.
func (s *NoOpTransactionScope) CardRepo() kanban.CardRepository {
	return s.cardRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
