package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	appkanban "github.com/kanban/backend/internal/application/kanban"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// A move or reorder may rewrite every sibling of a column plus the moved
// item; the scope guarantees the batch lands atomically or not at all.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// Sibling-position constraints are deferred to commit, so a collision
// with a concurrent writer surfaces here rather than inside fn.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appkanban.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
	return translatePositionViolation(err)
}

// translatePositionViolation maps a deferred position-constraint
// violation onto the domain signal coordinators retry on. Everything
// else passes through unchanged.
func translatePositionViolation(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		(pgErr.Code == "23P01" || pgErr.Code == "23505") &&
		strings.Contains(pgErr.ConstraintName, "position") {
		return shared.ErrConcurrentPlacement
	}
	return err
}

// gormTransactionalRepositories provides repositories bound to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// BoardRepo returns the board repository scoped to the current transaction
func (r *gormTransactionalRepositories) BoardRepo() kanban.BoardRepository {
	return NewGormBoardRepository(r.tx)
}

// ColumnRepo returns the column repository scoped to the current transaction
func (r *gormTransactionalRepositories) ColumnRepo() kanban.ColumnRepository {
	return NewGormColumnRepository(r.tx)
}

// CardRepo returns the card repository scoped to the current transaction
func (r *gormTransactionalRepositories) CardRepo() kanban.CardRepository {
	return NewGormCardRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appkanban.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appkanban.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
