package kanban

import (
	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/shared"
)

// MaxBoardNameLength limits board names
const MaxBoardNameLength = 128

// Board groups an ordered set of columns within a workspace
type Board struct {
	shared.TenantAggregateRoot
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(128);not null"`
	Description string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Board) TableName() string {
	return "boards"
}

// NewBoard creates a new board
func NewBoard(tenantID, workspaceID uuid.UUID, name, description string) (*Board, error) {
	if err := validateBoardName(name); err != nil {
		return nil, err
	}
	board := &Board{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		WorkspaceID:         workspaceID,
		Name:                name,
		Description:         description,
	}
	board.AddDomainEvent(NewBoardCreatedEvent(board))
	return board, nil
}

// Update changes the board's name and description
func (b *Board) Update(name, description string) error {
	if err := validateBoardName(name); err != nil {
		return err
	}
	b.Name = name
	b.Description = description
	b.Touch()
	b.IncrementVersion()
	b.AddDomainEvent(NewBoardUpdatedEvent(b))
	return nil
}

// Delete soft-deletes the board
func (b *Board) Delete() error {
	if b.IsDeleted() {
		return shared.ErrNotFound
	}
	b.SoftDelete()
	b.AddDomainEvent(NewBoardDeletedEvent(b))
	return nil
}

func validateBoardName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Board name cannot be empty")
	}
	if len(name) > MaxBoardNameLength {
		return shared.NewDomainError("INVALID_NAME", "Board name cannot exceed 128 characters")
	}
	return nil
}
