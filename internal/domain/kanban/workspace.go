package kanban

import (
	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/shared"
)

// Workspace is the top-level grouping for boards within a tenant
type Workspace struct {
	shared.TenantAggregateRoot
	Name        string `gorm:"type:varchar(128);not null"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Workspace) TableName() string {
	return "workspaces"
}

// NewWorkspace creates a new workspace
func NewWorkspace(tenantID uuid.UUID, name, description string) (*Workspace, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Workspace name cannot be empty")
	}
	if len(name) > 128 {
		return nil, shared.NewDomainError("INVALID_NAME", "Workspace name cannot exceed 128 characters")
	}
	ws := &Workspace{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Description:         description,
	}
	ws.AddDomainEvent(&WorkspaceEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventWorkspaceCreated, "Workspace", ws.ID, tenantID),
	})
	return ws, nil
}

// Update changes the workspace's name and description
func (w *Workspace) Update(name, description string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Workspace name cannot be empty")
	}
	w.Name = name
	w.Description = description
	w.Touch()
	w.IncrementVersion()
	w.AddDomainEvent(&WorkspaceEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventWorkspaceUpdated, "Workspace", w.ID, w.TenantID),
	})
	return nil
}

// Delete soft-deletes the workspace
func (w *Workspace) Delete() error {
	if w.IsDeleted() {
		return shared.ErrNotFound
	}
	w.SoftDelete()
	w.AddDomainEvent(&WorkspaceEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventWorkspaceDeleted, "Workspace", w.ID, w.TenantID),
	})
	return nil
}

// WorkspaceEvent is the generic event shape for workspace lifecycle changes
type WorkspaceEvent struct {
	shared.BaseDomainEvent
}
