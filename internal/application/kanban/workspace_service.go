package kanban

import (
	"context"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
)

// WorkspaceService handles workspace lifecycle operations
type WorkspaceService struct {
	workspaceRepo  kanban.WorkspaceRepository
	eventPublisher shared.EventPublisher
}

// NewWorkspaceService creates a new WorkspaceService
func NewWorkspaceService(workspaceRepo kanban.WorkspaceRepository) *WorkspaceService {
	return &WorkspaceService{workspaceRepo: workspaceRepo}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *WorkspaceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *WorkspaceService) publishDomainEvents(ctx context.Context, ws *kanban.Workspace) {
	if s.eventPublisher == nil {
		return
	}
	events := ws.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	ws.ClearDomainEvents()
}

// Create creates a workspace for the tenant
func (s *WorkspaceService) Create(ctx context.Context, tenantID uuid.UUID, req CreateWorkspaceRequest) (*WorkspaceResponse, error) {
	ws, err := kanban.NewWorkspace(tenantID, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.workspaceRepo.Create(ctx, ws); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, ws)
	return ToWorkspaceResponse(ws), nil
}

// GetByID retrieves a workspace by ID
func (s *WorkspaceService) GetByID(ctx context.Context, tenantID, workspaceID uuid.UUID) (*WorkspaceResponse, error) {
	ws, err := s.workspaceRepo.FindByIDForTenant(ctx, tenantID, workspaceID)
	if err != nil {
		return nil, err
	}
	return ToWorkspaceResponse(ws), nil
}

// List returns the tenant's workspaces, paginated
func (s *WorkspaceService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*PaginatedResponse[*WorkspaceResponse], error) {
	workspaces, err := s.workspaceRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.workspaceRepo.CountForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	items := make([]*WorkspaceResponse, len(workspaces))
	for i := range workspaces {
		items[i] = ToWorkspaceResponse(&workspaces[i])
	}
	return NewPaginatedResponse(items, total, filter.Page, filter.PageSize), nil
}

// Update changes a workspace's name and description
func (s *WorkspaceService) Update(ctx context.Context, tenantID, workspaceID uuid.UUID, req UpdateWorkspaceRequest) (*WorkspaceResponse, error) {
	ws, err := s.workspaceRepo.FindByIDForTenant(ctx, tenantID, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(ws.Version, req.ExpectedVersion); err != nil {
		return nil, err
	}
	if err := ws.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	if err := s.workspaceRepo.SaveWithLock(ctx, ws); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, ws)
	return ToWorkspaceResponse(ws), nil
}

// Delete soft-deletes a workspace
func (s *WorkspaceService) Delete(ctx context.Context, tenantID, workspaceID uuid.UUID, expectedVersion *int) error {
	ws, err := s.workspaceRepo.FindByIDForTenant(ctx, tenantID, workspaceID)
	if err != nil {
		return err
	}
	if err := checkVersion(ws.Version, expectedVersion); err != nil {
		return err
	}
	if err := ws.Delete(); err != nil {
		return err
	}
	if err := s.workspaceRepo.SaveWithLock(ctx, ws); err != nil {
		return err
	}

	s.publishDomainEvents(ctx, ws)
	return nil
}
