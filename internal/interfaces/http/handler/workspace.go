package handler

import (
	kanbanapp "github.com/kanban/backend/internal/application/kanban"
	"github.com/kanban/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WorkspaceHandler handles workspace-related API endpoints
type WorkspaceHandler struct {
	BaseHandler
	workspaceService *kanbanapp.WorkspaceService
}

// NewWorkspaceHandler creates a new WorkspaceHandler
func NewWorkspaceHandler(workspaceService *kanbanapp.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
	}
}

// Create godoc
// @Summary      Create a new workspace
// @Description  Create a workspace owned by the requesting tenant
// @Tags         workspaces
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        request body kanbanapp.CreateWorkspaceRequest true "Workspace creation request"
// @Success      201 {object} dto.Response{data=kanbanapp.WorkspaceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /workspaces [post]
func (h *WorkspaceHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req kanbanapp.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	workspace, err := h.workspaceService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, workspace)
}

// GetByID godoc
// @Summary      Get workspace by ID
// @Tags         workspaces
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Workspace ID" format(uuid)
// @Success      200 {object} dto.Response{data=kanbanapp.WorkspaceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /workspaces/{id} [get]
func (h *WorkspaceHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	workspaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid workspace ID format")
		return
	}

	workspace, err := h.workspaceService.GetByID(c.Request.Context(), tenantID, workspaceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, workspace)
}

// List godoc
// @Summary      List workspaces
// @Tags         workspaces
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        search query string false "Search keyword"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20)
// @Success      200 {object} dto.Response{data=[]kanbanapp.WorkspaceResponse,meta=dto.Meta}
// @Router       /workspaces [get]
func (h *WorkspaceHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := listReq.ToFilter()

	page, err := h.workspaceService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update godoc
// @Summary      Update a workspace
// @Description  Update workspace fields, guarded by the expected version when provided
// @Tags         workspaces
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Workspace ID" format(uuid)
// @Param        request body kanbanapp.UpdateWorkspaceRequest true "Workspace update request"
// @Success      200 {object} dto.Response{data=kanbanapp.WorkspaceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /workspaces/{id} [put]
func (h *WorkspaceHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	workspaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid workspace ID format")
		return
	}

	var req kanbanapp.UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	workspace, err := h.workspaceService.Update(c.Request.Context(), tenantID, workspaceID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, workspace)
}

// Delete godoc
// @Summary      Delete a workspace
// @Description  Delete a workspace and everything in it
// @Tags         workspaces
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Workspace ID" format(uuid)
// @Param        expected_version query int false "Expected version for optimistic concurrency"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /workspaces/{id} [delete]
func (h *WorkspaceHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	workspaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid workspace ID format")
		return
	}

	expectedVersion, ok := parseExpectedVersion(c)
	if !ok {
		h.BadRequest(c, "Invalid expected_version")
		return
	}

	if err := h.workspaceService.Delete(c.Request.Context(), tenantID, workspaceID, expectedVersion); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
