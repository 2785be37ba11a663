package handler

import (
	kanbanapp "github.com/kanban/backend/internal/application/kanban"
	"github.com/kanban/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BoardHandler handles board-related API endpoints
type BoardHandler struct {
	BaseHandler
	boardService *kanbanapp.BoardService
}

// NewBoardHandler creates a new BoardHandler
func NewBoardHandler(boardService *kanbanapp.BoardService) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
	}
}

// Create godoc
// @Summary      Create a new board
// @Description  Create a board inside a workspace
// @Tags         boards
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        request body kanbanapp.CreateBoardRequest true "Board creation request"
// @Success      201 {object} dto.Response{data=kanbanapp.BoardResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /boards [post]
func (h *BoardHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req kanbanapp.CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	board, err := h.boardService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, board)
}

// GetByID godoc
// @Summary      Get board by ID
// @Tags         boards
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Board ID" format(uuid)
// @Success      200 {object} dto.Response{data=kanbanapp.BoardResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /boards/{id} [get]
func (h *BoardHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	boardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid board ID format")
		return
	}

	board, err := h.boardService.GetByID(c.Request.Context(), tenantID, boardID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, board)
}

// GetDetail godoc
// @Summary      Get board with ordered columns
// @Description  Retrieve a board together with its columns sorted by position
// @Tags         boards
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Board ID" format(uuid)
// @Success      200 {object} dto.Response{data=kanbanapp.BoardDetailResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /boards/{id}/detail [get]
func (h *BoardHandler) GetDetail(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	boardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid board ID format")
		return
	}

	detail, err := h.boardService.GetDetail(c.Request.Context(), tenantID, boardID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, detail)
}

// List godoc
// @Summary      List boards
// @Description  Retrieve a paginated list of boards, optionally scoped to a workspace
// @Tags         boards
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        workspace_id query string false "Workspace ID filter" format(uuid)
// @Param        search query string false "Search keyword"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20)
// @Success      200 {object} dto.Response{data=[]kanbanapp.BoardResponse,meta=dto.Meta}
// @Router       /boards [get]
func (h *BoardHandler) List(c *gin.Context) {
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

	if raw := c.Query("workspace_id"); raw != "" {
		workspaceID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid workspace ID format")
			return
		}
		if filter.Filters == nil {
			filter.Filters = make(map[string]interface{})
		}
		filter.Filters["workspace_id"] = workspaceID
	}

	page, err := h.boardService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update godoc
// @Summary      Update a board
// @Tags         boards
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Board ID" format(uuid)
// @Param        request body kanbanapp.UpdateBoardRequest true "Board update request"
// @Success      200 {object} dto.Response{data=kanbanapp.BoardResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /boards/{id} [put]
func (h *BoardHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	boardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid board ID format")
		return
	}

	var req kanbanapp.UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	board, err := h.boardService.Update(c.Request.Context(), tenantID, boardID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, board)
}

// Delete godoc
// @Summary      Delete a board
// @Description  Delete a board and its columns and cards
// @Tags         boards
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Board ID" format(uuid)
// @Param        expected_version query int false "Expected version for optimistic concurrency"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /boards/{id} [delete]
func (h *BoardHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	boardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid board ID format")
		return
	}

	expectedVersion, ok := parseExpectedVersion(c)
	if !ok {
		h.BadRequest(c, "Invalid expected_version")
		return
	}

	if err := h.boardService.Delete(c.Request.Context(), tenantID, boardID, expectedVersion); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
