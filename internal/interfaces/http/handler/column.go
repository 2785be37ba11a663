package handler

import (
	kanbanapp "github.com/kanban/backend/internal/application/kanban"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ColumnHandler handles column-related API endpoints
type ColumnHandler struct {
	BaseHandler
	columnService *kanbanapp.ColumnService
}

// NewColumnHandler creates a new ColumnHandler
func NewColumnHandler(columnService *kanbanapp.ColumnService) *ColumnHandler {
	return &ColumnHandler{
		columnService: columnService,
	}
}

// Create godoc
// @Summary      Create a new column
// @Description  Append a column to the end of a board
// @Tags         columns
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        request body kanbanapp.CreateColumnRequest true "Column creation request"
// @Success      201 {object} dto.Response{data=kanbanapp.ColumnResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /columns [post]
func (h *ColumnHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req kanbanapp.CreateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	column, err := h.columnService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, column)
}

// GetByID godoc
// @Summary      Get column by ID
// @Tags         columns
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Column ID" format(uuid)
// @Success      200 {object} dto.Response{data=kanbanapp.ColumnResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /columns/{id} [get]
func (h *ColumnHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	columnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid column ID format")
		return
	}

	column, err := h.columnService.GetByID(c.Request.Context(), tenantID, columnID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, column)
}

// ListByBoard godoc
// @Summary      List columns of a board
// @Description  Retrieve all columns of a board sorted by position
// @Tags         columns
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Board ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]kanbanapp.ColumnResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /boards/{id}/columns [get]
func (h *ColumnHandler) ListByBoard(c *gin.Context) {
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

	columns, err := h.columnService.ListByBoard(c.Request.Context(), tenantID, boardID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, columns)
}

// Update godoc
// @Summary      Update a column
// @Description  Update name and WIP limit, guarded by the expected version when provided
// @Tags         columns
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Column ID" format(uuid)
// @Param        request body kanbanapp.UpdateColumnRequest true "Column update request"
// @Success      200 {object} dto.Response{data=kanbanapp.ColumnResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /columns/{id} [put]
func (h *ColumnHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	columnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid column ID format")
		return
	}

	var req kanbanapp.UpdateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	column, err := h.columnService.Update(c.Request.Context(), tenantID, columnID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, column)
}

// Reorder godoc
// @Summary      Reposition a column within its board
// @Description  Move a column to a new position expressed as a placement target
// @Tags         columns
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Column ID" format(uuid)
// @Param        request body kanbanapp.ReorderColumnRequest true "Column reorder request"
// @Success      200 {object} dto.Response{data=kanbanapp.ColumnResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /columns/{id}/reorder [post]
func (h *ColumnHandler) Reorder(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	columnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid column ID format")
		return
	}

	var req kanbanapp.ReorderColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	column, err := h.columnService.Reorder(c.Request.Context(), tenantID, columnID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, column)
}

// Delete godoc
// @Summary      Delete a column
// @Description  Delete an empty column; columns holding cards cannot be deleted
// @Tags         columns
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Column ID" format(uuid)
// @Param        expected_version query int false "Expected version for optimistic concurrency"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /columns/{id} [delete]
func (h *ColumnHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	columnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid column ID format")
		return
	}

	expectedVersion, ok := parseExpectedVersion(c)
	if !ok {
		h.BadRequest(c, "Invalid expected_version")
		return
	}

	if err := h.columnService.Delete(c.Request.Context(), tenantID, columnID, expectedVersion); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
