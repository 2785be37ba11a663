package handler

import (
	kanbanapp "github.com/kanban/backend/internal/application/kanban"
	"github.com/kanban/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CommentHandler handles card comment API endpoints
type CommentHandler struct {
	BaseHandler
	commentService *kanbanapp.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService *kanbanapp.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// Create godoc
// @Summary      Add a comment to a card
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Card ID" format(uuid)
// @Param        request body kanbanapp.CreateCommentRequest true "Comment creation request"
// @Success      201 {object} dto.Response{data=kanbanapp.CommentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cards/{id}/comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	cardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid card ID format")
		return
	}

	var req kanbanapp.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), tenantID, cardID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, comment)
}

// ListByCard godoc
// @Summary      List comments of a card
// @Description  Retrieve a paginated list of comments, newest first
// @Tags         comments
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Card ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(50)
// @Success      200 {object} dto.Response{data=[]kanbanapp.CommentResponse,meta=dto.Meta}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cards/{id}/comments [get]
func (h *CommentHandler) ListByCard(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	cardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid card ID format")
		return
	}

	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := listReq.ToFilter()

	page, err := h.commentService.ListByCard(c.Request.Context(), tenantID, cardID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update godoc
// @Summary      Edit a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Comment ID" format(uuid)
// @Param        request body kanbanapp.UpdateCommentRequest true "Comment update request"
// @Success      200 {object} dto.Response{data=kanbanapp.CommentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /comments/{id} [put]
func (h *CommentHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid comment ID format")
		return
	}

	var req kanbanapp.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.Update(c.Request.Context(), tenantID, commentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, comment)
}

// Delete godoc
// @Summary      Delete a comment
// @Tags         comments
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Comment ID" format(uuid)
// @Param        expected_version query int false "Expected version for optimistic concurrency"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid comment ID format")
		return
	}

	expectedVersion, ok := parseExpectedVersion(c)
	if !ok {
		h.BadRequest(c, "Invalid expected_version")
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), tenantID, commentID, expectedVersion); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
