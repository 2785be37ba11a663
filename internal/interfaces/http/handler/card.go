package handler

import (
	kanbanapp "github.com/kanban/backend/internal/application/kanban"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CardHandler handles card-related API endpoints
type CardHandler struct {
	BaseHandler
	cardService *kanbanapp.CardService
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(cardService *kanbanapp.CardService) *CardHandler {
	return &CardHandler{
		cardService: cardService,
	}
}

// Create godoc
// @Summary      Create a new card
// @Description  Create a card in a column, optionally at a specific placement target
// @Tags         cards
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        request body kanbanapp.CreateCardRequest true "Card creation request"
// @Success      201 {object} dto.Response{data=kanbanapp.CardResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cards [post]
func (h *CardHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req kanbanapp.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	card, err := h.cardService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, card)
}

// GetByID godoc
// @Summary      Get card by ID
// @Tags         cards
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Card ID" format(uuid)
// @Success      200 {object} dto.Response{data=kanbanapp.CardResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cards/{id} [get]
func (h *CardHandler) GetByID(c *gin.Context) {
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

	card, err := h.cardService.GetByID(c.Request.Context(), tenantID, cardID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, card)
}

// ListByColumn godoc
// @Summary      List cards of a column
// @Description  Retrieve all cards of a column sorted by position
// @Tags         cards
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Column ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]kanbanapp.CardResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /columns/{id}/cards [get]
func (h *CardHandler) ListByColumn(c *gin.Context) {
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

	cards, err := h.cardService.ListByColumn(c.Request.Context(), tenantID, columnID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, cards)
}

// ListByBoard godoc
// @Summary      List cards of a board
// @Description  Retrieve a filtered, paginated list of cards across a board
// @Tags         cards
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Board ID" format(uuid)
// @Param        column_id query string false "Column filter" format(uuid)
// @Param        priority query int false "Priority filter (0-4)"
// @Param        label query string false "Label filter"
// @Param        assignee query string false "Assignee filter"
// @Param        due_before query string false "Due date upper bound" format(date-time)
// @Param        search query string false "Search keyword"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(50)
// @Success      200 {object} dto.Response{data=[]kanbanapp.CardResponse,meta=dto.Meta}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /boards/{id}/cards [get]
func (h *CardHandler) ListByBoard(c *gin.Context) {
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

	var filter kanbanapp.CardListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 50
	}

	page, err := h.cardService.ListByBoard(c.Request.Context(), tenantID, boardID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update godoc
// @Summary      Update a card
// @Description  Update card content fields, guarded by the expected version when provided
// @Tags         cards
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Card ID" format(uuid)
// @Param        request body kanbanapp.UpdateCardRequest true "Card update request"
// @Success      200 {object} dto.Response{data=kanbanapp.CardResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cards/{id} [put]
func (h *CardHandler) Update(c *gin.Context) {
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

	var req kanbanapp.UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	card, err := h.cardService.Update(c.Request.Context(), tenantID, cardID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, card)
}

// Reorder godoc
// @Summary      Reposition a card within its column
// @Description  Move a card to a new position expressed as a placement target
// @Tags         cards
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Card ID" format(uuid)
// @Param        request body kanbanapp.ReorderCardRequest true "Card reorder request"
// @Success      200 {object} dto.Response{data=kanbanapp.CardResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cards/{id}/reorder [post]
func (h *CardHandler) Reorder(c *gin.Context) {
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

	var req kanbanapp.ReorderCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	card, err := h.cardService.Reorder(c.Request.Context(), tenantID, cardID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, card)
}

// Move godoc
// @Summary      Move a card to another column
// @Description  Move a card across columns, respecting the target column's WIP limit
// @Tags         cards
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Card ID" format(uuid)
// @Param        request body kanbanapp.MoveCardRequest true "Card move request"
// @Success      200 {object} dto.Response{data=kanbanapp.CardResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cards/{id}/move [post]
func (h *CardHandler) Move(c *gin.Context) {
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

	var req kanbanapp.MoveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	card, err := h.cardService.Move(c.Request.Context(), tenantID, cardID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, card)
}

// Delete godoc
// @Summary      Delete a card
// @Tags         cards
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Card ID" format(uuid)
// @Param        expected_version query int false "Expected version for optimistic concurrency"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cards/{id} [delete]
func (h *CardHandler) Delete(c *gin.Context) {
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

	expectedVersion, ok := parseExpectedVersion(c)
	if !ok {
		h.BadRequest(c, "Invalid expected_version")
		return
	}

	if err := h.cardService.Delete(c.Request.Context(), tenantID, cardID, expectedVersion); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
