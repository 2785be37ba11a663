package handler

import (
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditHandler exposes the audit trail
type AuditHandler struct {
	BaseHandler
	auditRepo kanban.AuditRepository
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditRepo kanban.AuditRepository) *AuditHandler {
	return &AuditHandler{
		auditRepo: auditRepo,
	}
}

// AuditRecordResponse represents an audit record in API responses
type AuditRecordResponse struct {
	ID            uuid.UUID `json:"id"`
	AggregateType string    `json:"aggregate_type"`
	AggregateID   uuid.UUID `json:"aggregate_id"`
	EventType     string    `json:"event_type"`
	Operation     string    `json:"operation"`
	OldPosition   *int      `json:"old_position,omitempty"`
	NewPosition   *int      `json:"new_position,omitempty"`
	OldVersion    *int      `json:"old_version,omitempty"`
	NewVersion    *int      `json:"new_version,omitempty"`
	Rebalanced    bool      `json:"rebalanced"`
	OccurredAt    string    `json:"occurred_at"`
}

// List godoc
// @Summary      List audit records
// @Description  Retrieve the tenant's audit trail, newest first
// @Tags         audit
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        aggregate_id query string false "Aggregate ID filter" format(uuid)
// @Param        aggregate_type query string false "Aggregate type filter (board, column, card)"
// @Param        operation query string false "Operation filter (create, update, reorder, move, delete)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(50)
// @Success      200 {object} dto.Response{data=[]AuditRecordResponse,meta=dto.Meta}
// @Router       /audit [get]
func (h *AuditHandler) List(c *gin.Context) {
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
	filter.Filters = make(map[string]interface{})

	if raw := c.Query("aggregate_id"); raw != "" {
		aggregateID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid aggregate ID format")
			return
		}
		filter.Filters["aggregate_id"] = aggregateID
	}
	if raw := c.Query("aggregate_type"); raw != "" {
		filter.Filters["aggregate_type"] = raw
	}
	if raw := c.Query("operation"); raw != "" {
		filter.Filters["operation"] = raw
	}

	records, total, err := h.auditRepo.ListForTenant(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	items := make([]AuditRecordResponse, len(records))
	for i, r := range records {
		items[i] = AuditRecordResponse{
			ID:            r.ID,
			AggregateType: r.AggregateType,
			AggregateID:   r.AggregateID,
			EventType:     r.EventType,
			Operation:     r.Operation,
			OldPosition:   r.OldPosition,
			NewPosition:   r.NewPosition,
			OldVersion:    r.OldVersion,
			NewVersion:    r.NewVersion,
			Rebalanced:    r.Rebalanced,
			OccurredAt:    r.OccurredAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		}
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}
