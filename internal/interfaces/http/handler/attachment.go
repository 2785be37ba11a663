package handler

import (
	kanbanapp "github.com/kanban/backend/internal/application/kanban"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AttachmentHandler handles card attachment API endpoints
type AttachmentHandler struct {
	BaseHandler
	attachmentService *kanbanapp.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(attachmentService *kanbanapp.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: attachmentService,
	}
}

// InitiateUpload godoc
// @Summary      Initiate an attachment upload
// @Description  Register attachment metadata and return a presigned upload URL
// @Tags         attachments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Card ID" format(uuid)
// @Param        request body kanbanapp.InitiateUploadRequest true "Upload initiation request"
// @Success      201 {object} dto.Response{data=kanbanapp.InitiateUploadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cards/{id}/attachments [post]
func (h *AttachmentHandler) InitiateUpload(c *gin.Context) {
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

	var req kanbanapp.InitiateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.attachmentService.InitiateUpload(c.Request.Context(), tenantID, cardID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// ListByCard godoc
// @Summary      List attachments of a card
// @Tags         attachments
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Card ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]kanbanapp.AttachmentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cards/{id}/attachments [get]
func (h *AttachmentHandler) ListByCard(c *gin.Context) {
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

	attachments, err := h.attachmentService.ListByCard(c.Request.Context(), tenantID, cardID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, attachments)
}

// GetDownloadURL godoc
// @Summary      Get a presigned download URL for an attachment
// @Tags         attachments
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Attachment ID" format(uuid)
// @Success      200 {object} dto.Response{data=kanbanapp.DownloadURLResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /attachments/{id}/download [get]
func (h *AttachmentHandler) GetDownloadURL(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	attachmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid attachment ID format")
		return
	}

	resp, err := h.attachmentService.GetDownloadURL(c.Request.Context(), tenantID, attachmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete godoc
// @Summary      Delete an attachment
// @Description  Remove attachment metadata and its stored object
// @Tags         attachments
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Attachment ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /attachments/{id} [delete]
func (h *AttachmentHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	attachmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid attachment ID format")
		return
	}

	if err := h.attachmentService.Delete(c.Request.Context(), tenantID, attachmentID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
