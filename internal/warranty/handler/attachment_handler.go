package handler

import (
	"github.com/Murilo2811/relm-care-plus/internal/warranty/service"
	"github.com/gin-gonic/gin"
)

// maxAttachmentSize caps a single evidence upload at 20 MiB.
const maxAttachmentSize = 20 << 20

// AttachmentHandler claim evidence endpoints.
type AttachmentHandler struct {
	svc *service.AttachmentService
}

// NewAttachmentHandler creates an attachment handler.
func NewAttachmentHandler(svc *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{svc: svc}
}

// Upload stores one evidence file for a claim.
// POST /claims/:id/attachments (multipart, field "file")
func (h *AttachmentHandler) Upload(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Claim ID is required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "Missing upload file: "+err.Error())
		return
	}
	if fileHeader.Size > maxAttachmentSize {
		BadRequest(c, "File too large")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "Failed to read upload: "+err.Error())
		return
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	att, err := h.svc.Upload(c.Request.Context(), GetActor(c), id, fileHeader.Filename, contentType, fileHeader.Size, src)
	if err != nil {
		respondError(c, err)
		return
	}

	Created(c, att)
}

// List returns a claim's attachments.
// GET /claims/:id/attachments
func (h *AttachmentHandler) List(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Claim ID is required")
		return
	}

	atts, err := h.svc.List(c.Request.Context(), GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	Success(c, atts)
}

// Download returns a short-lived download URL for one attachment.
// GET /claims/:id/attachments/:attachmentId/download
func (h *AttachmentHandler) Download(c *gin.Context) {
	id := c.Param("id")
	attachmentID := c.Param("attachmentId")
	if id == "" || attachmentID == "" {
		BadRequest(c, "Claim ID and attachment ID are required")
		return
	}

	url, err := h.svc.DownloadURL(c.Request.Context(), GetActor(c), id, attachmentID)
	if err != nil {
		respondError(c, err)
		return
	}

	Success(c, gin.H{"url": url})
}
