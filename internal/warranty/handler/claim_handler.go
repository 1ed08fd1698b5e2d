package handler

import (
	"github.com/Murilo2811/relm-care-plus/internal/warranty/service"
	"github.com/gin-gonic/gin"
)

// ClaimHandler authenticated claim endpoints.
type ClaimHandler struct {
	svc *service.ClaimService
}

// NewClaimHandler creates a claim handler.
func NewClaimHandler(svc *service.ClaimService) *ClaimHandler {
	return &ClaimHandler{svc: svc}
}

// ListClaims lists the claims visible to the caller.
// GET /claims?status=&protocol=&link_status=
func (h *ClaimHandler) ListClaims(c *gin.Context) {
	filter := service.ListFilter{
		Status:         c.Query("status"),
		ProtocolNumber: c.Query("protocol"),
		LinkStatus:     c.Query("link_status"),
	}

	claims, err := h.svc.List(c.Request.Context(), GetActor(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	Success(c, claims)
}

// GetClaim returns one claim.
// GET /claims/:id
func (h *ClaimHandler) GetClaim(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Claim ID is required")
		return
	}

	claim, err := h.svc.GetByID(c.Request.Context(), GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	Success(c, claim)
}

// UpdateStatusRequest status transition payload.
type UpdateStatusRequest struct {
	ToStatus string `json:"to_status" binding:"required"`
	Comment  string `json:"comment" binding:"required"`
}

// UpdateStatus moves a claim through the workflow.
// POST /claims/:id/status
func (h *ClaimHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Claim ID is required")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	claim, err := h.svc.UpdateStatus(c.Request.Context(), GetActor(c), id, req.ToStatus, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	Success(c, claim)
}

// GetHistory returns the claim's audit trail.
// GET /claims/:id/events
func (h *ClaimHandler) GetHistory(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Claim ID is required")
		return
	}

	events, err := h.svc.History(c.Request.Context(), GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	Success(c, events)
}

// AddCommentRequest comment payload.
type AddCommentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// AddComment appends a comment to the claim timeline.
// POST /claims/:id/comments
func (h *ClaimHandler) AddComment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Claim ID is required")
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.AddComment(c.Request.Context(), GetActor(c), id, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	Created(c, event)
}

// LinkStoreRequest manual store link payload.
type LinkStoreRequest struct {
	StoreID string `json:"store_id" binding:"required"`
}

// LinkStore manually links a claim to a store.
// POST /claims/:id/store-link
func (h *ClaimHandler) LinkStore(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Claim ID is required")
		return
	}

	var req LinkStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	claim, err := h.svc.LinkStore(c.Request.Context(), GetActor(c), id, req.StoreID)
	if err != nil {
		respondError(c, err)
		return
	}

	Success(c, claim)
}

// GetTransitions lists the statuses the caller may move the claim to.
// GET /claims/:id/transitions
func (h *ClaimHandler) GetTransitions(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Claim ID is required")
		return
	}

	targets, err := h.svc.AllowedTransitions(c.Request.Context(), GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	Success(c, targets)
}
