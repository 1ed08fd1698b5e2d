package handler

import (
	"github.com/Murilo2811/relm-care-plus/internal/warranty/service"
	"github.com/gin-gonic/gin"
)

// PublicHandler unauthenticated endpoints: warranty form intake and
// protocol tracking.
type PublicHandler struct {
	svc *service.ClaimService
}

// NewPublicHandler creates a public handler.
func NewPublicHandler(svc *service.ClaimService) *PublicHandler {
	return &PublicHandler{svc: svc}
}

// CreateClaim registers a claim from the public warranty form.
// POST /public/claims
func (h *PublicHandler) CreateClaim(c *gin.Context) {
	var req service.CreatePublicClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	claim, err := h.svc.CreatePublic(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	// The public caller only needs the protocol to track the claim.
	Created(c, gin.H{
		"protocol_number": claim.ProtocolNumber,
		"status":          claim.Status,
	})
}

// TrackClaim returns the public view of a claim by protocol number.
// GET /public/claims/:protocol
func (h *PublicHandler) TrackClaim(c *gin.Context) {
	protocol := c.Param("protocol")
	if protocol == "" {
		BadRequest(c, "Protocol number is required")
		return
	}

	view, err := h.svc.TrackByProtocol(c.Request.Context(), protocol)
	if err != nil {
		respondError(c, err)
		return
	}

	Success(c, view)
}
