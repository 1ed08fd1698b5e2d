package handler

import (
	"github.com/Murilo2811/relm-care-plus/internal/warranty/service"
	"github.com/gin-gonic/gin"
)

// StoreHandler store directory endpoints (admin/manager only, enforced at
// the route group).
type StoreHandler struct {
	svc *service.StoreService
}

// NewStoreHandler creates a store handler.
func NewStoreHandler(svc *service.StoreService) *StoreHandler {
	return &StoreHandler{svc: svc}
}

// ListStores lists the store directory.
// GET /stores?active=true
func (h *StoreHandler) ListStores(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	stores, err := h.svc.List(c.Request.Context(), activeOnly)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, stores)
}

// GetStore returns one store.
// GET /stores/:id
func (h *StoreHandler) GetStore(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Store ID is required")
		return
	}

	store, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	Success(c, store)
}

// CreateStore registers a new store.
// POST /stores
func (h *StoreHandler) CreateStore(c *gin.Context) {
	var req service.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	store, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	Created(c, store)
}

// UpdateStore applies a partial update.
// PUT /stores/:id
func (h *StoreHandler) UpdateStore(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Store ID is required")
		return
	}

	var req service.UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	store, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	Success(c, store)
}
