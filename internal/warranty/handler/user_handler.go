package handler

import (
	"github.com/Murilo2811/relm-care-plus/internal/warranty/service"
	"github.com/gin-gonic/gin"
)

// UserHandler staff account endpoints (admin only, enforced at the route
// group).
type UserHandler struct {
	svc *service.UserService
}

// NewUserHandler creates a user handler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// ListUsers lists staff accounts.
// GET /users?search=&role=
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.svc.List(c.Request.Context(), c.Query("search"), c.Query("role"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, users)
}

// CreateUser registers a staff account.
// POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	Created(c, user)
}

// UpdateUser applies a partial update.
// PUT /users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "User ID is required")
		return
	}

	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	Success(c, user)
}

// ToggleUser flips a user's active flag.
// POST /users/:id/toggle
func (h *UserHandler) ToggleUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "User ID is required")
		return
	}

	user, err := h.svc.ToggleActive(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	Success(c, user)
}
