package handler

import (
	"errors"

	"github.com/Murilo2811/relm-care-plus/internal/warranty/entity"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/repository"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/service"
	"github.com/gin-gonic/gin"
)

// Handlers handler bundle.
type Handlers struct {
	Public     *PublicHandler
	Claim      *ClaimHandler
	Store      *StoreHandler
	User       *UserHandler
	Auth       *AuthHandler
	Attachment *AttachmentHandler
	SSE        *SSEHandler
}

// NewHandlers creates the handler bundle.
func NewHandlers(svc *service.Services, sseHandler *SSEHandler) *Handlers {
	return &Handlers{
		Public:     NewPublicHandler(svc.Claim),
		Claim:      NewClaimHandler(svc.Claim),
		Store:      NewStoreHandler(svc.Store),
		User:       NewUserHandler(svc.User),
		Auth:       NewAuthHandler(svc.Auth),
		Attachment: NewAttachmentHandler(svc.Attachment),
		SSE:        sseHandler,
	}
}

// Response generic response envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 200 response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error error response. code is <http status>*100 + detail.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 400 response.
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Unauthorized 401 response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// Forbidden 403 response.
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound 404 response.
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError 500 response.
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// genericDenied is shown for both NotFound and Forbidden so the response
// body never confirms whether the claim exists.
const genericDenied = "não encontrado ou acesso negado"

// respondError maps business errors onto the HTTP contract.
func respondError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	var tErr *service.InvalidTransitionError

	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		NotFound(c, genericDenied)
	case errors.Is(err, service.ErrForbidden):
		Forbidden(c, genericDenied)
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUserInactive):
		Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		Error(c, 40900, err.Error())
	case errors.As(err, &vErr):
		BadRequest(c, vErr.Error())
	case errors.As(err, &tErr):
		BadRequest(c, tErr.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetUserID returns the caller's user id from the request context.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetActor builds the service actor from the JWT context values.
func GetActor(c *gin.Context) service.Actor {
	return service.Actor{
		ID:      GetUserID(c),
		Name:    c.GetString("user_name"),
		Role:    entity.Role(c.GetString("role")),
		StoreID: c.GetString("store_id"),
	}
}
