package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fedpay/server/internal/shared/response"
)

// Handler handles admin HTTP requests for gateway configuration.
type Handler struct {
	service *Service
}

// NewHandler creates a new gateway handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the gateway admin routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	gateways := r.Group("/gateways")
	{
		gateways.POST("", h.Create)
		gateways.GET("", h.List)
		gateways.GET("/:id", h.Get)
		gateways.PUT("/:id", h.Update)
		gateways.DELETE("/:id", h.Delete)
	}
}

var errorMappings = []response.ErrorMapping{
	{Err: ErrGatewayNotFound, Status: http.StatusNotFound},
	{Err: ErrUnsupportedProvider, Status: http.StatusBadRequest},
	{Err: ErrInvalidCredentials, Status: http.StatusBadRequest},
	{Err: ErrInvalidEntityType, Status: http.StatusBadRequest},
}

// Create registers a new payment gateway.
func (h *Handler) Create(c *gin.Context) {
	var req CreateGatewayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cfg, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}

	c.JSON(http.StatusCreated, cfg.ToResponse())
}

// List returns all configured gateways.
func (h *Handler) List(c *gin.Context) {
	configs, err := h.service.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, "")
		return
	}

	out := make([]*GatewayResponse, len(configs))
	for i, cfg := range configs {
		out[i] = cfg.ToResponse()
	}
	c.JSON(http.StatusOK, gin.H{"gateways": out})
}

// Get returns a gateway by ID.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid gateway ID")
		return
	}

	cfg, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}

	c.JSON(http.StatusOK, cfg.ToResponse())
}

// Update applies a partial update to a gateway.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid gateway ID")
		return
	}

	var req UpdateGatewayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cfg, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}

	c.JSON(http.StatusOK, cfg.ToResponse())
}

// Delete removes a gateway.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid gateway ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}

	c.Status(http.StatusNoContent)
}
