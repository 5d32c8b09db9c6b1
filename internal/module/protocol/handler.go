package protocol

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fedpay/server/internal/shared/response"
)

// Handler handles HTTP requests for protocol lookups.
type Handler struct {
	service *Service
}

// NewHandler creates a new protocol handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the protocol routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	protocols := r.Group("/protocols")
	{
		protocols.GET("/:number", h.GetByNumber)
		protocols.GET("", h.ListByEntity)
	}
}

var errorMappings = []response.ErrorMapping{
	{Err: ErrProtocolNotFound, Status: http.StatusNotFound},
	{Err: ErrInvalidEntityType, Status: http.StatusBadRequest},
}

// GetByNumber returns a protocol by its number.
func (h *Handler) GetByNumber(c *gin.Context) {
	p, err := h.service.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListByEntity returns the protocols linked to an entity, identified by
// the entity_type and entity_id query parameters.
func (h *Handler) ListByEntity(c *gin.Context) {
	entityType := c.Query("entity_type")
	entityID, err := uuid.Parse(c.Query("entity_id"))
	if err != nil {
		response.BadRequest(c, "invalid entity_id")
		return
	}

	protocols, err := h.service.ListByEntity(c.Request.Context(), entityType, entityID)
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusOK, gin.H{"protocols": protocols})
}
