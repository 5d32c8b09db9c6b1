package registration

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fedpay/server/internal/shared/response"
)

// Handler handles HTTP requests for registrations.
type Handler struct {
	service *Service
}

// NewHandler creates a new registration handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the registration routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	registrations := r.Group("/registrations")
	{
		registrations.POST("", h.Create)
		registrations.GET("/:id", h.Get)
		registrations.GET("", h.List)
	}
}

var errorMappings = []response.ErrorMapping{
	{Err: ErrRegistrationNotFound, Status: http.StatusNotFound},
	{Err: ErrCancelled, Status: http.StatusConflict},
}

// CreateRegistrationRequest is the request to register for an event.
type CreateRegistrationRequest struct {
	EventID   uuid.UUID `json:"event_id" binding:"required"`
	AthleteID uuid.UUID `json:"athlete_id" binding:"required"`
	Category  string    `json:"category"`
}

// Create registers an athlete for an event.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	reg, err := h.service.Create(c.Request.Context(), &CreateInput{
		EventID:   req.EventID,
		AthleteID: req.AthleteID,
		Category:  req.Category,
	})
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusCreated, reg)
}

// Get returns a registration by ID.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid registration ID")
		return
	}

	reg, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusOK, reg)
}

// List returns registrations filtered by event_id or athlete_id.
func (h *Handler) List(c *gin.Context) {
	if eventID, err := uuid.Parse(c.Query("event_id")); err == nil {
		regs, err := h.service.ListByEvent(c.Request.Context(), eventID)
		if err != nil {
			response.HandleErrorWithDefault(c, err, errorMappings)
			return
		}
		c.JSON(http.StatusOK, gin.H{"registrations": regs})
		return
	}
	if athleteID, err := uuid.Parse(c.Query("athlete_id")); err == nil {
		regs, err := h.service.ListByAthlete(c.Request.Context(), athleteID)
		if err != nil {
			response.HandleErrorWithDefault(c, err, errorMappings)
			return
		}
		c.JSON(http.StatusOK, gin.H{"registrations": regs})
		return
	}
	response.BadRequest(c, "event_id or athlete_id is required")
}
