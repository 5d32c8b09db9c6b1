package membership

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fedpay/server/internal/shared/response"
)

// Handler handles HTTP requests for memberships.
type Handler struct {
	service *Service
}

// NewHandler creates a new membership handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the membership routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	memberships := r.Group("/memberships")
	{
		memberships.POST("", h.Create)
		memberships.GET("/:id", h.Get)
		memberships.GET("", h.List)
	}
}

var errorMappings = []response.ErrorMapping{
	{Err: ErrMembershipNotFound, Status: http.StatusNotFound},
	{Err: ErrCancelled, Status: http.StatusConflict},
}

// CreateMembershipRequest is the request to open a membership.
type CreateMembershipRequest struct {
	Kind      string     `json:"kind" binding:"required,oneof=ATHLETE CLUB"`
	AthleteID *uuid.UUID `json:"athlete_id"`
	ClubID    *uuid.UUID `json:"club_id"`
	Year      int        `json:"year"`
}

// Create opens a pending membership.
func (h *Handler) Create(c *gin.Context) {
	var req CreateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.Kind == KindAthlete && req.AthleteID == nil {
		response.BadRequest(c, "athlete_id is required for athlete memberships")
		return
	}
	if req.Kind == KindClub && req.ClubID == nil {
		response.BadRequest(c, "club_id is required for club affiliations")
		return
	}

	m, err := h.service.Create(c.Request.Context(), &CreateInput{
		Kind:      req.Kind,
		AthleteID: req.AthleteID,
		ClubID:    req.ClubID,
		Year:      req.Year,
	})
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// Get returns a membership by ID.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid membership ID")
		return
	}

	m, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusOK, m)
}

// List returns memberships filtered by athlete_id or club_id.
func (h *Handler) List(c *gin.Context) {
	if athleteID, err := uuid.Parse(c.Query("athlete_id")); err == nil {
		memberships, err := h.service.ListByAthlete(c.Request.Context(), athleteID)
		if err != nil {
			response.HandleErrorWithDefault(c, err, errorMappings)
			return
		}
		c.JSON(http.StatusOK, gin.H{"memberships": memberships})
		return
	}
	if clubID, err := uuid.Parse(c.Query("club_id")); err == nil {
		memberships, err := h.service.ListByClub(c.Request.Context(), clubID)
		if err != nil {
			response.HandleErrorWithDefault(c, err, errorMappings)
			return
		}
		c.JSON(http.StatusOK, gin.H{"memberships": memberships})
		return
	}
	response.BadRequest(c, "athlete_id or club_id is required")
}
