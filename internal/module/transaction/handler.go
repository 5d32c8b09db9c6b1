package transaction

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fedpay/server/internal/shared/response"
)

// Handler handles admin HTTP requests for the transaction ledger.
type Handler struct {
	service *Service
}

// NewHandler creates a new transaction handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the transaction routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	transactions := r.Group("/transactions")
	{
		transactions.GET("", h.List)
		transactions.GET("/stats", h.Stats)
		transactions.GET("/entity", h.ListByEntity)
		transactions.GET("/:payment_id", h.GetByPaymentID)
	}
}

var errorMappings = []response.ErrorMapping{
	{Err: ErrTransactionNotFound, Status: http.StatusNotFound},
	{Err: ErrDuplicatePaymentID, Status: http.StatusConflict},
}

// List returns a filtered page of the ledger.
func (h *Handler) List(c *gin.Context) {
	filter := &ListFilter{
		Type:   c.Query("type"),
		Status: c.Query("status"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	var err error
	if filter.From, err = parseDate(c.Query("from")); err != nil {
		response.BadRequest(c, "invalid from date")
		return
	}
	if filter.To, err = parseDate(c.Query("to")); err != nil {
		response.BadRequest(c, "invalid to date")
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Stats returns aggregate ledger stats over a date range.
func (h *Handler) Stats(c *gin.Context) {
	from, err := parseDate(c.Query("from"))
	if err != nil {
		response.BadRequest(c, "invalid from date")
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		response.BadRequest(c, "invalid to date")
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), from, to)
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListByEntity returns the transactions linked to an entity.
func (h *Handler) ListByEntity(c *gin.Context) {
	entityID, err := uuid.Parse(c.Query("entity_id"))
	if err != nil {
		response.BadRequest(c, "invalid entity_id")
		return
	}

	transactions, err := h.service.ListByEntity(c.Request.Context(), c.Query("entity_type"), entityID)
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

// GetByPaymentID returns a transaction with its status history.
func (h *Handler) GetByPaymentID(c *gin.Context) {
	t, err := h.service.GetByPaymentID(c.Request.Context(), c.Param("payment_id"))
	if err != nil {
		response.HandleErrorWithDefault(c, err, errorMappings)
		return
	}
	c.JSON(http.StatusOK, t)
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
