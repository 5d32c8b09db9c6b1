package payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fedpay/server/internal/module/gateway"
	apperrors "github.com/fedpay/server/internal/shared/errors"
	"github.com/fedpay/server/internal/shared/response"
)

// Handler handles HTTP requests for payments.
type Handler struct {
	service *Service
}

// NewHandler creates a new payment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the payment routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")
	{
		payments.POST("", h.Checkout)
		payments.POST("/card", h.ProcessCard)
		payments.GET("/installments", h.Installments)
		payments.GET("/entity", h.ListByEntity)
		payments.GET("/:id", h.GetPayment)
	}
}

var errorMappings = []response.ErrorMapping{
	{Err: ErrPaymentNotFound, Status: http.StatusNotFound},
	{Err: ErrInvalidEntityType, Status: http.StatusBadRequest},
	{Err: ErrMethodNotSupported, Status: http.StatusBadRequest},
	{Err: gateway.ErrNoActiveGateway, Status: http.StatusNotFound},
	{Err: gateway.ErrInvalidEntityType, Status: http.StatusBadRequest},
}

// handleError maps service errors to responses, surfacing provider
// messages on upstream failures.
func handleError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		response.ErrorWithCode(c, appErr.StatusCode, appErr.Code, appErr.Message)
		return
	}
	response.HandleErrorWithDefault(c, err, errorMappings)
}

// Checkout starts a payment for an entity.
func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Checkout(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ProcessCard charges a tokenized card directly.
func (h *Handler) ProcessCard(c *gin.Context) {
	var req CardPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.ProcessCard(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Installments returns the installment plans for an amount.
func (h *Handler) Installments(c *gin.Context) {
	amount, err := strconv.ParseInt(c.Query("amount"), 10, 64)
	if err != nil || amount <= 0 {
		response.BadRequest(c, "invalid amount")
		return
	}

	resp, err := h.service.InstallmentOptions(
		c.Request.Context(),
		c.Query("entity_type"),
		amount,
		c.Query("method_id"),
		c.Query("bin"),
	)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetPayment returns a payment by ID.
func (h *Handler) GetPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment ID")
		return
	}

	p, err := h.service.GetPayment(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListByEntity returns the payments linked to an entity.
func (h *Handler) ListByEntity(c *gin.Context) {
	entityID, err := uuid.Parse(c.Query("entity_id"))
	if err != nil {
		response.BadRequest(c, "invalid entity_id")
		return
	}

	payments, err := h.service.ListByEntity(c.Request.Context(), c.Query("entity_type"), entityID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
