package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/logger"
	"github.com/recibohq/recibo/internal/service"
	"github.com/recibohq/recibo/internal/types"
)

type PaymentSourceHandler struct {
	service service.PaymentSourceService
	log     *logger.Logger
}

func NewPaymentSourceHandler(
	service service.PaymentSourceService,
	log *logger.Logger,
) *PaymentSourceHandler {
	return &PaymentSourceHandler{
		service: service,
		log:     log,
	}
}

// @Summary Register a payment source
// @Description Tokenize a payment method with the gateway and store it
// @Tags PaymentSources
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param source body service.RegisterPaymentSourceRequest true "Payment source request"
// @Success 201 {object} paymentsource.PaymentSource
// @Failure 400 {object} ierr.ErrorResponse
// @Router /payment-sources [post]
func (h *PaymentSourceHandler) RegisterPaymentSource(c *gin.Context) {
	var req service.RegisterPaymentSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary List payment sources
// @Description List the authenticated workspace's payment sources
// @Tags PaymentSources
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} ierr.ErrorResponse
// @Router /payment-sources [get]
func (h *PaymentSourceHandler) ListPaymentSources(c *gin.Context) {
	workspaceID := types.GetWorkspaceID(c.Request.Context())

	sources, err := h.service.List(c.Request.Context(), workspaceID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sources})
}

// @Summary Set default payment source
// @Description Make a payment source the workspace default for retries
// @Tags PaymentSources
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Payment source ID"
// @Success 200 {object} paymentsource.PaymentSource
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /payment-sources/{id}/default [post]
func (h *PaymentSourceHandler) SetDefaultPaymentSource(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("payment source ID is required").
			WithHint("Payment source ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.SetDefault(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
