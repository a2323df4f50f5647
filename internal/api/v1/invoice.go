package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/logger"
	"github.com/recibohq/recibo/internal/service"
	"github.com/recibohq/recibo/internal/types"
)

type InvoiceHandler struct {
	service        service.InvoiceService
	dunningService service.DunningService
	log            *logger.Logger
}

func NewInvoiceHandler(
	service service.InvoiceService,
	dunningService service.DunningService,
	log *logger.Logger,
) *InvoiceHandler {
	return &InvoiceHandler{
		service:        service,
		dunningService: dunningService,
		log:            log,
	}
}

// @Summary List invoices
// @Description List the authenticated workspace's invoices, newest first
// @Tags Invoices
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} ierr.ErrorResponse
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	workspaceID := types.GetWorkspaceID(c.Request.Context())

	invoices, err := h.service.ListByWorkspace(c.Request.Context(), workspaceID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoices})
}

// @Summary Get an invoice
// @Description Get an invoice by ID
// @Tags Invoices
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Invoice ID"
// @Success 200 {object} invoice.Invoice
// @Failure 404 {object} ierr.ErrorResponse
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invoice ID is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Retry an invoice
// @Description Trigger an immediate payment retry for a failed invoice
// @Tags Invoices
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Invoice ID"
// @Success 200 {object} invoice.Invoice
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /invoices/{id}/retry [post]
func (h *InvoiceHandler) RetryInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invoice ID is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.dunningService.RetryInvoice(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
