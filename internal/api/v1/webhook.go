package v1

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recibohq/recibo/internal/config"
	"github.com/recibohq/recibo/internal/logger"
	"github.com/recibohq/recibo/internal/webhook"
)

// WebhookHandler receives payment gateway event notifications
type WebhookHandler struct {
	config     *config.Configuration
	dispatcher *webhook.Dispatcher
	logger     *logger.Logger
}

func NewWebhookHandler(
	cfg *config.Configuration,
	dispatcher *webhook.Dispatcher,
	logger *logger.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		config:     cfg,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// HandleGatewayEvent handles the POST /webhooks/gateway endpoint.
// The raw body must be read before any binding so the HMAC is computed
// over the exact bytes the gateway signed.
func (h *WebhookHandler) HandleGatewayEvent(c *gin.Context) {
	if !h.config.Billing.Enabled {
		c.JSON(http.StatusForbidden, gin.H{"error": "Billing is not enabled"})
		return
	}

	if h.config.Billing.WebhookSecret == "" {
		h.logger.Errorw("webhook secret is not configured, rejecting event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server configuration error"})
		return
	}

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Errorw("failed to read webhook body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	signature := webhook.ExtractSignature(c.GetHeader)
	if signature == "" {
		webhook.LogRejection(h.logger, signature, len(rawBody), c.ClientIP(), c.Request.UserAgent())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing webhook signature"})
		return
	}

	if !webhook.Verify(rawBody, signature, h.config.Billing.WebhookSecret) {
		webhook.LogRejection(h.logger, signature, len(rawBody), c.ClientIP(), c.Request.UserAgent())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook signature"})
		return
	}

	// Once the signature checks out the sender always gets a success
	// response, even for a body this service cannot parse. Anything else
	// keeps the gateway redelivering an event that will never apply.
	var event webhook.Event
	if err := json.Unmarshal(rawBody, &event); err != nil {
		h.logger.Errorw("failed to parse webhook payload",
			"error", err,
			"body_length", len(rawBody),
		)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	h.dispatcher.Dispatch(c.Request.Context(), &event)

	// Always acknowledge a verified event so the gateway stops retrying.
	c.JSON(http.StatusOK, gin.H{"received": true})
}
