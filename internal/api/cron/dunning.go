package cron

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/recibohq/recibo/internal/config"
	"github.com/recibohq/recibo/internal/logger"
	"github.com/recibohq/recibo/internal/service"
)

// DunningHandler exposes the scheduler-triggered payment retry job.
type DunningHandler struct {
	config         *config.Configuration
	dunningService service.DunningService
	logger         *logger.Logger
}

func NewDunningHandler(
	cfg *config.Configuration,
	dunningService service.DunningService,
	logger *logger.Logger,
) *DunningHandler {
	return &DunningHandler{
		config:         cfg,
		dunningService: dunningService,
		logger:         logger,
	}
}

// RunDunning handles the GET /cron/dunning endpoint. The bearer secret
// is checked before the billing flag so an unauthenticated caller
// learns nothing about the deployment.
func (h *DunningHandler) RunDunning(c *gin.Context) {
	if !h.authorized(c.GetHeader("Authorization")) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if !h.config.Billing.Enabled {
		c.JSON(http.StatusForbidden, gin.H{"error": "Billing is not enabled"})
		return
	}

	h.logger.Infow("starting dunning run", "time", time.Now().UTC().Format(time.RFC3339))

	result, err := h.dunningService.Run(c.Request.Context())
	if err != nil {
		h.logger.Errorw("dunning run failed", "error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("dunning run complete",
		"retried", result.Retried,
		"retry_errors", result.RetryErrors,
		"suspended", result.Suspended,
	)

	c.JSON(http.StatusOK, result)
}

func (h *DunningHandler) authorized(header string) bool {
	secret := h.config.Billing.CronSecret
	if secret == "" {
		return false
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}
