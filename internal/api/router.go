package api

import (
	"github.com/gin-gonic/gin"
	"github.com/recibohq/recibo/internal/api/cron"
	v1 "github.com/recibohq/recibo/internal/api/v1"
	"github.com/recibohq/recibo/internal/config"
	"github.com/recibohq/recibo/internal/logger"
	"github.com/recibohq/recibo/internal/rest/middleware"
)

type Handlers struct {
	Health        *v1.HealthHandler
	Plan          *v1.PlanHandler
	Subscription  *v1.SubscriptionHandler
	Invoice       *v1.InvoiceHandler
	PaymentSource *v1.PaymentSourceHandler
	Webhook       *v1.WebhookHandler
	CronDunning   *cron.DunningHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")

	// Webhook and cron are authenticated by signature and shared secret
	// respectively, never by user tokens.
	v1Group.POST("/webhooks/gateway", handlers.Webhook.HandleGatewayEvent)
	v1Group.GET("/cron/dunning", handlers.CronDunning.RunDunning)

	// Plan catalog is public so the pricing page can render it.
	v1Group.GET("/plans", handlers.Plan.ListPlans)
	v1Group.GET("/plans/:id", handlers.Plan.GetPlan)

	private := v1Group.Group("")
	private.Use(middleware.AuthenticateMiddleware(cfg, log))
	registerPrivateRoutes(private, handlers)

	return router
}

func registerPrivateRoutes(router *gin.RouterGroup, handlers Handlers) {
	router.POST("/plans", handlers.Plan.CreatePlan)

	subscriptions := router.Group("/subscriptions")
	{
		subscriptions.POST("", handlers.Subscription.Subscribe)
		subscriptions.GET("/current", handlers.Subscription.GetCurrent)
		subscriptions.GET("/:id", handlers.Subscription.GetSubscription)
		subscriptions.POST("/:id/change-plan", handlers.Subscription.ChangePlan)
		subscriptions.POST("/:id/cancel", handlers.Subscription.CancelSubscription)
		subscriptions.POST("/:id/reactivate", handlers.Subscription.ReactivateSubscription)
	}

	invoices := router.Group("/invoices")
	{
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.POST("/:id/retry", handlers.Invoice.RetryInvoice)
	}

	paymentSources := router.Group("/payment-sources")
	{
		paymentSources.POST("", handlers.PaymentSource.RegisterPaymentSource)
		paymentSources.GET("", handlers.PaymentSource.ListPaymentSources)
		paymentSources.POST("/:id/default", handlers.PaymentSource.SetDefaultPaymentSource)
	}
}
