package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/recibohq/recibo/internal/api"
	"github.com/recibohq/recibo/internal/api/cron"
	v1 "github.com/recibohq/recibo/internal/api/v1"
	"github.com/recibohq/recibo/internal/cache"
	"github.com/recibohq/recibo/internal/config"
	"github.com/recibohq/recibo/internal/email"
	"github.com/recibohq/recibo/internal/gateway"
	"github.com/recibohq/recibo/internal/httpclient"
	"github.com/recibohq/recibo/internal/logger"
	"github.com/recibohq/recibo/internal/postgres"
	"github.com/recibohq/recibo/internal/repository"
	"github.com/recibohq/recibo/internal/service"
	"github.com/recibohq/recibo/internal/webhook"
	"go.uber.org/fx"
)

// @title Recibo API
// @version 1.0
// @description Subscription billing and dunning service
// @BasePath /v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Postgres
			postgres.NewDB,

			// HTTP Client
			httpclient.NewDefaultClient,

			// Gateway
			gateway.NewClient,

			// Email
			email.NewClient,
			email.NewNotifier,

			// Repositories
			repository.NewPlanRepository,
			repository.NewSubscriptionRepository,
			repository.NewInvoiceRepository,
			repository.NewTransactionRepository,
			repository.NewPaymentSourceRepository,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewPlanService,
			service.NewSubscriptionService,
			service.NewInvoiceService,
			service.NewTransactionService,
			service.NewPaymentSourceService,
			service.NewPaymentEventService,
			service.NewDunningService,

			provideDispatcher,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideDispatcher(
	paymentEvents service.PaymentEventService,
	log *logger.Logger,
) *webhook.Dispatcher {
	return webhook.NewDispatcher(paymentEvents, paymentEvents, log)
}

func provideHandlers(
	cfg *config.Configuration,
	log *logger.Logger,
	planService service.PlanService,
	subscriptionService service.SubscriptionService,
	invoiceService service.InvoiceService,
	paymentSourceService service.PaymentSourceService,
	dunningService service.DunningService,
	dispatcher *webhook.Dispatcher,
) api.Handlers {
	return api.Handlers{
		Health:        v1.NewHealthHandler(log),
		Plan:          v1.NewPlanHandler(planService, log),
		Subscription:  v1.NewSubscriptionHandler(subscriptionService, log),
		Invoice:       v1.NewInvoiceHandler(invoiceService, dunningService, log),
		PaymentSource: v1.NewPaymentSourceHandler(paymentSourceService, log),
		Webhook:       v1.NewWebhookHandler(cfg, dispatcher, log),
		CronDunning:   cron.NewDunningHandler(cfg, dunningService, log),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, log)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting API server...")
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}
