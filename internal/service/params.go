package service

import (
	"github.com/recibohq/recibo/internal/config"
	"github.com/recibohq/recibo/internal/domain/invoice"
	"github.com/recibohq/recibo/internal/domain/paymentsource"
	"github.com/recibohq/recibo/internal/domain/plan"
	"github.com/recibohq/recibo/internal/domain/subscription"
	"github.com/recibohq/recibo/internal/domain/transaction"
	"github.com/recibohq/recibo/internal/email"
	"github.com/recibohq/recibo/internal/gateway"
	"github.com/recibohq/recibo/internal/logger"
	"github.com/recibohq/recibo/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.TxRunner

	// Repositories
	PlanRepo          plan.Repository
	SubRepo           subscription.Repository
	InvoiceRepo       invoice.Repository
	TransactionRepo   transaction.Repository
	PaymentSourceRepo paymentsource.Repository

	// Collaborators
	Gateway  gateway.Client
	Notifier *email.Notifier
}

func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db *postgres.DB,
	planRepo plan.Repository,
	subRepo subscription.Repository,
	invoiceRepo invoice.Repository,
	transactionRepo transaction.Repository,
	paymentSourceRepo paymentsource.Repository,
	gatewayClient gateway.Client,
	notifier *email.Notifier,
) ServiceParams {
	return ServiceParams{
		Logger:            logger,
		Config:            config,
		DB:                db,
		PlanRepo:          planRepo,
		SubRepo:           subRepo,
		InvoiceRepo:       invoiceRepo,
		TransactionRepo:   transactionRepo,
		PaymentSourceRepo: paymentSourceRepo,
		Gateway:           gatewayClient,
		Notifier:          notifier,
	}
}
