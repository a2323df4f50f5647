package repository

import (
	"github.com/recibohq/recibo/internal/cache"
	"github.com/recibohq/recibo/internal/domain/invoice"
	"github.com/recibohq/recibo/internal/domain/paymentsource"
	"github.com/recibohq/recibo/internal/domain/plan"
	"github.com/recibohq/recibo/internal/domain/subscription"
	"github.com/recibohq/recibo/internal/domain/transaction"
	"github.com/recibohq/recibo/internal/logger"
	"github.com/recibohq/recibo/internal/postgres"
	repo "github.com/recibohq/recibo/internal/repository/postgres"
)

func NewPlanRepository(db *postgres.DB, logger *logger.Logger, c cache.Cache) plan.Repository {
	return NewCachedPlanRepository(repo.NewPlanRepository(db, logger), c, logger)
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return repo.NewSubscriptionRepository(db, logger)
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return repo.NewInvoiceRepository(db, logger)
}

func NewTransactionRepository(db *postgres.DB, logger *logger.Logger) transaction.Repository {
	return repo.NewTransactionRepository(db, logger)
}

func NewPaymentSourceRepository(db *postgres.DB, logger *logger.Logger) paymentsource.Repository {
	return repo.NewPaymentSourceRepository(db, logger)
}
