package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/recibohq/recibo/internal/config"
	"github.com/recibohq/recibo/internal/domain/invoice"
	"github.com/recibohq/recibo/internal/domain/paymentsource"
	"github.com/recibohq/recibo/internal/domain/plan"
	"github.com/recibohq/recibo/internal/domain/subscription"
	"github.com/recibohq/recibo/internal/domain/transaction"
	"github.com/recibohq/recibo/internal/logger"
	"github.com/recibohq/recibo/internal/types"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	PlanRepo          plan.Repository
	SubRepo           subscription.Repository
	InvoiceRepo       invoice.Repository
	TransactionRepo   transaction.Repository
	PaymentSourceRepo paymentsource.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	stores  Stores
	gateway *FakeGateway
	logger  *logger.Logger
	config  *config.Configuration
	now     time.Time
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.gateway = NewFakeGateway()
	s.logger = logger.GetLogger()
	s.config = config.GetDefaultConfig()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.ClearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = context.Background()
	s.ctx = types.SetUserID(s.ctx, types.DefaultUserID)
	s.ctx = types.SetWorkspaceID(s.ctx, types.DefaultWorkspaceID)
	s.ctx = types.SetRequestID(s.ctx, types.GenerateUUID())
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		PlanRepo:          NewInMemoryPlanStore(),
		SubRepo:           NewInMemorySubscriptionStore(),
		InvoiceRepo:       NewInMemoryInvoiceStore(),
		TransactionRepo:   NewInMemoryTransactionStore(),
		PaymentSourceRepo: NewInMemoryPaymentSourceStore(),
	}
}

// ClearStores clears all test data between tests
func (s *BaseServiceTestSuite) ClearStores() {
	s.stores.PlanRepo.(*InMemoryPlanStore).Clear()
	s.stores.SubRepo.(*InMemorySubscriptionStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.TransactionRepo.(*InMemoryTransactionStore).Clear()
	s.stores.PaymentSourceRepo.(*InMemoryPaymentSourceStore).Clear()
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetGateway() *FakeGateway {
	return s.gateway
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
