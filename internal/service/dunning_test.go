package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/recibohq/recibo/internal/domain/invoice"
	"github.com/recibohq/recibo/internal/domain/paymentsource"
	"github.com/recibohq/recibo/internal/domain/plan"
	"github.com/recibohq/recibo/internal/domain/subscription"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/gateway"
	"github.com/recibohq/recibo/internal/testutil"
	"github.com/recibohq/recibo/internal/types"
)

type DunningServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  DunningService
	testData struct {
		plan   *plan.Plan
		sub    *subscription.Subscription
		source *paymentsource.PaymentSource
	}
}

func TestDunningService(t *testing.T) {
	suite.Run(t, new(DunningServiceSuite))
}

func (s *DunningServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewDunningService(ServiceParams{
		Logger:            s.GetLogger(),
		Config:            s.GetConfig(),
		DB:                testutil.NoopTxRunner{},
		PlanRepo:          s.GetStores().PlanRepo,
		SubRepo:           s.GetStores().SubRepo,
		InvoiceRepo:       s.GetStores().InvoiceRepo,
		TransactionRepo:   s.GetStores().TransactionRepo,
		PaymentSourceRepo: s.GetStores().PaymentSourceRepo,
		Gateway:           s.GetGateway(),
	})
	s.setupTestData()
}

func (s *DunningServiceSuite) setupTestData() {
	ctx := s.GetContext()

	s.testData.plan = &plan.Plan{
		ID:            "plan_basic",
		Name:          "Basic",
		AmountInCents: 15000,
		Currency:      "COP",
		BillingPeriod: types.BillingPeriodMonthly,
		IsActive:      true,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().PlanRepo.Create(ctx, s.testData.plan))

	s.testData.source = &paymentsource.PaymentSource{
		ID:            "psrc_test",
		WorkspaceID:   types.DefaultWorkspaceID,
		UserID:        types.DefaultUserID,
		ExternalID:    "42",
		Type:          types.PaymentSourceTypeCard,
		SourceStatus:  types.PaymentSourceStatusAvailable,
		CustomerEmail: "customer@example.com",
		IsDefault:     true,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().PaymentSourceRepo.Create(ctx, s.testData.source))

	psID := s.testData.source.ID
	s.testData.sub = &subscription.Subscription{
		ID:                 "sub_test",
		WorkspaceID:        types.DefaultWorkspaceID,
		UserID:             types.DefaultUserID,
		PlanID:             s.testData.plan.ID,
		PaymentSourceID:    &psID,
		SubscriptionStatus: types.SubscriptionStatusActive,
		CurrentPeriodStart: s.GetNow().AddDate(0, -1, 0),
		CurrentPeriodEnd:   s.GetNow(),
		Metadata:           types.Metadata{},
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().SubRepo.Create(ctx, s.testData.sub))
}

// failedInvoice seeds a failed invoice due for retry now.
func (s *DunningServiceSuite) failedInvoice(id string, attempts int, due time.Time) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:             id,
		SubscriptionID: s.testData.sub.ID,
		WorkspaceID:    types.DefaultWorkspaceID,
		AmountInCents:  15000,
		InvoiceStatus:  types.InvoiceStatusFailed,
		Reference:      "REF-" + id,
		PeriodStart:    s.testData.sub.CurrentPeriodStart,
		PeriodEnd:      s.testData.sub.CurrentPeriodEnd,
		AttemptCount:   attempts,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	if attempts < types.MaxInvoiceAttempts {
		inv.NextRetryAt = &due
	}
	s.NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), inv))
	return inv
}

func (s *DunningServiceSuite) TestRunRetriesDueInvoice() {
	due := s.GetNow().Add(-time.Hour)
	inv := s.failedInvoice("inv_due", 1, due)

	result, err := s.service.Run(s.GetContext())
	s.NoError(err)
	s.True(result.Success)
	s.Equal(1, result.TotalFailed)
	s.Equal(1, result.Retried)
	s.Zero(result.RetryErrors)
	s.Zero(result.Suspended)

	// Deterministic retry reference: prefix, invoice id fragment, attempt.
	s.Len(s.GetGateway().CreatedTransactions, 1)
	req := s.GetGateway().CreatedTransactions[0]
	s.Equal(gateway.RetryReference(inv.ID, 2), req.Reference)
	s.Equal(int64(15000), req.AmountInCents)
	s.True(req.Recurrent)

	// The attempt is consumed up front; the webhook settles the outcome.
	updated, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Equal(2, updated.AttemptCount)
	s.Equal(types.InvoiceStatusFailed, updated.InvoiceStatus)
	s.NotNil(updated.NextRetryAt)

	// The invoice now points at the retry transaction.
	s.NotNil(updated.ExternalTransactionID)
	s.Equal("txn_ext_1", *updated.ExternalTransactionID)
}

func (s *DunningServiceSuite) TestRunSkipsInvoiceNotYetDue() {
	s.failedInvoice("inv_future", 1, s.GetNow().Add(48*time.Hour))

	result, err := s.service.Run(s.GetContext())
	s.NoError(err)
	s.Zero(result.TotalFailed)
	s.Zero(result.Retried)
	s.Empty(s.GetGateway().CreatedTransactions)
}

func (s *DunningServiceSuite) TestRunGatewayErrorConsumesAttempt() {
	due := s.GetNow().Add(-time.Hour)
	inv := s.failedInvoice("inv_outage", 1, due)
	s.GetGateway().FailNextCreate = true

	result, err := s.service.Run(s.GetContext())
	s.NoError(err)
	s.Equal(1, result.RetryErrors)
	s.Zero(result.Retried)

	// A flapping gateway still advances the bounded retry counter.
	updated, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Equal(2, updated.AttemptCount)
}

func (s *DunningServiceSuite) TestRunMissingPaymentSourceDoesNotConsumeAttempt() {
	s.testData.sub.PaymentSourceID = nil
	s.NoError(s.GetStores().SubRepo.Update(s.GetContext(), s.testData.sub))

	due := s.GetNow().Add(-time.Hour)
	inv := s.failedInvoice("inv_nosource", 1, due)

	result, err := s.service.Run(s.GetContext())
	s.NoError(err)
	s.Equal(1, result.RetryErrors)
	s.Zero(result.Retried)

	// Nothing to charge with, so the attempt is preserved for when a
	// payment source shows up.
	updated, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Equal(1, updated.AttemptCount)
}

func (s *DunningServiceSuite) TestRunSuspendsExhaustedInvoices() {
	s.failedInvoice("inv_exhausted", types.MaxInvoiceAttempts, time.Time{})

	result, err := s.service.Run(s.GetContext())
	s.NoError(err)
	s.Equal(1, result.TotalSuspended)
	s.Equal(1, result.Suspended)

	sub, err := s.GetStores().SubRepo.Get(s.GetContext(), s.testData.sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusPastDue, sub.SubscriptionStatus)
}

func (s *DunningServiceSuite) TestRunMixedAttemptCounts() {
	due := s.GetNow().Add(-time.Hour)
	retryable := []*invoice.Invoice{
		s.failedInvoice("inv_first", 0, due),
		s.failedInvoice("inv_second", 1, due),
		s.failedInvoice("inv_third", 2, due),
	}
	s.failedInvoice("inv_done_a", types.MaxInvoiceAttempts, time.Time{})

	ctx := s.GetContext()
	subB := &subscription.Subscription{
		ID:                 "sub_b",
		WorkspaceID:        "ws_other",
		UserID:             types.DefaultUserID,
		PlanID:             s.testData.plan.ID,
		SubscriptionStatus: types.SubscriptionStatusActive,
		CurrentPeriodStart: s.GetNow().AddDate(0, -1, 0),
		CurrentPeriodEnd:   s.GetNow(),
		Metadata:           types.Metadata{},
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().SubRepo.Create(ctx, subB))
	doneB := s.failedInvoice("inv_done_b", types.MaxInvoiceAttempts, time.Time{})
	doneB.SubscriptionID = subB.ID
	s.NoError(s.GetStores().InvoiceRepo.Update(ctx, doneB))

	result, err := s.service.Run(ctx)
	s.NoError(err)
	s.Equal(3, result.Retried)
	s.Zero(result.RetryErrors)
	s.Equal(2, result.Suspended)
	s.Equal(3, result.TotalFailed)
	s.Equal(2, result.TotalSuspended)

	for _, before := range retryable {
		after, err := s.GetStores().InvoiceRepo.Get(ctx, before.ID)
		s.NoError(err)
		s.Equal(before.AttemptCount+1, after.AttemptCount)
	}

	// inv_third spent its last attempt this run; it is not suspended
	// until the gateway reports the outcome of that final charge.
	sub, err := s.GetStores().SubRepo.Get(ctx, subB.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusPastDue, sub.SubscriptionStatus)
}

func (s *DunningServiceSuite) TestRunSuspensionIsIdempotent() {
	s.failedInvoice("inv_exhausted", types.MaxInvoiceAttempts, time.Time{})
	s.testData.sub.SubscriptionStatus = types.SubscriptionStatusPastDue
	s.NoError(s.GetStores().SubRepo.Update(s.GetContext(), s.testData.sub))

	result, err := s.service.Run(s.GetContext())
	s.NoError(err)
	s.Equal(1, result.TotalSuspended)
	s.Zero(result.Suspended)
}

func (s *DunningServiceSuite) TestRunProcessesOldestFirst() {
	due := s.GetNow().Add(-time.Hour)
	old := s.failedInvoice("inv_old", 1, due)
	old.CreatedAt = s.GetNow().AddDate(0, 0, -10)
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), old))
	s.failedInvoice("inv_new", 1, due)

	result, err := s.service.Run(s.GetContext())
	s.NoError(err)
	s.Equal(2, result.Retried)

	s.Len(s.GetGateway().CreatedTransactions, 2)
	s.Equal(gateway.RetryReference(old.ID, 2), s.GetGateway().CreatedTransactions[0].Reference)
}

func (s *DunningServiceSuite) TestRetryInvoiceManual() {
	due := s.GetNow().Add(24 * time.Hour)
	inv := s.failedInvoice("inv_manual", 1, due)

	updated, err := s.service.RetryInvoice(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Equal(2, updated.AttemptCount)
	s.Len(s.GetGateway().CreatedTransactions, 1)
}

func (s *DunningServiceSuite) TestRetryInvoiceRejectsNonFailed() {
	inv := &invoice.Invoice{
		ID:             "inv_pending",
		SubscriptionID: s.testData.sub.ID,
		WorkspaceID:    types.DefaultWorkspaceID,
		AmountInCents:  15000,
		InvoiceStatus:  types.InvoiceStatusPending,
		Reference:      "REF-pending",
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), inv))

	_, err := s.service.RetryInvoice(s.GetContext(), inv.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *DunningServiceSuite) TestRetryInvoiceRejectsExhausted() {
	inv := s.failedInvoice("inv_spent", types.MaxInvoiceAttempts, time.Time{})

	_, err := s.service.RetryInvoice(s.GetContext(), inv.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
	s.Empty(s.GetGateway().CreatedTransactions)
}

func (s *DunningServiceSuite) TestRetryInvoiceUnusableSource() {
	s.testData.source.SourceStatus = types.PaymentSourceStatusVoided
	s.NoError(s.GetStores().PaymentSourceRepo.Update(s.GetContext(), s.testData.source))

	inv := s.failedInvoice("inv_voided_src", 1, s.GetNow().Add(-time.Hour))

	_, err := s.service.RetryInvoice(s.GetContext(), inv.ID)
	s.Error(err)
	s.True(ierr.IsValidation(err))
	s.Empty(s.GetGateway().CreatedTransactions)
}
