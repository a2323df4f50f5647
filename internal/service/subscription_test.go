package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/recibohq/recibo/internal/domain/paymentsource"
	"github.com/recibohq/recibo/internal/domain/plan"
	"github.com/recibohq/recibo/internal/domain/subscription"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/testutil"
	"github.com/recibohq/recibo/internal/types"
)

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  SubscriptionService
	testData struct {
		basicPlan   *plan.Plan
		premiumPlan *plan.Plan
		sub         *subscription.Subscription
		source      *paymentsource.PaymentSource
	}
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewSubscriptionService(ServiceParams{
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

func (s *SubscriptionServiceSuite) setupTestData() {
	ctx := s.GetContext()

	s.testData.basicPlan = &plan.Plan{
		ID:            "plan_basic",
		Name:          "Basic",
		AmountInCents: 15000,
		Currency:      "COP",
		BillingPeriod: types.BillingPeriodMonthly,
		IsActive:      true,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().PlanRepo.Create(ctx, s.testData.basicPlan))

	s.testData.premiumPlan = &plan.Plan{
		ID:            "plan_premium",
		Name:          "Premium",
		AmountInCents: 45000,
		Currency:      "COP",
		BillingPeriod: types.BillingPeriodMonthly,
		IsActive:      true,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().PlanRepo.Create(ctx, s.testData.premiumPlan))

	s.testData.source = &paymentsource.PaymentSource{
		ID:            "psrc_test",
		WorkspaceID:   types.DefaultWorkspaceID,
		UserID:        types.DefaultUserID,
		ExternalID:    "42",
		Type:          types.PaymentSourceTypeCard,
		SourceStatus:  types.PaymentSourceStatusAvailable,
		LastFour:      "4242",
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
		PlanID:             s.testData.basicPlan.ID,
		PaymentSourceID:    &psID,
		SubscriptionStatus: types.SubscriptionStatusActive,
		CurrentPeriodStart: s.GetNow(),
		CurrentPeriodEnd:   s.GetNow().AddDate(0, 1, 0),
		Metadata:           types.Metadata{},
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().SubRepo.Create(ctx, s.testData.sub))
}

func (s *SubscriptionServiceSuite) TestSubscribe() {
	// The seeded workspace already holds an active subscription, so use
	// a fresh workspace context.
	ctx := types.SetWorkspaceID(s.GetContext(), "ws_new")

	resp, err := s.service.Subscribe(ctx, &SubscribeRequest{
		PlanID:        s.testData.basicPlan.ID,
		CustomerEmail: "new@example.com",
		CustomerName:  "New Customer",
	})
	s.NoError(err)
	s.Equal(types.SubscriptionStatusIncomplete, resp.Subscription.SubscriptionStatus)
	s.NotEmpty(resp.Reference)
	s.NotEmpty(resp.InvoiceID)

	s.Equal("pub_test_key", resp.CheckoutData["public-key"])
	s.Equal("COP", resp.CheckoutData["currency"])
	s.Equal("15000", resp.CheckoutData["amount-in-cents"])
	s.NotEmpty(resp.CheckoutData["signature:integrity"])

	inv, err := s.GetStores().InvoiceRepo.Get(ctx, resp.InvoiceID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPending, inv.InvoiceStatus)
	s.Equal(resp.Reference, inv.Reference)
	s.Equal(int64(15000), inv.AmountInCents)
}

func (s *SubscriptionServiceSuite) TestSubscribeRejectsInactivePlan() {
	s.testData.basicPlan.IsActive = false
	s.NoError(s.GetStores().PlanRepo.Update(s.GetContext(), s.testData.basicPlan))

	ctx := types.SetWorkspaceID(s.GetContext(), "ws_new")
	_, err := s.service.Subscribe(ctx, &SubscribeRequest{
		PlanID:        s.testData.basicPlan.ID,
		CustomerEmail: "new@example.com",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SubscriptionServiceSuite) TestSubscribeRejectsSecondActiveSubscription() {
	_, err := s.service.Subscribe(s.GetContext(), &SubscribeRequest{
		PlanID:        s.testData.premiumPlan.ID,
		CustomerEmail: "customer@example.com",
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *SubscriptionServiceSuite) TestChangePlanUpgradeApproved() {
	s.GetGateway().NextTransactionStatus = "APPROVED"

	resp, err := s.service.ChangePlan(s.GetContext(), s.testData.sub.ID, &ChangePlanRequest{
		NewPlanID: s.testData.premiumPlan.ID,
	})
	s.NoError(err)
	s.Equal(s.testData.premiumPlan.ID, resp.Subscription.PlanID)
	s.True(resp.Proration.IsUpgrade)
	s.Positive(resp.Proration.ChargeNowInCents)

	// The synchronous charge leaves a paid audit invoice.
	invoices, err := s.GetStores().InvoiceRepo.ListByWorkspace(s.GetContext(), types.DefaultWorkspaceID)
	s.NoError(err)
	s.Len(invoices, 1)
	s.Equal(types.InvoiceStatusPaid, invoices[0].InvoiceStatus)
	s.Equal(resp.Proration.ChargeNowInCents, invoices[0].AmountInCents)

	s.Len(s.GetGateway().CreatedTransactions, 1)
	s.True(s.GetGateway().CreatedTransactions[0].Recurrent)
}

func (s *SubscriptionServiceSuite) TestChangePlanUpgradeDeclined() {
	s.GetGateway().NextTransactionStatus = "DECLINED"

	_, err := s.service.ChangePlan(s.GetContext(), s.testData.sub.ID, &ChangePlanRequest{
		NewPlanID: s.testData.premiumPlan.ID,
	})
	s.Error(err)
	s.True(ierr.IsPaymentDeclined(err))

	// Plan change never committed.
	sub, err := s.GetStores().SubRepo.Get(s.GetContext(), s.testData.sub.ID)
	s.NoError(err)
	s.Equal(s.testData.basicPlan.ID, sub.PlanID)

	// The audit invoice stays pending.
	invoices, err := s.GetStores().InvoiceRepo.ListByWorkspace(s.GetContext(), types.DefaultWorkspaceID)
	s.NoError(err)
	s.Len(invoices, 1)
	s.Equal(types.InvoiceStatusPending, invoices[0].InvoiceStatus)
}

func (s *SubscriptionServiceSuite) TestChangePlanUpgradeWithoutPaymentSource() {
	s.testData.sub.PaymentSourceID = nil
	s.NoError(s.GetStores().SubRepo.Update(s.GetContext(), s.testData.sub))

	_, err := s.service.ChangePlan(s.GetContext(), s.testData.sub.ID, &ChangePlanRequest{
		NewPlanID: s.testData.premiumPlan.ID,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
	s.Empty(s.GetGateway().CreatedTransactions)
}

func (s *SubscriptionServiceSuite) TestChangePlanDowngradeBanksCredit() {
	s.testData.sub.PlanID = s.testData.premiumPlan.ID
	s.NoError(s.GetStores().SubRepo.Update(s.GetContext(), s.testData.sub))

	resp, err := s.service.ChangePlan(s.GetContext(), s.testData.sub.ID, &ChangePlanRequest{
		NewPlanID: s.testData.basicPlan.ID,
	})
	s.NoError(err)
	s.Equal(s.testData.basicPlan.ID, resp.Subscription.PlanID)
	s.True(resp.Proration.IsDowngrade)
	s.Zero(resp.Proration.ChargeNowInCents)

	credit, ok := resp.Subscription.Metadata.GetInt64(types.MetadataKeyCreditCents)
	s.True(ok)
	s.Equal(resp.Proration.CreditInCents, credit)

	// Downgrades never touch the gateway.
	s.Empty(s.GetGateway().CreatedTransactions)
}

func (s *SubscriptionServiceSuite) TestChangePlanSamePlanRejected() {
	_, err := s.service.ChangePlan(s.GetContext(), s.testData.sub.ID, &ChangePlanRequest{
		NewPlanID: s.testData.basicPlan.ID,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SubscriptionServiceSuite) TestChangePlanRequiresActiveSubscription() {
	s.testData.sub.SubscriptionStatus = types.SubscriptionStatusPastDue
	s.NoError(s.GetStores().SubRepo.Update(s.GetContext(), s.testData.sub))

	_, err := s.service.ChangePlan(s.GetContext(), s.testData.sub.ID, &ChangePlanRequest{
		NewPlanID: s.testData.premiumPlan.ID,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestExtendPeriod() {
	oldEnd := s.testData.sub.CurrentPeriodEnd

	sub, err := s.service.ExtendPeriod(s.GetContext(), s.testData.sub.ID)
	s.NoError(err)
	s.True(sub.CurrentPeriodStart.Equal(oldEnd))
	s.True(sub.CurrentPeriodEnd.Equal(oldEnd.AddDate(0, 1, 0)))
}

func (s *SubscriptionServiceSuite) TestCancelImmediate() {
	sub, err := s.service.Cancel(s.GetContext(), s.testData.sub.ID, false)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCanceled, sub.SubscriptionStatus)
	s.NotNil(sub.CanceledAt)
	s.WithinDuration(time.Now().UTC(), *sub.CanceledAt, time.Minute)
}

func (s *SubscriptionServiceSuite) TestCancelAtPeriodEnd() {
	sub, err := s.service.Cancel(s.GetContext(), s.testData.sub.ID, true)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, sub.SubscriptionStatus)
	s.True(sub.CancelAtPeriodEnd)
	s.Nil(sub.CanceledAt)
}

func (s *SubscriptionServiceSuite) TestReactivate() {
	_, err := s.service.Cancel(s.GetContext(), s.testData.sub.ID, true)
	s.NoError(err)

	sub, err := s.service.Reactivate(s.GetContext(), s.testData.sub.ID)
	s.NoError(err)
	s.False(sub.CancelAtPeriodEnd)
	s.Equal(types.SubscriptionStatusActive, sub.SubscriptionStatus)
}

func (s *SubscriptionServiceSuite) TestReactivateWithoutPendingCancellation() {
	_, err := s.service.Reactivate(s.GetContext(), s.testData.sub.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestReactivateCanceledRejected() {
	_, err := s.service.Cancel(s.GetContext(), s.testData.sub.ID, false)
	s.NoError(err)

	_, err = s.service.Reactivate(s.GetContext(), s.testData.sub.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestSuspend() {
	sub, err := s.service.Suspend(s.GetContext(), s.testData.sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusPastDue, sub.SubscriptionStatus)
}
