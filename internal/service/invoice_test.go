package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/recibohq/recibo/internal/domain/invoice"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/testutil"
	"github.com/recibohq/recibo/internal/types"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  InvoiceService
	testData struct {
		invoice *invoice.Invoice
	}
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewInvoiceService(ServiceParams{
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

func (s *InvoiceServiceSuite) setupTestData() {
	s.testData.invoice = &invoice.Invoice{
		ID:             "inv_test",
		SubscriptionID: "sub_test",
		WorkspaceID:    types.DefaultWorkspaceID,
		AmountInCents:  15000,
		InvoiceStatus:  types.InvoiceStatusPending,
		Reference:      "SUB-ref-1",
		PeriodStart:    s.GetNow(),
		PeriodEnd:      s.GetNow().AddDate(0, 1, 0),
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), s.testData.invoice))
}

func (s *InvoiceServiceSuite) TestCreateDraft() {
	inv, err := s.service.CreateDraft(s.GetContext(), &CreateInvoiceRequest{
		SubscriptionID: "sub_test",
		WorkspaceID:    types.DefaultWorkspaceID,
		AmountInCents:  9900,
		Reference:      "SUB-ref-2",
		PeriodStart:    s.GetNow(),
		PeriodEnd:      s.GetNow().AddDate(0, 1, 0),
	})
	s.NoError(err)
	s.Equal(types.InvoiceStatusPending, inv.InvoiceStatus)
	s.Zero(inv.AttemptCount)
	s.Nil(inv.PaidAt)

	stored, err := s.service.GetByReference(s.GetContext(), "SUB-ref-2")
	s.NoError(err)
	s.Equal(inv.ID, stored.ID)
}

func (s *InvoiceServiceSuite) TestCreateDraftRejectsNegativeAmount() {
	_, err := s.service.CreateDraft(s.GetContext(), &CreateInvoiceRequest{
		SubscriptionID: "sub_test",
		WorkspaceID:    types.DefaultWorkspaceID,
		AmountInCents:  -1,
		Reference:      "SUB-neg",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestMarkPaid() {
	inv, err := s.service.MarkPaid(s.GetContext(), s.testData.invoice.ID, "txn_ext_9")
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, inv.InvoiceStatus)
	s.NotNil(inv.PaidAt)
	s.Nil(inv.NextRetryAt)
	s.NotNil(inv.ExternalTransactionID)
	s.Equal("txn_ext_9", *inv.ExternalTransactionID)
}

func (s *InvoiceServiceSuite) TestMarkPaidTwiceRejected() {
	_, err := s.service.MarkPaid(s.GetContext(), s.testData.invoice.ID, "txn_ext_9")
	s.NoError(err)

	_, err = s.service.MarkPaid(s.GetContext(), s.testData.invoice.ID, "txn_ext_10")
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestMarkFailedSchedulesRetry() {
	before := time.Now().UTC()
	inv, err := s.service.MarkFailed(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusFailed, inv.InvoiceStatus)
	s.Equal(1, inv.AttemptCount)
	s.NotNil(inv.NextRetryAt)

	// First failure schedules the retry two days out.
	expected := before.AddDate(0, 0, 2)
	s.WithinDuration(expected, *inv.NextRetryAt, time.Minute)
}

func (s *InvoiceServiceSuite) TestMarkFailedExhaustionClearsRetry() {
	var inv *invoice.Invoice
	var err error
	for i := 0; i < types.MaxInvoiceAttempts; i++ {
		inv, err = s.service.MarkFailed(s.GetContext(), s.testData.invoice.ID)
		s.NoError(err)
	}

	s.Equal(types.MaxInvoiceAttempts, inv.AttemptCount)
	s.Nil(inv.NextRetryAt)
	s.True(inv.IsExhausted())

	// The counter never leaves the 0..3 range.
	_, err = s.service.MarkFailed(s.GetContext(), s.testData.invoice.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	inv, err = s.GetStores().InvoiceRepo.Get(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.Equal(types.MaxInvoiceAttempts, inv.AttemptCount)
}

func (s *InvoiceServiceSuite) TestFailedInvoiceCanStillBePaid() {
	_, err := s.service.MarkFailed(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)

	inv, err := s.service.MarkPaid(s.GetContext(), s.testData.invoice.ID, "txn_ext_11")
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, inv.InvoiceStatus)
	s.Nil(inv.NextRetryAt)
}

func (s *InvoiceServiceSuite) TestMarkRefunded() {
	inv, err := s.service.MarkRefunded(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusRefunded, inv.InvoiceStatus)

	_, err = s.service.MarkPaid(s.GetContext(), s.testData.invoice.ID, "txn_ext_12")
	s.Error(err)
}

func (s *InvoiceServiceSuite) TestListByWorkspace() {
	invoices, err := s.service.ListByWorkspace(s.GetContext(), types.DefaultWorkspaceID)
	s.NoError(err)
	s.Len(invoices, 1)

	invoices, err = s.service.ListByWorkspace(s.GetContext(), "ws_other")
	s.NoError(err)
	s.Empty(invoices)
}
