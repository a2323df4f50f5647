package service

import (
	"testing"

	"github.com/stretchr/testify/suite"

	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/testutil"
	"github.com/recibohq/recibo/internal/types"
)

type PlanServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PlanService
}

func TestPlanService(t *testing.T) {
	suite.Run(t, new(PlanServiceSuite))
}

func (s *PlanServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPlanService(ServiceParams{
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
}

func (s *PlanServiceSuite) TestCreatePlan() {
	p, err := s.service.Create(s.GetContext(), &CreatePlanRequest{
		Name:          "Pro",
		Description:   "Pro tier",
		AmountInCents: 45000,
		BillingPeriod: types.BillingPeriodMonthly,
		SortOrder:     2,
	})
	s.NoError(err)
	s.NotEmpty(p.ID)
	s.Equal("Pro", p.Name)
	s.Equal(int64(45000), p.AmountInCents)
	s.Equal(s.GetConfig().Gateway.Currency, p.Currency)
	s.True(p.IsActive)

	got, err := s.service.Get(s.GetContext(), p.ID)
	s.NoError(err)
	s.Equal(p.Name, got.Name)
}

func (s *PlanServiceSuite) TestCreatePlanRejectsMissingName() {
	_, err := s.service.Create(s.GetContext(), &CreatePlanRequest{
		AmountInCents: 1000,
		BillingPeriod: types.BillingPeriodMonthly,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PlanServiceSuite) TestCreatePlanRejectsUnknownBillingPeriod() {
	_, err := s.service.Create(s.GetContext(), &CreatePlanRequest{
		Name:          "Weird",
		AmountInCents: 1000,
		BillingPeriod: types.BillingPeriod("weekly"),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PlanServiceSuite) TestCreatePlanRejectsNegativeAmount() {
	_, err := s.service.Create(s.GetContext(), &CreatePlanRequest{
		Name:          "Negative",
		AmountInCents: -1,
		BillingPeriod: types.BillingPeriodMonthly,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PlanServiceSuite) TestListReturnsPlansSorted() {
	for _, req := range []*CreatePlanRequest{
		{Name: "Enterprise", AmountInCents: 90000, BillingPeriod: types.BillingPeriodMonthly, SortOrder: 3},
		{Name: "Basic", AmountInCents: 15000, BillingPeriod: types.BillingPeriodMonthly, SortOrder: 1},
		{Name: "Pro", AmountInCents: 45000, BillingPeriod: types.BillingPeriodMonthly, SortOrder: 2},
	} {
		_, err := s.service.Create(s.GetContext(), req)
		s.NoError(err)
	}

	plans, err := s.service.List(s.GetContext())
	s.NoError(err)
	s.Len(plans, 3)
	s.Equal("Basic", plans[0].Name)
	s.Equal("Pro", plans[1].Name)
	s.Equal("Enterprise", plans[2].Name)
}
