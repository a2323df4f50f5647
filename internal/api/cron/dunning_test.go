package cron

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/recibohq/recibo/internal/config"
	"github.com/recibohq/recibo/internal/service"
	"github.com/recibohq/recibo/internal/testutil"
)

type DunningHandlerSuite struct {
	testutil.BaseServiceTestSuite
	router *gin.Engine
	cfg    *config.Configuration
}

func TestDunningHandler(t *testing.T) {
	suite.Run(t, new(DunningHandlerSuite))
}

func (s *DunningHandlerSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	gin.SetMode(gin.TestMode)

	s.cfg = s.GetConfig()

	dunning := service.NewDunningService(service.ServiceParams{
		Logger:            s.GetLogger(),
		Config:            s.cfg,
		DB:                testutil.NoopTxRunner{},
		PlanRepo:          s.GetStores().PlanRepo,
		SubRepo:           s.GetStores().SubRepo,
		InvoiceRepo:       s.GetStores().InvoiceRepo,
		TransactionRepo:   s.GetStores().TransactionRepo,
		PaymentSourceRepo: s.GetStores().PaymentSourceRepo,
		Gateway:           s.GetGateway(),
	})

	handler := NewDunningHandler(s.cfg, dunning, s.GetLogger())
	s.router = gin.New()
	s.router.GET("/v1/cron/dunning", handler.RunDunning)
}

func (s *DunningHandlerSuite) get(authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/cron/dunning", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *DunningHandlerSuite) TestRunWithValidSecret() {
	w := s.get("Bearer " + s.cfg.Billing.CronSecret)
	s.Equal(http.StatusOK, w.Code)

	var result service.DunningRunResult
	s.NoError(json.Unmarshal(w.Body.Bytes(), &result))
	s.True(result.Success)
	s.Zero(result.TotalFailed)
}

func (s *DunningHandlerSuite) TestMissingAuthorization() {
	w := s.get("")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *DunningHandlerSuite) TestWrongSecret() {
	w := s.get("Bearer not-the-secret")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *DunningHandlerSuite) TestSecretCheckedBeforeBillingFlag() {
	s.cfg.Billing.Enabled = false

	w := s.get("Bearer not-the-secret")
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.get("Bearer " + s.cfg.Billing.CronSecret)
	s.Equal(http.StatusForbidden, w.Code)
}
