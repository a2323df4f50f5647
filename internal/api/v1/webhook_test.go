package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/recibohq/recibo/internal/config"
	"github.com/recibohq/recibo/internal/domain/invoice"
	"github.com/recibohq/recibo/internal/domain/plan"
	"github.com/recibohq/recibo/internal/domain/subscription"
	"github.com/recibohq/recibo/internal/service"
	"github.com/recibohq/recibo/internal/testutil"
	"github.com/recibohq/recibo/internal/types"
	"github.com/recibohq/recibo/internal/webhook"
)

type WebhookHandlerSuite struct {
	testutil.BaseServiceTestSuite
	handler *WebhookHandler
	router  *gin.Engine
	cfg     *config.Configuration
}

func TestWebhookHandler(t *testing.T) {
	suite.Run(t, new(WebhookHandlerSuite))
}

func (s *WebhookHandlerSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	gin.SetMode(gin.TestMode)

	s.cfg = s.GetConfig()

	params := service.ServiceParams{
		Logger:            s.GetLogger(),
		Config:            s.cfg,
		DB:                testutil.NoopTxRunner{},
		PlanRepo:          s.GetStores().PlanRepo,
		SubRepo:           s.GetStores().SubRepo,
		InvoiceRepo:       s.GetStores().InvoiceRepo,
		TransactionRepo:   s.GetStores().TransactionRepo,
		PaymentSourceRepo: s.GetStores().PaymentSourceRepo,
		Gateway:           s.GetGateway(),
	}
	events := service.NewPaymentEventService(params)
	dispatcher := webhook.NewDispatcher(events, events, s.GetLogger())

	s.handler = NewWebhookHandler(s.cfg, dispatcher, s.GetLogger())
	s.router = gin.New()
	s.router.POST("/v1/webhooks/gateway", s.handler.HandleGatewayEvent)

	s.seedBillingState()
}

func (s *WebhookHandlerSuite) seedBillingState() {
	ctx := s.GetContext()

	p := &plan.Plan{
		ID:            "plan_basic",
		Name:          "Basic",
		AmountInCents: 10000,
		Currency:      "COP",
		BillingPeriod: types.BillingPeriodMonthly,
		IsActive:      true,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().PlanRepo.Create(ctx, p))

	sub := &subscription.Subscription{
		ID:                 "sub_1",
		WorkspaceID:        types.DefaultWorkspaceID,
		UserID:             types.DefaultUserID,
		PlanID:             p.ID,
		SubscriptionStatus: types.SubscriptionStatusIncomplete,
		CurrentPeriodStart: s.GetNow(),
		CurrentPeriodEnd:   s.GetNow().AddDate(0, 1, 0),
		Metadata:           types.Metadata{},
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().SubRepo.Create(ctx, sub))

	inv := &invoice.Invoice{
		ID:             "inv_1",
		SubscriptionID: sub.ID,
		WorkspaceID:    types.DefaultWorkspaceID,
		AmountInCents:  10000,
		InvoiceStatus:  types.InvoiceStatusPending,
		Reference:      "SUB-1",
		PeriodStart:    sub.CurrentPeriodStart,
		PeriodEnd:      sub.CurrentPeriodEnd,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().InvoiceRepo.Create(ctx, inv))
}

func (s *WebhookHandlerSuite) eventBody() []byte {
	body, err := json.Marshal(map[string]any{
		"event": "transaction.updated",
		"data": map[string]any{
			"transaction": map[string]any{
				"id":              "txn_1",
				"reference":       "SUB-1",
				"status":          "APPROVED",
				"amount_in_cents": 10000,
			},
		},
	})
	s.NoError(err)
	return body
}

func (s *WebhookHandlerSuite) post(body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/gateway", bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *WebhookHandlerSuite) TestValidSignatureSettlesInvoice() {
	body := s.eventBody()
	sig := webhook.Sign(body, s.cfg.Billing.WebhookSecret)

	w := s.post(body, map[string]string{"X-Event-Checksum": sig})
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"received":true}`, w.Body.String())

	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), "inv_1")
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, inv.InvoiceStatus)
	s.NotNil(inv.PaidAt)

	sub, err := s.GetStores().SubRepo.Get(s.GetContext(), "sub_1")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, sub.SubscriptionStatus)
}

func (s *WebhookHandlerSuite) TestSignatureHeaderAliases() {
	body := s.eventBody()
	sig := webhook.Sign(body, s.cfg.Billing.WebhookSecret)

	for _, header := range webhook.SignatureHeaderAliases {
		w := s.post(body, map[string]string{header: sig})
		s.Equal(http.StatusOK, w.Code, "header %s", header)
	}
}

func (s *WebhookHandlerSuite) TestMissingSignature() {
	w := s.post(s.eventBody(), nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.JSONEq(`{"error":"Missing webhook signature"}`, w.Body.String())

	// No side effects before authentication.
	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), "inv_1")
	s.NoError(err)
	s.Equal(types.InvoiceStatusPending, inv.InvoiceStatus)
}

func (s *WebhookHandlerSuite) TestInvalidSignature() {
	body := s.eventBody()
	sig := webhook.Sign(body, "some-other-secret")

	w := s.post(body, map[string]string{"X-Event-Checksum": sig})
	s.Equal(http.StatusUnauthorized, w.Code)
	s.JSONEq(`{"error":"Invalid webhook signature"}`, w.Body.String())
}

func (s *WebhookHandlerSuite) TestTamperedBodyRejected() {
	body := s.eventBody()
	sig := webhook.Sign(body, s.cfg.Billing.WebhookSecret)
	tampered := bytes.Replace(body, []byte("10000"), []byte("1"), 1)

	w := s.post(tampered, map[string]string{"X-Event-Checksum": sig})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *WebhookHandlerSuite) TestSecretUnsetFailsClosed() {
	s.cfg.Billing.WebhookSecret = ""

	body := s.eventBody()
	w := s.post(body, map[string]string{"X-Event-Checksum": webhook.Sign(body, "")})
	s.Equal(http.StatusInternalServerError, w.Code)
	s.JSONEq(`{"error":"Server configuration error"}`, w.Body.String())
}

func (s *WebhookHandlerSuite) TestBillingDisabled() {
	s.cfg.Billing.Enabled = false

	w := s.post(s.eventBody(), nil)
	s.Equal(http.StatusForbidden, w.Code)
	s.JSONEq(`{"error":"Billing is not enabled"}`, w.Body.String())
}

func (s *WebhookHandlerSuite) TestMalformedBodyStillAcknowledged() {
	// A correctly signed body that is not valid JSON can never apply,
	// so the sender is acknowledged instead of kept redelivering it.
	body := []byte("not json at all")
	sig := webhook.Sign(body, s.cfg.Billing.WebhookSecret)

	w := s.post(body, map[string]string{"X-Event-Checksum": sig})
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"received":true}`, w.Body.String())

	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), "inv_1")
	s.NoError(err)
	s.Equal(types.InvoiceStatusPending, inv.InvoiceStatus)
}

func (s *WebhookHandlerSuite) TestUnknownEventTypeAcknowledged() {
	body, err := json.Marshal(map[string]any{"event": "merchant.updated"})
	s.NoError(err)
	sig := webhook.Sign(body, s.cfg.Billing.WebhookSecret)

	w := s.post(body, map[string]string{"X-Event-Checksum": sig})
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"received":true}`, w.Body.String())
}

func (s *WebhookHandlerSuite) TestHandlerErrorStillAcknowledged() {
	// An event whose processing cannot settle anything (no matching
	// invoice) is still acknowledged once authenticated.
	body, err := json.Marshal(map[string]any{
		"event": "transaction.updated",
		"data": map[string]any{
			"transaction": map[string]any{
				"id":        "txn_unknown",
				"reference": "NOT-OURS",
				"status":    "APPROVED",
			},
		},
	})
	s.NoError(err)
	sig := webhook.Sign(body, s.cfg.Billing.WebhookSecret)

	w := s.post(body, map[string]string{"X-Event-Checksum": sig})
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"received":true}`, w.Body.String())
}
