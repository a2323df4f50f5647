package service

import (
	"context"
	"time"

	"github.com/recibohq/recibo/internal/domain/invoice"
	"github.com/recibohq/recibo/internal/domain/proration"
	"github.com/recibohq/recibo/internal/domain/subscription"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/gateway"
	"github.com/recibohq/recibo/internal/types"
	"github.com/recibohq/recibo/internal/validator"
)

// SubscriptionService manages the subscription lifecycle: checkout,
// activation, period extension, mid-cycle plan changes, cancellation and
// suspension.
type SubscriptionService interface {
	Subscribe(ctx context.Context, req *SubscribeRequest) (*CheckoutResponse, error)
	Get(ctx context.Context, id string) (*subscription.Subscription, error)
	GetByWorkspace(ctx context.Context, workspaceID string) (*subscription.Subscription, error)
	Activate(ctx context.Context, id string) (*subscription.Subscription, error)
	ExtendPeriod(ctx context.Context, id string) (*subscription.Subscription, error)
	ChangePlan(ctx context.Context, id string, req *ChangePlanRequest) (*ChangePlanResponse, error)
	Cancel(ctx context.Context, id string, atPeriodEnd bool) (*subscription.Subscription, error)
	Reactivate(ctx context.Context, id string) (*subscription.Subscription, error)
	Suspend(ctx context.Context, id string) (*subscription.Subscription, error)
}

// SubscribeRequest starts a hosted checkout for a plan.
type SubscribeRequest struct {
	PlanID        string `json:"plan_id" validate:"required"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	CustomerName  string `json:"customer_name"`
}

// CheckoutResponse carries everything the frontend needs to render the
// gateway's hosted checkout.
type CheckoutResponse struct {
	Subscription *subscription.Subscription `json:"subscription"`
	InvoiceID    string                     `json:"invoice_id"`
	Reference    string                     `json:"reference"`
	CheckoutData map[string]string          `json:"checkout_data"`
}

type ChangePlanRequest struct {
	NewPlanID string `json:"new_plan_id" validate:"required"`
}

// ChangePlanResponse returns the updated subscription plus the proration
// breakdown that produced it.
type ChangePlanResponse struct {
	Subscription *subscription.Subscription `json:"subscription"`
	Proration    proration.Result           `json:"proration"`
}

type subscriptionService struct {
	ServiceParams
	invoiceService InvoiceService
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{
		ServiceParams:  params,
		invoiceService: NewInvoiceService(params),
	}
}

// Subscribe creates an incomplete subscription and a pending invoice
// carrying the checkout reference. The webhook flips both once the
// gateway reports an approved transaction for that reference.
func (s *subscriptionService) Subscribe(ctx context.Context, req *SubscribeRequest) (*CheckoutResponse, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}

	p, err := s.PlanRepo.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	if !p.IsActive {
		return nil, ierr.NewError("plan is not available").
			WithHintf("plan %s is not open for subscription", p.ID).
			Mark(ierr.ErrValidation)
	}

	workspaceID := types.GetWorkspaceID(ctx)
	if existing, err := s.SubRepo.GetActiveByWorkspace(ctx, workspaceID); err == nil && existing != nil {
		return nil, ierr.NewError("workspace already subscribed").
			WithHintf("workspace %s already has an active subscription", workspaceID).
			Mark(ierr.ErrAlreadyExists)
	}

	now := time.Now().UTC()
	reference, checkoutData := gateway.BuildCheckoutData(s.Config, gateway.CheckoutParams{
		AmountInCents: p.AmountInCents,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
	})

	sub := &subscription.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		WorkspaceID:        workspaceID,
		UserID:             types.GetUserID(ctx),
		PlanID:             p.ID,
		SubscriptionStatus: types.SubscriptionStatusIncomplete,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   p.PeriodEnd(now),
		Metadata:           types.Metadata{},
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	var inv *invoice.Invoice
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.SubRepo.Create(ctx, sub); err != nil {
			return err
		}

		inv, err = s.invoiceService.CreateDraft(ctx, &CreateInvoiceRequest{
			SubscriptionID: sub.ID,
			WorkspaceID:    sub.WorkspaceID,
			AmountInCents:  p.AmountInCents,
			Reference:      reference,
			PeriodStart:    sub.CurrentPeriodStart,
			PeriodEnd:      sub.CurrentPeriodEnd,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("started checkout",
		"subscription_id", sub.ID,
		"plan_id", p.ID,
		"reference", reference,
	)

	return &CheckoutResponse{
		Subscription: sub,
		InvoiceID:    inv.ID,
		Reference:    reference,
		CheckoutData: checkoutData,
	}, nil
}

func (s *subscriptionService) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	return s.SubRepo.Get(ctx, id)
}

func (s *subscriptionService) GetByWorkspace(ctx context.Context, workspaceID string) (*subscription.Subscription, error) {
	return s.SubRepo.GetByWorkspace(ctx, workspaceID)
}

// Activate marks a subscription active after a confirmed payment.
func (s *subscriptionService) Activate(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if sub.SubscriptionStatus == types.SubscriptionStatusCanceled {
		return nil, ierr.NewError("subscription is canceled").
			WithHintf("canceled subscription %s cannot be activated by payment", id).
			Mark(ierr.ErrInvalidOperation)
	}

	sub.SubscriptionStatus = types.SubscriptionStatusActive
	sub.UpdatedAt = time.Now().UTC()
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription activated", "subscription_id", sub.ID)
	return sub, nil
}

// ExtendPeriod rolls the billing window forward by one plan period:
// the new period starts where the old one ended.
func (s *subscriptionService) ExtendPeriod(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	sub.CurrentPeriodStart = sub.CurrentPeriodEnd
	sub.CurrentPeriodEnd = p.PeriodEnd(sub.CurrentPeriodEnd)
	sub.UpdatedAt = time.Now().UTC()

	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription period extended",
		"subscription_id", sub.ID,
		"current_period_end", sub.CurrentPeriodEnd,
	)
	return sub, nil
}

// ChangePlan applies a mid-cycle plan change with proration. Upgrades
// are charge-then-commit: the prorated difference is charged
// synchronously and the plan only changes once the gateway approves.
// Downgrades bank the unused credit in subscription metadata.
func (s *subscriptionService) ChangePlan(ctx context.Context, id string, req *ChangePlanRequest) (*ChangePlanResponse, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}

	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if sub.SubscriptionStatus != types.SubscriptionStatusActive {
		return nil, ierr.NewError("subscription is not active").
			WithHintf("plan changes require an active subscription, got %s", sub.SubscriptionStatus).
			Mark(ierr.ErrInvalidOperation)
	}

	if req.NewPlanID == sub.PlanID {
		return nil, ierr.NewError("already on requested plan").
			WithHint("new_plan_id must differ from the current plan").
			Mark(ierr.ErrValidation)
	}

	currentPlan, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}
	newPlan, err := s.PlanRepo.Get(ctx, req.NewPlanID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result := proration.Calculate(proration.Input{
		CurrentAmountInCents: currentPlan.AmountInCents,
		NewAmountInCents:     newPlan.AmountInCents,
		PeriodEnd:            sub.CurrentPeriodEnd,
		Now:                  now,
	})

	if result.IsUpgrade && result.ChargeNowInCents > 0 {
		if err := s.chargeUpgrade(ctx, sub, result.ChargeNowInCents, now); err != nil {
			return nil, err
		}
	}

	sub.PlanID = newPlan.ID
	if result.IsDowngrade {
		if sub.Metadata == nil {
			sub.Metadata = types.Metadata{}
		}
		sub.Metadata.SetInt64(types.MetadataKeyCreditCents, result.CreditInCents)
	}
	sub.UpdatedAt = now

	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("plan changed",
		"subscription_id", sub.ID,
		"from_plan_id", currentPlan.ID,
		"to_plan_id", newPlan.ID,
		"credit_cents", result.CreditInCents,
		"charge_now_cents", result.ChargeNowInCents,
		"is_upgrade", result.IsUpgrade,
	)

	return &ChangePlanResponse{Subscription: sub, Proration: result}, nil
}

// chargeUpgrade collects the prorated difference synchronously. On a
// non-approved result the caller never commits the plan change; the
// audit invoice stays pending.
func (s *subscriptionService) chargeUpgrade(ctx context.Context, sub *subscription.Subscription, amountInCents int64, now time.Time) error {
	if sub.PaymentSourceID == nil {
		return ierr.NewError("payment source not available").
			WithHint("an available payment source is required for upgrades").
			Mark(ierr.ErrValidation)
	}

	ps, err := s.PaymentSourceRepo.Get(ctx, *sub.PaymentSourceID)
	if err != nil {
		return err
	}
	if !ps.Usable() {
		return ierr.NewError("payment source not available").
			WithHintf("payment source %s is %s", ps.ID, ps.SourceStatus).
			Mark(ierr.ErrValidation)
	}

	reference := gateway.NewInvoiceReference()
	inv, err := s.invoiceService.CreateDraft(ctx, &CreateInvoiceRequest{
		SubscriptionID: sub.ID,
		WorkspaceID:    sub.WorkspaceID,
		AmountInCents:  amountInCents,
		Reference:      reference,
		PeriodStart:    now,
		PeriodEnd:      sub.CurrentPeriodEnd,
	})
	if err != nil {
		return err
	}

	txn, err := s.Gateway.CreateTransaction(ctx, &gateway.CreateTransactionRequest{
		AmountInCents:   amountInCents,
		Currency:        s.Config.Gateway.Currency,
		CustomerEmail:   ps.CustomerEmail,
		PaymentMethod:   gateway.PaymentMethod{Type: string(ps.Type), Installments: 1},
		PaymentSourceID: ps.ExternalID,
		Reference:       reference,
		RedirectURL:     s.Config.Gateway.RedirectURL,
		Recurrent:       ps.Type == types.PaymentSourceTypeCard,
	})
	if err != nil {
		return err
	}

	if err := s.recordTransaction(ctx, inv, txn, ps.Type); err != nil {
		return err
	}

	if !types.GatewayStatus(txn.Status).IsSuccessful() {
		return ierr.NewError("upgrade payment was not approved").
			WithHintf("gateway returned status %s", txn.Status).
			WithReportableDetails(map[string]any{
				"transaction_status": txn.Status,
				"invoice_id":         inv.ID,
			}).
			Mark(ierr.ErrPaymentDeclined)
	}

	if _, err := s.invoiceService.MarkPaid(ctx, inv.ID, txn.ID); err != nil {
		return err
	}
	return nil
}

func (s *subscriptionService) recordTransaction(ctx context.Context, inv *invoice.Invoice, txn *gateway.Transaction, psType types.PaymentSourceType) error {
	rec := &transactionRecord{
		InvoiceID:         inv.ID,
		WorkspaceID:       inv.WorkspaceID,
		ExternalID:        txn.ID,
		AmountInCents:     txn.AmountInCents,
		Status:            types.GatewayStatus(txn.Status),
		PaymentMethodType: string(psType),
		Reference:         txn.Reference,
		StatusMessage:     txn.StatusMessage,
	}
	return recordGatewayTransaction(ctx, s.ServiceParams, rec)
}

// Cancel ends a subscription, either immediately or at the period
// boundary.
func (s *subscriptionService) Cancel(ctx context.Context, id string, atPeriodEnd bool) (*subscription.Subscription, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if sub.SubscriptionStatus == types.SubscriptionStatusCanceled {
		return nil, ierr.NewError("subscription already canceled").
			WithHintf("subscription %s is already canceled", id).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	if atPeriodEnd {
		sub.CancelAtPeriodEnd = true
	} else {
		sub.SubscriptionStatus = types.SubscriptionStatusCanceled
		sub.CanceledAt = &now
	}
	sub.UpdatedAt = now

	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription canceled",
		"subscription_id", sub.ID,
		"at_period_end", atPeriodEnd,
	)
	return sub, nil
}

// Reactivate undoes a pending period-end cancellation while the current
// period is still running.
func (s *subscriptionService) Reactivate(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if sub.SubscriptionStatus == types.SubscriptionStatusCanceled {
		return nil, ierr.NewError("subscription already canceled").
			WithHint("a fully canceled subscription requires a new checkout").
			Mark(ierr.ErrInvalidOperation)
	}

	if !sub.CancelAtPeriodEnd {
		return nil, ierr.NewError("subscription is not scheduled for cancellation").
			WithHintf("subscription %s has no pending cancellation", id).
			Mark(ierr.ErrInvalidOperation)
	}

	sub.CancelAtPeriodEnd = false
	sub.UpdatedAt = time.Now().UTC()

	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription reactivated", "subscription_id", sub.ID)
	return sub, nil
}

// Suspend moves a subscription to past_due after dunning exhaustion.
// This is the only path into past_due.
func (s *subscriptionService) Suspend(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	sub.SubscriptionStatus = types.SubscriptionStatusPastDue
	sub.UpdatedAt = time.Now().UTC()

	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Warnw("subscription suspended", "subscription_id", sub.ID)
	return sub, nil
}
