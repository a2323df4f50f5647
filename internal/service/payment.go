package service

import (
	"context"
	"time"

	"github.com/recibohq/recibo/internal/domain/invoice"
	"github.com/recibohq/recibo/internal/domain/paymentsource"
	"github.com/recibohq/recibo/internal/domain/transaction"
	"github.com/recibohq/recibo/internal/email"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/gateway"
	"github.com/recibohq/recibo/internal/types"
	"github.com/recibohq/recibo/internal/webhook"
)

// PaymentEventService applies gateway webhook events to billing state.
// It implements the dispatcher's processor interfaces. All operations
// are idempotent under redelivery: transactions upsert by external id
// and invoice transitions reject duplicates, which this service absorbs.
type PaymentEventService interface {
	ProcessTransactionEvent(ctx context.Context, payload *webhook.TransactionPayload) error
	ProcessPaymentSourceEvent(ctx context.Context, payload *webhook.PaymentSourcePayload) error
}

type paymentEventService struct {
	ServiceParams
	invoices      InvoiceService
	subscriptions SubscriptionService
	transactions  TransactionService
}

func NewPaymentEventService(params ServiceParams) PaymentEventService {
	return &paymentEventService{
		ServiceParams: params,
		invoices:      NewInvoiceService(params),
		subscriptions: NewSubscriptionService(params),
		transactions:  NewTransactionService(params),
	}
}

// ProcessTransactionEvent records the transaction snapshot and, when the
// gateway status is terminal, settles the linked invoice. A missing
// invoice is not an error: the transaction may be unrelated to this
// system or the invoice may not exist yet.
func (s *paymentEventService) ProcessTransactionEvent(ctx context.Context, payload *webhook.TransactionPayload) error {
	// The row recorded for a previous delivery or a dunning retry, if
	// any. It resolves the invoice and tells the failed path whether
	// this transaction's attempt has already been counted.
	prior, err := s.TransactionRepo.GetByExternalID(ctx, payload.ID)
	if err != nil {
		prior = nil
	}

	inv := s.resolveInvoice(ctx, prior, payload)

	invoiceID := ""
	workspaceID := ""
	if inv != nil {
		invoiceID = inv.ID
		workspaceID = inv.WorkspaceID
	}

	status := types.GatewayStatus(payload.Status)
	if _, err := s.transactions.Upsert(ctx, &transactionRecord{
		InvoiceID:         invoiceID,
		WorkspaceID:       workspaceID,
		ExternalID:        payload.ID,
		AmountInCents:     payload.AmountInCents,
		Status:            status,
		PaymentMethodType: payload.PaymentMethodType,
		Reference:         payload.Reference,
		StatusMessage:     payload.StatusMessage,
		RawPayload:        payload.Raw(),
	}); err != nil {
		return err
	}

	if inv == nil {
		s.Logger.Infow("no invoice found for transaction, skipping settlement",
			"external_transaction_id", payload.ID,
			"reference", payload.Reference,
		)
		return nil
	}

	switch status {
	case types.GatewayStatusApproved:
		return s.settleApproved(ctx, inv, payload)
	case types.GatewayStatusDeclined, types.GatewayStatusError:
		return s.settleFailed(ctx, inv, payload, prior)
	case types.GatewayStatusVoided:
		return s.settleVoided(ctx, inv)
	default:
		// PENDING and other non-terminal statuses carry no settlement.
		s.Logger.Debugw("transaction not yet terminal",
			"external_transaction_id", payload.ID,
			"gateway_status", status,
		)
		return nil
	}
}

// resolveInvoice finds the invoice a transaction settles: first through
// a previously recorded transaction row, then by the gateway reference.
func (s *paymentEventService) resolveInvoice(ctx context.Context, prior *transaction.Transaction, payload *webhook.TransactionPayload) *invoice.Invoice {
	if prior != nil && prior.InvoiceID != "" {
		if inv, err := s.InvoiceRepo.Get(ctx, prior.InvoiceID); err == nil {
			return inv
		}
	}

	if payload.Reference != "" {
		if inv, err := s.InvoiceRepo.GetByReference(ctx, payload.Reference); err == nil {
			return inv
		}
	}

	return nil
}

func (s *paymentEventService) settleApproved(ctx context.Context, inv *invoice.Invoice, payload *webhook.TransactionPayload) error {
	if inv.InvoiceStatus == types.InvoiceStatusPaid {
		s.Logger.Infow("invoice already paid, treating as duplicate delivery",
			"invoice_id", inv.ID,
			"external_transaction_id", payload.ID,
		)
		return nil
	}

	inv, err := s.invoices.MarkPaid(ctx, inv.ID, payload.ID)
	if err != nil {
		return err
	}

	if payload.PaymentSourceID != "" {
		s.attachPaymentSource(ctx, inv, payload)
	}

	sub, err := s.subscriptions.Activate(ctx, inv.SubscriptionID)
	if err != nil {
		return err
	}

	sub, err = s.subscriptions.ExtendPeriod(ctx, sub.ID)
	if err != nil {
		return err
	}

	s.notify(ctx, sub.WorkspaceID, email.PaymentSucceededTemplate(
		inv.ID, inv.AmountInCents, sub.CurrentPeriodEnd.Format(time.RFC3339)))
	return nil
}

func (s *paymentEventService) settleFailed(ctx context.Context, inv *invoice.Invoice, payload *webhook.TransactionPayload, prior *transaction.Transaction) error {
	if inv.InvoiceStatus.IsTerminal() {
		s.Logger.Infow("invoice already settled, ignoring failed transaction",
			"invoice_id", inv.ID,
			"invoice_status", inv.InvoiceStatus,
			"external_transaction_id", payload.ID,
		)
		return nil
	}

	if inv.IsExhausted() {
		s.Logger.Infow("invoice has no attempts left, ignoring failed transaction",
			"invoice_id", inv.ID,
			"attempt_count", inv.AttemptCount,
			"external_transaction_id", payload.ID,
		)
		return nil
	}

	if prior != nil {
		// A redelivered decline was counted on first delivery, and a
		// dunning retry consumed its attempt when the charge went out.
		if prior.GatewayStatus == types.GatewayStatusDeclined || prior.GatewayStatus == types.GatewayStatusError {
			s.Logger.Infow("decline already counted, treating as duplicate delivery",
				"invoice_id", inv.ID,
				"external_transaction_id", payload.ID,
			)
			return nil
		}
		if gateway.IsRetryReference(prior.Reference) {
			s.Logger.Infow("retry attempt was consumed when the charge was sent",
				"invoice_id", inv.ID,
				"external_transaction_id", payload.ID,
				"reference", prior.Reference,
			)
			s.notifyFailed(ctx, inv)
			return nil
		}
	}

	inv, err := s.invoices.MarkFailed(ctx, inv.ID)
	if err != nil {
		return err
	}

	s.notifyFailed(ctx, inv)
	return nil
}

func (s *paymentEventService) notifyFailed(ctx context.Context, inv *invoice.Invoice) {
	nextRetry := ""
	if inv.NextRetryAt != nil {
		nextRetry = inv.NextRetryAt.Format(time.RFC3339)
	}
	s.notify(ctx, inv.WorkspaceID, email.PaymentFailedTemplate(
		inv.ID, inv.AttemptCount, types.MaxInvoiceAttempts, nextRetry))
}

func (s *paymentEventService) settleVoided(ctx context.Context, inv *invoice.Invoice) error {
	if inv.InvoiceStatus == types.InvoiceStatusRefunded {
		return nil
	}
	_, err := s.invoices.MarkRefunded(ctx, inv.ID)
	return err
}

// attachPaymentSource registers a new tokenized source seen on an
// approved transaction and links it to the subscription if it has none.
// Failures here never block the settlement.
func (s *paymentEventService) attachPaymentSource(ctx context.Context, inv *invoice.Invoice, payload *webhook.TransactionPayload) {
	ps, err := s.PaymentSourceRepo.GetByExternalID(ctx, payload.PaymentSourceID)
	if err != nil {
		if !ierr.IsNotFound(err) {
			s.Logger.Errorw("failed to look up payment source",
				"error", err,
				"external_payment_source_id", payload.PaymentSourceID,
			)
			return
		}

		remote, err := s.Gateway.GetPaymentSource(ctx, payload.PaymentSourceID)
		if err != nil {
			s.Logger.Errorw("failed to fetch payment source from gateway",
				"error", err,
				"external_payment_source_id", payload.PaymentSourceID,
			)
			return
		}

		sub, err := s.SubRepo.Get(ctx, inv.SubscriptionID)
		if err != nil {
			return
		}

		ps = &paymentsource.PaymentSource{
			ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_SOURCE),
			WorkspaceID:   inv.WorkspaceID,
			UserID:        sub.UserID,
			ExternalID:    payload.PaymentSourceID,
			Type:          types.PaymentSourceType(remote.Type),
			SourceStatus:  types.PaymentSourceStatus(remote.Status),
			LastFour:      remote.LastFour,
			ExpiresAt:     remote.ExpiresAt,
			CustomerEmail: remote.CustomerEmail,
			BaseModel:     types.GetDefaultBaseModel(ctx),
		}

		// First source for the workspace becomes the default.
		if _, err := s.PaymentSourceRepo.GetDefaultByWorkspace(ctx, inv.WorkspaceID); ierr.IsNotFound(err) {
			ps.IsDefault = true
		}
		if err := s.PaymentSourceRepo.Create(ctx, ps); err != nil {
			s.Logger.Errorw("failed to store payment source",
				"error", err,
				"external_payment_source_id", payload.PaymentSourceID,
			)
			return
		}
		s.Logger.Infow("registered payment source from approved transaction",
			"payment_source_id", ps.ID,
			"external_payment_source_id", ps.ExternalID,
		)
	}

	sub, err := s.SubRepo.Get(ctx, inv.SubscriptionID)
	if err != nil || sub.PaymentSourceID != nil {
		return
	}
	sub.PaymentSourceID = &ps.ID
	sub.UpdatedAt = time.Now().UTC()
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		s.Logger.Errorw("failed to link payment source to subscription",
			"error", err,
			"subscription_id", sub.ID,
			"payment_source_id", ps.ID,
		)
	}
}

// ProcessPaymentSourceEvent refreshes the gateway-side status of a known
// payment source. Sources this system never registered are skipped.
func (s *paymentEventService) ProcessPaymentSourceEvent(ctx context.Context, payload *webhook.PaymentSourcePayload) error {
	ps, err := s.PaymentSourceRepo.GetByExternalID(ctx, payload.ID.String())
	if err != nil {
		if ierr.IsNotFound(err) {
			s.Logger.Infow("payment source not known, skipping",
				"external_payment_source_id", payload.ID,
			)
			return nil
		}
		return err
	}

	ps.SourceStatus = types.PaymentSourceStatus(payload.Status)
	if payload.LastFour != "" {
		ps.LastFour = payload.LastFour
	}
	if payload.ExpiresAt != "" {
		ps.ExpiresAt = payload.ExpiresAt
	}
	ps.UpdatedAt = time.Now().UTC()

	if err := s.PaymentSourceRepo.Update(ctx, ps); err != nil {
		return err
	}

	s.Logger.Infow("payment source updated",
		"payment_source_id", ps.ID,
		"source_status", ps.SourceStatus,
	)
	return nil
}

// notify looks up the billing contact for a workspace and sends best
// effort. The default payment source carries the customer email.
func (s *paymentEventService) notify(ctx context.Context, workspaceID string, tpl email.Template) {
	if s.Notifier == nil {
		return
	}

	ps, err := s.PaymentSourceRepo.GetDefaultByWorkspace(ctx, workspaceID)
	if err != nil || ps.CustomerEmail == "" {
		return
	}
	s.Notifier.Notify(ctx, ps.CustomerEmail, tpl)
}
