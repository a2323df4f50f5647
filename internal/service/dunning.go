package service

import (
	"context"
	"time"

	"github.com/recibohq/recibo/internal/domain/invoice"
	"github.com/recibohq/recibo/internal/email"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/gateway"
	"github.com/recibohq/recibo/internal/types"
)

// DunningService drives failed-payment recovery: a daily run retries
// due failed invoices oldest first and suspends subscriptions whose
// invoices exhausted all attempts.
type DunningService interface {
	Run(ctx context.Context) (*DunningRunResult, error)
	RetryInvoice(ctx context.Context, invoiceID string) (*invoice.Invoice, error)
}

// DunningRunResult summarizes one scheduler run.
type DunningRunResult struct {
	Success        bool `json:"success"`
	Retried        int  `json:"retried"`
	RetryErrors    int  `json:"retry_errors"`
	Suspended      int  `json:"suspended"`
	TotalFailed    int  `json:"total_failed_invoices"`
	TotalSuspended int  `json:"total_suspended_invoices"`
}

type dunningService struct {
	ServiceParams
	invoices      InvoiceService
	subscriptions SubscriptionService
	transactions  TransactionService
}

func NewDunningService(params ServiceParams) DunningService {
	return &dunningService{
		ServiceParams: params,
		invoices:      NewInvoiceService(params),
		subscriptions: NewSubscriptionService(params),
		transactions:  NewTransactionService(params),
	}
}

// Run executes one dunning pass. A gateway error on one invoice still
// consumes that invoice's attempt: the attempt counter is the bounded
// retry guarantee and must advance regardless of outcome. The eventual
// settlement of each retry arrives later through the webhook.
func (s *dunningService) Run(ctx context.Context) (*DunningRunResult, error) {
	failed, err := s.InvoiceRepo.ListFailedForRetry(ctx, types.MaxInvoiceAttempts)
	if err != nil {
		return nil, err
	}

	// Snapshot the exhausted set before retrying. An invoice whose last
	// attempt fires in this run must not be suspended until the charge
	// outcome comes back through the webhook.
	exhausted, err := s.InvoiceRepo.ListExhausted(ctx, types.MaxInvoiceAttempts)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("starting dunning run",
		"failed_invoices", len(failed),
		"exhausted_invoices", len(exhausted),
	)

	result := &DunningRunResult{
		TotalFailed:    len(failed),
		TotalSuspended: len(exhausted),
	}

	for _, inv := range failed {
		if err := s.retry(ctx, inv); err != nil {
			s.Logger.Errorw("dunning retry failed",
				"error", err,
				"invoice_id", inv.ID,
				"attempt_count", inv.AttemptCount,
			)
			result.RetryErrors++

			if !ierr.IsValidation(err) {
				// Consume the attempt even though the charge never went
				// out, so a flapping gateway cannot retry forever.
				if _, failErr := s.invoices.MarkFailed(ctx, inv.ID); failErr != nil {
					s.Logger.Errorw("failed to consume retry attempt",
						"error", failErr,
						"invoice_id", inv.ID,
					)
				}
			}
			continue
		}
		result.Retried++
	}

	for _, inv := range exhausted {
		sub, err := s.SubRepo.Get(ctx, inv.SubscriptionID)
		if err != nil {
			s.Logger.Errorw("failed to load subscription for suspension",
				"error", err,
				"invoice_id", inv.ID,
				"subscription_id", inv.SubscriptionID,
			)
			continue
		}
		if sub.SubscriptionStatus == types.SubscriptionStatusPastDue {
			continue
		}

		if _, err := s.subscriptions.Suspend(ctx, sub.ID); err != nil {
			s.Logger.Errorw("failed to suspend subscription",
				"error", err,
				"subscription_id", sub.ID,
			)
			continue
		}
		result.Suspended++

		s.notifySuspension(ctx, inv)
	}

	result.Success = true
	s.Logger.Infow("dunning run completed",
		"retried", result.Retried,
		"retry_errors", result.RetryErrors,
		"suspended", result.Suspended,
		"total_failed", result.TotalFailed,
		"total_suspended", result.TotalSuspended,
	)
	return result, nil
}

// RetryInvoice runs a single retry on demand, outside the scheduler.
func (s *dunningService) RetryInvoice(ctx context.Context, invoiceID string) (*invoice.Invoice, error) {
	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if inv.InvoiceStatus != types.InvoiceStatusFailed {
		return nil, ierr.NewError("invoice is not retryable").
			WithHintf("only failed invoices can be retried, got %s", inv.InvoiceStatus).
			Mark(ierr.ErrInvalidOperation)
	}
	if inv.IsExhausted() {
		return nil, ierr.NewError("invoice retries exhausted").
			WithHintf("invoice %s used all %d attempts", inv.ID, types.MaxInvoiceAttempts).
			Mark(ierr.ErrInvalidOperation)
	}

	if err := s.retry(ctx, inv); err != nil {
		return nil, err
	}
	return s.InvoiceRepo.Get(ctx, invoiceID)
}

// retry charges one failed invoice through the stored payment source.
// The retry reference is deterministic in (invoice, attempt) so a
// replayed run cannot double charge.
func (s *dunningService) retry(ctx context.Context, inv *invoice.Invoice) error {
	sub, err := s.SubRepo.Get(ctx, inv.SubscriptionID)
	if err != nil {
		return err
	}

	if sub.PaymentSourceID == nil {
		return ierr.NewError("no payment source on file").
			WithHintf("subscription %s has no payment source to retry with", sub.ID).
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

	attempt := inv.AttemptCount + 1
	reference := gateway.RetryReference(inv.ID, attempt)

	s.Logger.Infow("retrying invoice",
		"invoice_id", inv.ID,
		"attempt", attempt,
		"reference", reference,
	)

	txn, err := s.Gateway.CreateTransaction(ctx, &gateway.CreateTransactionRequest{
		AmountInCents:   inv.AmountInCents,
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

	if _, err := s.transactions.Upsert(ctx, &transactionRecord{
		InvoiceID:         inv.ID,
		WorkspaceID:       inv.WorkspaceID,
		ExternalID:        txn.ID,
		AmountInCents:     txn.AmountInCents,
		Status:            types.GatewayStatus(txn.Status),
		PaymentMethodType: string(ps.Type),
		Reference:         reference,
		StatusMessage:     txn.StatusMessage,
	}); err != nil {
		return err
	}

	// The attempt is consumed now; the webhook settles the outcome.
	updated, err := s.invoices.MarkFailed(ctx, inv.ID)
	if err != nil {
		return err
	}

	updated.ExternalTransactionID = &txn.ID
	updated.UpdatedAt = time.Now().UTC()
	if err := s.InvoiceRepo.Update(ctx, updated); err != nil {
		return err
	}
	return nil
}

func (s *dunningService) notifySuspension(ctx context.Context, inv *invoice.Invoice) {
	if s.Notifier == nil {
		return
	}

	ps, err := s.PaymentSourceRepo.GetDefaultByWorkspace(ctx, inv.WorkspaceID)
	if err != nil || ps.CustomerEmail == "" {
		return
	}
	s.Notifier.Notify(ctx, ps.CustomerEmail, email.SubscriptionSuspendedTemplate(inv.ID))
}
