package service

import (
	"context"
	"time"

	"github.com/recibohq/recibo/internal/domain/invoice"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/types"
	"github.com/recibohq/recibo/internal/validator"
)

// InvoiceService owns the invoice state machine. All status changes go
// through it so transition rules hold no matter which trigger (webhook,
// dunning run, manual retry) initiates them.
type InvoiceService interface {
	CreateDraft(ctx context.Context, req *CreateInvoiceRequest) (*invoice.Invoice, error)
	Get(ctx context.Context, id string) (*invoice.Invoice, error)
	GetByReference(ctx context.Context, reference string) (*invoice.Invoice, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*invoice.Invoice, error)
	MarkPaid(ctx context.Context, id string, externalTransactionID string) (*invoice.Invoice, error)
	MarkFailed(ctx context.Context, id string) (*invoice.Invoice, error)
	MarkRefunded(ctx context.Context, id string) (*invoice.Invoice, error)
}

// CreateInvoiceRequest creates a pending invoice awaiting payment.
type CreateInvoiceRequest struct {
	SubscriptionID string    `json:"subscription_id" validate:"required"`
	WorkspaceID    string    `json:"workspace_id" validate:"required"`
	AmountInCents  int64     `json:"amount_in_cents" validate:"gte=0"`
	Reference      string    `json:"reference" validate:"required"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
}

type invoiceService struct {
	ServiceParams
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{ServiceParams: params}
}

func (s *invoiceService) CreateDraft(ctx context.Context, req *CreateInvoiceRequest) (*invoice.Invoice, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}

	inv := &invoice.Invoice{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		SubscriptionID: req.SubscriptionID,
		WorkspaceID:    req.WorkspaceID,
		AmountInCents:  req.AmountInCents,
		InvoiceStatus:  types.InvoiceStatusPending,
		Reference:      req.Reference,
		PeriodStart:    req.PeriodStart,
		PeriodEnd:      req.PeriodEnd,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}

	if err := inv.Validate(); err != nil {
		return nil, err
	}

	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("created invoice",
		"invoice_id", inv.ID,
		"subscription_id", inv.SubscriptionID,
		"reference", inv.Reference,
		"amount_in_cents", inv.AmountInCents,
	)
	return inv, nil
}

func (s *invoiceService) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	return s.InvoiceRepo.Get(ctx, id)
}

func (s *invoiceService) GetByReference(ctx context.Context, reference string) (*invoice.Invoice, error) {
	return s.InvoiceRepo.GetByReference(ctx, reference)
}

func (s *invoiceService) ListByWorkspace(ctx context.Context, workspaceID string) ([]*invoice.Invoice, error) {
	return s.InvoiceRepo.ListByWorkspace(ctx, workspaceID)
}

// MarkPaid transitions an invoice to paid and records the settling
// gateway transaction. Paying an already paid invoice is rejected so
// callers can treat it as a duplicate delivery.
func (s *invoiceService) MarkPaid(ctx context.Context, id string, externalTransactionID string) (*invoice.Invoice, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.transition(inv, types.InvoiceStatusPaid); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	inv.InvoiceStatus = types.InvoiceStatusPaid
	inv.PaidAt = &now
	inv.NextRetryAt = nil
	if externalTransactionID != "" {
		inv.ExternalTransactionID = &externalTransactionID
	}
	inv.UpdatedAt = now

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("invoice paid",
		"invoice_id", inv.ID,
		"external_transaction_id", externalTransactionID,
	)
	return inv, nil
}

// MarkFailed records a failed charge attempt: status failed, attempt
// count incremented, next retry scheduled while attempts remain.
func (s *invoiceService) MarkFailed(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.transition(inv, types.InvoiceStatusFailed); err != nil {
		return nil, err
	}

	if inv.IsExhausted() {
		return nil, ierr.NewError("invoice attempts exhausted").
			WithHintf("invoice %s already used all %d attempts", inv.ID, types.MaxInvoiceAttempts).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	inv.InvoiceStatus = types.InvoiceStatusFailed
	inv.AttemptCount++
	if inv.AttemptCount < types.MaxInvoiceAttempts {
		next := types.NextRetryAt(inv.AttemptCount, now)
		inv.NextRetryAt = &next
	} else {
		inv.NextRetryAt = nil
	}
	inv.UpdatedAt = now

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Warnw("invoice payment failed",
		"invoice_id", inv.ID,
		"attempt_count", inv.AttemptCount,
		"next_retry_at", inv.NextRetryAt,
	)
	return inv, nil
}

// MarkRefunded handles a voided gateway transaction.
func (s *invoiceService) MarkRefunded(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.transition(inv, types.InvoiceStatusRefunded); err != nil {
		return nil, err
	}

	inv.InvoiceStatus = types.InvoiceStatusRefunded
	inv.NextRetryAt = nil
	inv.UpdatedAt = time.Now().UTC()

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("invoice refunded", "invoice_id", inv.ID)
	return inv, nil
}

func (s *invoiceService) transition(inv *invoice.Invoice, target types.InvoiceStatus) error {
	if !inv.InvoiceStatus.CanTransitionTo(target) {
		return ierr.NewError("invalid invoice transition").
			WithHintf("invoice %s cannot move from %s to %s", inv.ID, inv.InvoiceStatus, target).
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"from":       inv.InvoiceStatus,
				"to":         target,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}
