package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/recibohq/recibo/internal/domain/transaction"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/types"
)

// TransactionService records gateway charge attempts. Upserts are keyed
// by the gateway's external id, which makes duplicate webhook deliveries
// converge on the same row.
type TransactionService interface {
	Upsert(ctx context.Context, rec *transactionRecord) (*transaction.Transaction, error)
	Get(ctx context.Context, id string) (*transaction.Transaction, error)
	GetByExternalID(ctx context.Context, externalID string) (*transaction.Transaction, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]*transaction.Transaction, error)
}

// transactionRecord is the write model for one charge attempt snapshot.
type transactionRecord struct {
	InvoiceID         string
	WorkspaceID       string
	ExternalID        string
	AmountInCents     int64
	Status            types.GatewayStatus
	PaymentMethodType string
	Reference         string
	StatusMessage     string
	RawPayload        json.RawMessage
}

type transactionService struct {
	ServiceParams
}

func NewTransactionService(params ServiceParams) TransactionService {
	return &transactionService{ServiceParams: params}
}

// Upsert creates the transaction row on first sight of the external id
// and updates it in place afterwards. Fields that only arrive on the
// first snapshot (invoice link, reference) are preserved on update.
func (s *transactionService) Upsert(ctx context.Context, rec *transactionRecord) (*transaction.Transaction, error) {
	existing, err := s.TransactionRepo.GetByExternalID(ctx, rec.ExternalID)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}

	now := time.Now().UTC()

	if existing != nil {
		existing.GatewayStatus = rec.Status
		if rec.StatusMessage != "" {
			existing.StatusMessage = rec.StatusMessage
		}
		if rec.RawPayload != nil {
			existing.RawPayload = rec.RawPayload
		}
		existing.UpdatedAt = now

		if err := s.TransactionRepo.Update(ctx, existing); err != nil {
			return nil, err
		}

		s.Logger.Debugw("updated transaction",
			"transaction_id", existing.ID,
			"external_transaction_id", existing.ExternalID,
			"gateway_status", existing.GatewayStatus,
		)
		return existing, nil
	}

	txn := &transaction.Transaction{
		ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TRANSACTION),
		InvoiceID:         rec.InvoiceID,
		WorkspaceID:       rec.WorkspaceID,
		ExternalID:        rec.ExternalID,
		AmountInCents:     rec.AmountInCents,
		GatewayStatus:     rec.Status,
		PaymentMethodType: rec.PaymentMethodType,
		Reference:         rec.Reference,
		StatusMessage:     rec.StatusMessage,
		RawPayload:        rec.RawPayload,
		BaseModel:         types.GetDefaultBaseModel(ctx),
	}
	if err := txn.Validate(); err != nil {
		return nil, err
	}

	if err := s.TransactionRepo.Create(ctx, txn); err != nil {
		return nil, err
	}

	s.Logger.Infow("recorded transaction",
		"transaction_id", txn.ID,
		"external_transaction_id", txn.ExternalID,
		"invoice_id", txn.InvoiceID,
		"gateway_status", txn.GatewayStatus,
	)
	return txn, nil
}

func (s *transactionService) Get(ctx context.Context, id string) (*transaction.Transaction, error) {
	return s.TransactionRepo.Get(ctx, id)
}

func (s *transactionService) GetByExternalID(ctx context.Context, externalID string) (*transaction.Transaction, error) {
	return s.TransactionRepo.GetByExternalID(ctx, externalID)
}

func (s *transactionService) ListByInvoice(ctx context.Context, invoiceID string) ([]*transaction.Transaction, error) {
	return s.TransactionRepo.ListByInvoice(ctx, invoiceID)
}

// recordGatewayTransaction is a helper for services that capture a
// synchronous gateway response outside the webhook flow.
func recordGatewayTransaction(ctx context.Context, params ServiceParams, rec *transactionRecord) error {
	_, err := NewTransactionService(params).Upsert(ctx, rec)
	return err
}
