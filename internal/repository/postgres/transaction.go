package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/recibohq/recibo/internal/domain/transaction"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/logger"
	"github.com/recibohq/recibo/internal/postgres"
	"github.com/recibohq/recibo/internal/types"
)

type transactionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewTransactionRepository(db *postgres.DB, logger *logger.Logger) transaction.Repository {
	return &transactionRepository{db: db, logger: logger}
}

const transactionColumns = `
	id, invoice_id, workspace_id, external_id, amount_in_cents, gateway_status,
	payment_method_type, reference, status_message, raw_payload,
	status, created_at, updated_at, created_by, updated_by
`

func (r *transactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	query := `
	INSERT INTO transactions (` + transactionColumns + `) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
	)`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		t.ID,
		t.InvoiceID,
		t.WorkspaceID,
		t.ExternalID,
		t.AmountInCents,
		t.GatewayStatus,
		t.PaymentMethodType,
		t.Reference,
		t.StatusMessage,
		t.RawPayload,
		t.Status,
		t.CreatedAt,
		t.UpdatedAt,
		t.CreatedBy,
		t.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to insert transaction").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *transactionRepository) Get(ctx context.Context, id string) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND status = $2`

	var t transaction.Transaction
	err := r.db.GetQuerier(ctx).GetContext(ctx, &t, query, id, types.StatusActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("transaction not found").
				WithHintf("no transaction with id %s", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to get transaction").
			Mark(ierr.ErrDatabase)
	}
	return &t, nil
}

func (r *transactionRepository) GetByExternalID(ctx context.Context, externalID string) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE external_id = $1 AND status = $2`

	var t transaction.Transaction
	err := r.db.GetQuerier(ctx).GetContext(ctx, &t, query, externalID, types.StatusActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("transaction not found").
				WithHintf("no transaction with external id %s", externalID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to get transaction by external id").
			Mark(ierr.ErrDatabase)
	}
	return &t, nil
}

func (r *transactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	query := `
	UPDATE transactions SET
		gateway_status = $2,
		status_message = $3,
		raw_payload = $4,
		status = $5,
		updated_at = $6,
		updated_by = $7
	WHERE id = $1`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		t.ID,
		t.GatewayStatus,
		t.StatusMessage,
		t.RawPayload,
		t.Status,
		t.UpdatedAt,
		t.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to update transaction").
			Mark(ierr.ErrDatabase)
	}

	return requireRowAffected(result, "transaction", t.ID)
}

func (r *transactionRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*transaction.Transaction, error) {
	query := `
	SELECT ` + transactionColumns + ` FROM transactions
	WHERE invoice_id = $1 AND status = $2
	ORDER BY created_at ASC`

	transactions := []*transaction.Transaction{}
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &transactions, query, invoiceID, types.StatusActive)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list invoice transactions").
			Mark(ierr.ErrDatabase)
	}
	return transactions, nil
}
