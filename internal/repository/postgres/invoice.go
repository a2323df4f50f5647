package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/recibohq/recibo/internal/domain/invoice"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/logger"
	"github.com/recibohq/recibo/internal/postgres"
	"github.com/recibohq/recibo/internal/types"
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

const invoiceColumns = `
	id, subscription_id, workspace_id, amount_in_cents, invoice_status, reference,
	period_start, period_end, attempt_count, next_retry_at, paid_at,
	external_transaction_id, status, created_at, updated_at, created_by, updated_by
`

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	query := `
	INSERT INTO invoices (` + invoiceColumns + `) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
	)`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		inv.ID,
		inv.SubscriptionID,
		inv.WorkspaceID,
		inv.AmountInCents,
		inv.InvoiceStatus,
		inv.Reference,
		inv.PeriodStart,
		inv.PeriodEnd,
		inv.AttemptCount,
		inv.NextRetryAt,
		inv.PaidAt,
		inv.ExternalTransactionID,
		inv.Status,
		inv.CreatedAt,
		inv.UpdatedAt,
		inv.CreatedBy,
		inv.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to insert invoice").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 AND status = $2`

	var inv invoice.Invoice
	err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, query, id, types.StatusActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("invoice not found").
				WithHintf("no invoice with id %s", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to get invoice").
			Mark(ierr.ErrDatabase)
	}
	return &inv, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	query := `
	UPDATE invoices SET
		invoice_status = $2,
		attempt_count = $3,
		next_retry_at = $4,
		paid_at = $5,
		external_transaction_id = $6,
		status = $7,
		updated_at = $8,
		updated_by = $9
	WHERE id = $1`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		inv.ID,
		inv.InvoiceStatus,
		inv.AttemptCount,
		inv.NextRetryAt,
		inv.PaidAt,
		inv.ExternalTransactionID,
		inv.Status,
		inv.UpdatedAt,
		inv.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to update invoice").
			Mark(ierr.ErrDatabase)
	}

	return requireRowAffected(result, "invoice", inv.ID)
}

func (r *invoiceRepository) GetByReference(ctx context.Context, reference string) (*invoice.Invoice, error) {
	query := `
	SELECT ` + invoiceColumns + ` FROM invoices
	WHERE reference = $1 AND status = $2
	ORDER BY created_at DESC
	LIMIT 1`

	var inv invoice.Invoice
	err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, query, reference, types.StatusActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("invoice not found").
				WithHintf("no invoice with reference %s", reference).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to get invoice by reference").
			Mark(ierr.ErrDatabase)
	}
	return &inv, nil
}

func (r *invoiceRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*invoice.Invoice, error) {
	query := `
	SELECT ` + invoiceColumns + ` FROM invoices
	WHERE workspace_id = $1 AND status = $2
	ORDER BY created_at DESC`

	invoices := []*invoice.Invoice{}
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query, workspaceID, types.StatusActive)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list invoices").
			Mark(ierr.ErrDatabase)
	}
	return invoices, nil
}

// ListFailedForRetry returns failed invoices that are due for another
// attempt: attempts remaining and next_retry_at in the past. Oldest
// first so the longest-waiting invoices recover first.
func (r *invoiceRepository) ListFailedForRetry(ctx context.Context, maxAttempts int) ([]*invoice.Invoice, error) {
	query := `
	SELECT ` + invoiceColumns + ` FROM invoices
	WHERE invoice_status = $1
	  AND status = $2
	  AND attempt_count < $3
	  AND next_retry_at IS NOT NULL
	  AND next_retry_at <= NOW()
	ORDER BY created_at ASC`

	invoices := []*invoice.Invoice{}
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query,
		types.InvoiceStatusFailed, types.StatusActive, maxAttempts)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list retryable invoices").
			Mark(ierr.ErrDatabase)
	}
	return invoices, nil
}

// ListExhausted returns failed invoices with no attempts left, whose
// subscriptions are due for suspension.
func (r *invoiceRepository) ListExhausted(ctx context.Context, maxAttempts int) ([]*invoice.Invoice, error) {
	query := `
	SELECT ` + invoiceColumns + ` FROM invoices
	WHERE invoice_status = $1
	  AND status = $2
	  AND attempt_count >= $3
	ORDER BY created_at ASC`

	invoices := []*invoice.Invoice{}
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query,
		types.InvoiceStatusFailed, types.StatusActive, maxAttempts)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list exhausted invoices").
			Mark(ierr.ErrDatabase)
	}
	return invoices, nil
}
