package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/recibohq/recibo/internal/domain/paymentsource"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/logger"
	"github.com/recibohq/recibo/internal/postgres"
	"github.com/recibohq/recibo/internal/types"
)

type paymentSourceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPaymentSourceRepository(db *postgres.DB, logger *logger.Logger) paymentsource.Repository {
	return &paymentSourceRepository{db: db, logger: logger}
}

const paymentSourceColumns = `
	id, workspace_id, user_id, external_id, type, source_status, brand,
	last_four, expires_at, customer_email, is_default,
	status, created_at, updated_at, created_by, updated_by
`

func (r *paymentSourceRepository) Create(ctx context.Context, ps *paymentsource.PaymentSource) error {
	query := `
	INSERT INTO payment_sources (` + paymentSourceColumns + `) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
	)`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		ps.ID,
		ps.WorkspaceID,
		ps.UserID,
		ps.ExternalID,
		ps.Type,
		ps.SourceStatus,
		ps.Brand,
		ps.LastFour,
		ps.ExpiresAt,
		ps.CustomerEmail,
		ps.IsDefault,
		ps.Status,
		ps.CreatedAt,
		ps.UpdatedAt,
		ps.CreatedBy,
		ps.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to insert payment source").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *paymentSourceRepository) Get(ctx context.Context, id string) (*paymentsource.PaymentSource, error) {
	query := `SELECT ` + paymentSourceColumns + ` FROM payment_sources WHERE id = $1 AND status = $2`

	var ps paymentsource.PaymentSource
	err := r.db.GetQuerier(ctx).GetContext(ctx, &ps, query, id, types.StatusActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("payment source not found").
				WithHintf("no payment source with id %s", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to get payment source").
			Mark(ierr.ErrDatabase)
	}
	return &ps, nil
}

func (r *paymentSourceRepository) GetByExternalID(ctx context.Context, externalID string) (*paymentsource.PaymentSource, error) {
	query := `SELECT ` + paymentSourceColumns + ` FROM payment_sources WHERE external_id = $1 AND status = $2`

	var ps paymentsource.PaymentSource
	err := r.db.GetQuerier(ctx).GetContext(ctx, &ps, query, externalID, types.StatusActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("payment source not found").
				WithHintf("no payment source with external id %s", externalID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to get payment source by external id").
			Mark(ierr.ErrDatabase)
	}
	return &ps, nil
}

func (r *paymentSourceRepository) Update(ctx context.Context, ps *paymentsource.PaymentSource) error {
	query := `
	UPDATE payment_sources SET
		source_status = $2,
		brand = $3,
		last_four = $4,
		expires_at = $5,
		customer_email = $6,
		is_default = $7,
		status = $8,
		updated_at = $9,
		updated_by = $10
	WHERE id = $1`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		ps.ID,
		ps.SourceStatus,
		ps.Brand,
		ps.LastFour,
		ps.ExpiresAt,
		ps.CustomerEmail,
		ps.IsDefault,
		ps.Status,
		ps.UpdatedAt,
		ps.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to update payment source").
			Mark(ierr.ErrDatabase)
	}

	return requireRowAffected(result, "payment source", ps.ID)
}

func (r *paymentSourceRepository) GetDefaultByWorkspace(ctx context.Context, workspaceID string) (*paymentsource.PaymentSource, error) {
	query := `
	SELECT ` + paymentSourceColumns + ` FROM payment_sources
	WHERE workspace_id = $1 AND status = $2 AND is_default = true
	LIMIT 1`

	var ps paymentsource.PaymentSource
	err := r.db.GetQuerier(ctx).GetContext(ctx, &ps, query, workspaceID, types.StatusActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("default payment source not found").
				WithHintf("workspace %s has no default payment source", workspaceID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to get default payment source").
			Mark(ierr.ErrDatabase)
	}
	return &ps, nil
}

func (r *paymentSourceRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*paymentsource.PaymentSource, error) {
	query := `
	SELECT ` + paymentSourceColumns + ` FROM payment_sources
	WHERE workspace_id = $1 AND status = $2
	ORDER BY created_at DESC`

	sources := []*paymentsource.PaymentSource{}
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &sources, query, workspaceID, types.StatusActive)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list payment sources").
			Mark(ierr.ErrDatabase)
	}
	return sources, nil
}

func (r *paymentSourceRepository) ClearDefaultByWorkspace(ctx context.Context, workspaceID string) error {
	query := `UPDATE payment_sources SET is_default = false WHERE workspace_id = $1 AND is_default = true`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, workspaceID)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to clear default payment source").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
