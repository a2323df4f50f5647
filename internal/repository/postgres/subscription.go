package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/recibohq/recibo/internal/domain/subscription"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/logger"
	"github.com/recibohq/recibo/internal/postgres"
	"github.com/recibohq/recibo/internal/types"
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

const subscriptionColumns = `
	id, workspace_id, user_id, plan_id, payment_source_id, subscription_status,
	current_period_start, current_period_end, cancel_at_period_end, canceled_at,
	metadata, status, created_at, updated_at, created_by, updated_by
`

func (r *subscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	query := `
	INSERT INTO subscriptions (` + subscriptionColumns + `) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
	)`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		s.ID,
		s.WorkspaceID,
		s.UserID,
		s.PlanID,
		s.PaymentSourceID,
		s.SubscriptionStatus,
		s.CurrentPeriodStart,
		s.CurrentPeriodEnd,
		s.CancelAtPeriodEnd,
		s.CanceledAt,
		s.Metadata,
		s.Status,
		s.CreatedAt,
		s.UpdatedAt,
		s.CreatedBy,
		s.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to insert subscription").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1 AND status = $2`

	var s subscription.Subscription
	err := r.db.GetQuerier(ctx).GetContext(ctx, &s, query, id, types.StatusActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("subscription not found").
				WithHintf("no subscription with id %s", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to get subscription").
			Mark(ierr.ErrDatabase)
	}
	return &s, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, s *subscription.Subscription) error {
	query := `
	UPDATE subscriptions SET
		plan_id = $2,
		payment_source_id = $3,
		subscription_status = $4,
		current_period_start = $5,
		current_period_end = $6,
		cancel_at_period_end = $7,
		canceled_at = $8,
		metadata = $9,
		status = $10,
		updated_at = $11,
		updated_by = $12
	WHERE id = $1`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		s.ID,
		s.PlanID,
		s.PaymentSourceID,
		s.SubscriptionStatus,
		s.CurrentPeriodStart,
		s.CurrentPeriodEnd,
		s.CancelAtPeriodEnd,
		s.CanceledAt,
		s.Metadata,
		s.Status,
		s.UpdatedAt,
		s.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to update subscription").
			Mark(ierr.ErrDatabase)
	}

	return requireRowAffected(result, "subscription", s.ID)
}

func (r *subscriptionRepository) GetByWorkspace(ctx context.Context, workspaceID string) (*subscription.Subscription, error) {
	query := `
	SELECT ` + subscriptionColumns + ` FROM subscriptions
	WHERE workspace_id = $1 AND status = $2
	ORDER BY created_at DESC
	LIMIT 1`

	var s subscription.Subscription
	err := r.db.GetQuerier(ctx).GetContext(ctx, &s, query, workspaceID, types.StatusActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("subscription not found").
				WithHintf("workspace %s has no subscription", workspaceID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to get workspace subscription").
			Mark(ierr.ErrDatabase)
	}
	return &s, nil
}

func (r *subscriptionRepository) GetActiveByWorkspace(ctx context.Context, workspaceID string) (*subscription.Subscription, error) {
	query := `
	SELECT ` + subscriptionColumns + ` FROM subscriptions
	WHERE workspace_id = $1 AND status = $2 AND subscription_status = $3
	ORDER BY created_at DESC
	LIMIT 1`

	var s subscription.Subscription
	err := r.db.GetQuerier(ctx).GetContext(ctx, &s, query,
		workspaceID, types.StatusActive, types.SubscriptionStatusActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("active subscription not found").
				WithHintf("workspace %s has no active subscription", workspaceID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to get active subscription").
			Mark(ierr.ErrDatabase)
	}
	return &s, nil
}
