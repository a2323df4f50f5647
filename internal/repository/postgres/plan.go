package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/recibohq/recibo/internal/domain/plan"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/logger"
	"github.com/recibohq/recibo/internal/postgres"
	"github.com/recibohq/recibo/internal/types"
)

type planRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPlanRepository(db *postgres.DB, logger *logger.Logger) plan.Repository {
	return &planRepository{db: db, logger: logger}
}

const planColumns = `
	id, name, description, amount_in_cents, currency, billing_period,
	sort_order, is_active, status, created_at, updated_at, created_by, updated_by
`

func (r *planRepository) Create(ctx context.Context, p *plan.Plan) error {
	query := `
	INSERT INTO plans (` + planColumns + `) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
	)`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.AmountInCents,
		p.Currency,
		p.BillingPeriod,
		p.SortOrder,
		p.IsActive,
		p.Status,
		p.CreatedAt,
		p.UpdatedAt,
		p.CreatedBy,
		p.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to insert plan").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *planRepository) Get(ctx context.Context, id string) (*plan.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1 AND status = $2`

	var p plan.Plan
	err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, id, types.StatusActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("plan not found").
				WithHintf("no plan with id %s", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to get plan").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *planRepository) List(ctx context.Context) ([]*plan.Plan, error) {
	query := `
	SELECT ` + planColumns + ` FROM plans
	WHERE status = $1 AND is_active = true
	ORDER BY sort_order ASC, amount_in_cents ASC`

	plans := []*plan.Plan{}
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &plans, query, types.StatusActive)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list plans").
			Mark(ierr.ErrDatabase)
	}
	return plans, nil
}

func (r *planRepository) Update(ctx context.Context, p *plan.Plan) error {
	query := `
	UPDATE plans SET
		name = $2,
		description = $3,
		amount_in_cents = $4,
		currency = $5,
		billing_period = $6,
		sort_order = $7,
		is_active = $8,
		status = $9,
		updated_at = $10,
		updated_by = $11
	WHERE id = $1`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.AmountInCents,
		p.Currency,
		p.BillingPeriod,
		p.SortOrder,
		p.IsActive,
		p.Status,
		p.UpdatedAt,
		p.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to update plan").
			Mark(ierr.ErrDatabase)
	}

	return requireRowAffected(result, "plan", p.ID)
}
