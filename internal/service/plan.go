package service

import (
	"context"

	"github.com/recibohq/recibo/internal/domain/plan"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/types"
	"github.com/recibohq/recibo/internal/validator"
)

// PlanService exposes the plan catalog.
type PlanService interface {
	Create(ctx context.Context, req *CreatePlanRequest) (*plan.Plan, error)
	Get(ctx context.Context, id string) (*plan.Plan, error)
	List(ctx context.Context) ([]*plan.Plan, error)
}

type CreatePlanRequest struct {
	Name          string              `json:"name" validate:"required"`
	Description   string              `json:"description"`
	AmountInCents int64               `json:"amount_in_cents" validate:"gte=0"`
	BillingPeriod types.BillingPeriod `json:"billing_period" validate:"required"`
	SortOrder     int                 `json:"sort_order"`
}

type planService struct {
	ServiceParams
}

func NewPlanService(params ServiceParams) PlanService {
	return &planService{ServiceParams: params}
}

func (s *planService) Create(ctx context.Context, req *CreatePlanRequest) (*plan.Plan, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}

	if !req.BillingPeriod.Validate() {
		return nil, ierr.NewError("invalid billing period").
			WithHintf("unknown billing period %s", req.BillingPeriod).
			Mark(ierr.ErrValidation)
	}

	p := &plan.Plan{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		Name:          req.Name,
		Description:   req.Description,
		AmountInCents: req.AmountInCents,
		Currency:      s.Config.Gateway.Currency,
		BillingPeriod: req.BillingPeriod,
		SortOrder:     req.SortOrder,
		IsActive:      true,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}

	if err := s.PlanRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.Logger.Infow("created plan",
		"plan_id", p.ID,
		"name", p.Name,
		"amount_in_cents", p.AmountInCents,
	)
	return p, nil
}

func (s *planService) Get(ctx context.Context, id string) (*plan.Plan, error) {
	return s.PlanRepo.Get(ctx, id)
}

func (s *planService) List(ctx context.Context) ([]*plan.Plan, error) {
	return s.PlanRepo.List(ctx)
}
