package testutil

import (
	"context"

	"github.com/samber/lo"

	"github.com/recibohq/recibo/internal/domain/plan"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/types"
)

// InMemoryPlanStore implements plan.Repository
type InMemoryPlanStore struct {
	*InMemoryStore[*plan.Plan]
}

func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		InMemoryStore: NewInMemoryStore[*plan.Plan](),
	}
}

func copyPlan(p *plan.Plan) *plan.Plan {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func (s *InMemoryPlanStore) Create(ctx context.Context, p *plan.Plan) error {
	if err := s.InMemoryStore.Create(ctx, p.ID, copyPlan(p)); err != nil {
		return ierr.WithError(err).
			WithHintf("plan %s already exists", p.ID).
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryPlanStore) Get(ctx context.Context, id string) (*plan.Plan, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("plan not found").
			WithHintf("no plan with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	return copyPlan(p), nil
}

func (s *InMemoryPlanStore) List(ctx context.Context) ([]*plan.Plan, error) {
	plans, err := s.InMemoryStore.List(ctx, nil,
		func(_ context.Context, p *plan.Plan, _ interface{}) bool {
			return p.Status == types.StatusActive && p.IsActive
		},
		func(i, j *plan.Plan) bool {
			if i.SortOrder != j.SortOrder {
				return i.SortOrder < j.SortOrder
			}
			return i.AmountInCents < j.AmountInCents
		},
	)
	if err != nil {
		return nil, err
	}
	return lo.Map(plans, func(p *plan.Plan, _ int) *plan.Plan { return copyPlan(p) }), nil
}

func (s *InMemoryPlanStore) Update(ctx context.Context, p *plan.Plan) error {
	if err := s.InMemoryStore.Update(ctx, p.ID, copyPlan(p)); err != nil {
		return ierr.NewError("plan not found").
			WithHintf("no plan with id %s", p.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
