package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recibohq/recibo/internal/cache"
	"github.com/recibohq/recibo/internal/domain/plan"
	"github.com/recibohq/recibo/internal/logger"
)

// countingPlanRepo tracks how often each call reaches the inner store.
type countingPlanRepo struct {
	plans     map[string]*plan.Plan
	getCalls  int
	listCalls int
}

func newCountingPlanRepo() *countingPlanRepo {
	return &countingPlanRepo{plans: make(map[string]*plan.Plan)}
}

func (r *countingPlanRepo) Create(_ context.Context, p *plan.Plan) error {
	r.plans[p.ID] = p
	return nil
}

func (r *countingPlanRepo) Get(_ context.Context, id string) (*plan.Plan, error) {
	r.getCalls++
	return r.plans[id], nil
}

func (r *countingPlanRepo) List(_ context.Context) ([]*plan.Plan, error) {
	r.listCalls++
	out := make([]*plan.Plan, 0, len(r.plans))
	for _, p := range r.plans {
		out = append(out, p)
	}
	return out, nil
}

func (r *countingPlanRepo) Update(_ context.Context, p *plan.Plan) error {
	r.plans[p.ID] = p
	return nil
}

func TestCachedPlanRepositoryServesSecondReadFromCache(t *testing.T) {
	ctx := context.Background()
	inner := newCountingPlanRepo()
	cached := NewCachedPlanRepository(inner, cache.NewInMemoryCache(), logger.GetLogger())

	p := &plan.Plan{ID: "plan_basic", Name: "Basic", AmountInCents: 15000}
	require.NoError(t, cached.Create(ctx, p))

	first, err := cached.Get(ctx, p.ID)
	require.NoError(t, err)
	second, err := cached.Get(ctx, p.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.getCalls)
}

func TestCachedPlanRepositoryListIsCached(t *testing.T) {
	ctx := context.Background()
	inner := newCountingPlanRepo()
	cached := NewCachedPlanRepository(inner, cache.NewInMemoryCache(), logger.GetLogger())

	require.NoError(t, cached.Create(ctx, &plan.Plan{ID: "plan_basic", Name: "Basic"}))

	_, err := cached.List(ctx)
	require.NoError(t, err)
	_, err = cached.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.listCalls)
}

func TestCachedPlanRepositoryUpdateInvalidates(t *testing.T) {
	ctx := context.Background()
	inner := newCountingPlanRepo()
	cached := NewCachedPlanRepository(inner, cache.NewInMemoryCache(), logger.GetLogger())

	p := &plan.Plan{ID: "plan_basic", Name: "Basic"}
	require.NoError(t, cached.Create(ctx, p))

	_, err := cached.Get(ctx, p.ID)
	require.NoError(t, err)

	p.Name = "Basic v2"
	require.NoError(t, cached.Update(ctx, p))

	got, err := cached.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Basic v2", got.Name)
	assert.Equal(t, 2, inner.getCalls)
}
