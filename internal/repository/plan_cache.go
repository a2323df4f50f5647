package repository

import (
	"context"
	"time"

	"github.com/recibohq/recibo/internal/cache"
	"github.com/recibohq/recibo/internal/domain/plan"
	"github.com/recibohq/recibo/internal/logger"
)

const (
	planCacheExpiry  = 30 * time.Minute
	planListCacheKey = "list"
)

// cachedPlanRepository decorates a plan repository with an in-memory
// cache. Plans change rarely and are read on every checkout and plan
// change, so reads are served from cache and writes invalidate it.
type cachedPlanRepository struct {
	inner  plan.Repository
	cache  cache.Cache
	logger *logger.Logger
}

func NewCachedPlanRepository(inner plan.Repository, c cache.Cache, logger *logger.Logger) plan.Repository {
	return &cachedPlanRepository{inner: inner, cache: c, logger: logger}
}

func (r *cachedPlanRepository) Create(ctx context.Context, p *plan.Plan) error {
	if err := r.inner.Create(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx, p.ID)
	return nil
}

func (r *cachedPlanRepository) Get(ctx context.Context, id string) (*plan.Plan, error) {
	key := cache.GenerateKey(cache.PrefixPlan, id)
	if cached, found := r.cache.Get(ctx, key); found {
		if p, ok := cached.(*plan.Plan); ok {
			return p, nil
		}
	}

	p, err := r.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cache.Set(ctx, key, p, planCacheExpiry)
	return p, nil
}

func (r *cachedPlanRepository) List(ctx context.Context) ([]*plan.Plan, error) {
	key := cache.GenerateKey(cache.PrefixPlan, planListCacheKey)
	if cached, found := r.cache.Get(ctx, key); found {
		if plans, ok := cached.([]*plan.Plan); ok {
			return plans, nil
		}
	}

	plans, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	r.cache.Set(ctx, key, plans, planCacheExpiry)
	return plans, nil
}

func (r *cachedPlanRepository) Update(ctx context.Context, p *plan.Plan) error {
	if err := r.inner.Update(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx, p.ID)
	return nil
}

func (r *cachedPlanRepository) invalidate(ctx context.Context, id string) {
	r.cache.Delete(ctx, cache.GenerateKey(cache.PrefixPlan, id))
	r.cache.Delete(ctx, cache.GenerateKey(cache.PrefixPlan, planListCacheKey))
	r.logger.Debugw("invalidated plan cache", "plan_id", id)
}
