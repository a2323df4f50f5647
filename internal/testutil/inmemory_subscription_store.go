package testutil

import (
	"context"

	"github.com/recibohq/recibo/internal/domain/subscription"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/types"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
	}
}

func copySubscription(sub *subscription.Subscription) *subscription.Subscription {
	if sub == nil {
		return nil
	}
	cp := *sub
	if sub.PaymentSourceID != nil {
		v := *sub.PaymentSourceID
		cp.PaymentSourceID = &v
	}
	if sub.CanceledAt != nil {
		v := *sub.CanceledAt
		cp.CanceledAt = &v
	}
	if sub.Metadata != nil {
		cp.Metadata = make(types.Metadata, len(sub.Metadata))
		for k, v := range sub.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if err := s.InMemoryStore.Create(ctx, sub.ID, copySubscription(sub)); err != nil {
		return ierr.WithError(err).
			WithHintf("subscription %s already exists", sub.ID).
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("subscription not found").
			WithHintf("no subscription with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	if err := s.InMemoryStore.Update(ctx, sub.ID, copySubscription(sub)); err != nil {
		return ierr.NewError("subscription not found").
			WithHintf("no subscription with id %s", sub.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemorySubscriptionStore) GetByWorkspace(ctx context.Context, workspaceID string) (*subscription.Subscription, error) {
	subs, err := s.InMemoryStore.List(ctx, nil,
		func(_ context.Context, sub *subscription.Subscription, _ interface{}) bool {
			return sub.WorkspaceID == workspaceID && sub.Status == types.StatusActive
		},
		func(i, j *subscription.Subscription) bool {
			return i.CreatedAt.After(j.CreatedAt)
		},
	)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, ierr.NewError("subscription not found").
			WithHintf("workspace %s has no subscription", workspaceID).
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(subs[0]), nil
}

func (s *InMemorySubscriptionStore) GetActiveByWorkspace(ctx context.Context, workspaceID string) (*subscription.Subscription, error) {
	subs, err := s.InMemoryStore.List(ctx, nil,
		func(_ context.Context, sub *subscription.Subscription, _ interface{}) bool {
			return sub.WorkspaceID == workspaceID &&
				sub.Status == types.StatusActive &&
				sub.SubscriptionStatus == types.SubscriptionStatusActive
		},
		func(i, j *subscription.Subscription) bool {
			return i.CreatedAt.After(j.CreatedAt)
		},
	)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, ierr.NewError("active subscription not found").
			WithHintf("workspace %s has no active subscription", workspaceID).
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(subs[0]), nil
}
