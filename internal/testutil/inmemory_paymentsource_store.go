package testutil

import (
	"context"

	"github.com/samber/lo"

	"github.com/recibohq/recibo/internal/domain/paymentsource"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/types"
)

// InMemoryPaymentSourceStore implements paymentsource.Repository
type InMemoryPaymentSourceStore struct {
	*InMemoryStore[*paymentsource.PaymentSource]
}

func NewInMemoryPaymentSourceStore() *InMemoryPaymentSourceStore {
	return &InMemoryPaymentSourceStore{
		InMemoryStore: NewInMemoryStore[*paymentsource.PaymentSource](),
	}
}

func copyPaymentSource(ps *paymentsource.PaymentSource) *paymentsource.PaymentSource {
	if ps == nil {
		return nil
	}
	cp := *ps
	return &cp
}

func (s *InMemoryPaymentSourceStore) Create(ctx context.Context, ps *paymentsource.PaymentSource) error {
	if err := s.InMemoryStore.Create(ctx, ps.ID, copyPaymentSource(ps)); err != nil {
		return ierr.WithError(err).
			WithHintf("payment source %s already exists", ps.ID).
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryPaymentSourceStore) Get(ctx context.Context, id string) (*paymentsource.PaymentSource, error) {
	ps, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("payment source not found").
			WithHintf("no payment source with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	return copyPaymentSource(ps), nil
}

func (s *InMemoryPaymentSourceStore) GetByExternalID(ctx context.Context, externalID string) (*paymentsource.PaymentSource, error) {
	sources, err := s.InMemoryStore.List(ctx, nil,
		func(_ context.Context, ps *paymentsource.PaymentSource, _ interface{}) bool {
			return ps.ExternalID == externalID && ps.Status == types.StatusActive
		},
		nil,
	)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, ierr.NewError("payment source not found").
			WithHintf("no payment source with external id %s", externalID).
			Mark(ierr.ErrNotFound)
	}
	return copyPaymentSource(sources[0]), nil
}

func (s *InMemoryPaymentSourceStore) Update(ctx context.Context, ps *paymentsource.PaymentSource) error {
	if err := s.InMemoryStore.Update(ctx, ps.ID, copyPaymentSource(ps)); err != nil {
		return ierr.NewError("payment source not found").
			WithHintf("no payment source with id %s", ps.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryPaymentSourceStore) GetDefaultByWorkspace(ctx context.Context, workspaceID string) (*paymentsource.PaymentSource, error) {
	sources, err := s.InMemoryStore.List(ctx, nil,
		func(_ context.Context, ps *paymentsource.PaymentSource, _ interface{}) bool {
			return ps.WorkspaceID == workspaceID && ps.IsDefault && ps.Status == types.StatusActive
		},
		nil,
	)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, ierr.NewError("default payment source not found").
			WithHintf("workspace %s has no default payment source", workspaceID).
			Mark(ierr.ErrNotFound)
	}
	return copyPaymentSource(sources[0]), nil
}

func (s *InMemoryPaymentSourceStore) ListByWorkspace(ctx context.Context, workspaceID string) ([]*paymentsource.PaymentSource, error) {
	sources, err := s.InMemoryStore.List(ctx, nil,
		func(_ context.Context, ps *paymentsource.PaymentSource, _ interface{}) bool {
			return ps.WorkspaceID == workspaceID && ps.Status == types.StatusActive
		},
		func(i, j *paymentsource.PaymentSource) bool {
			return i.CreatedAt.After(j.CreatedAt)
		},
	)
	if err != nil {
		return nil, err
	}
	return lo.Map(sources, func(ps *paymentsource.PaymentSource, _ int) *paymentsource.PaymentSource { return copyPaymentSource(ps) }), nil
}

func (s *InMemoryPaymentSourceStore) ClearDefaultByWorkspace(ctx context.Context, workspaceID string) error {
	sources, err := s.InMemoryStore.List(ctx, nil,
		func(_ context.Context, ps *paymentsource.PaymentSource, _ interface{}) bool {
			return ps.WorkspaceID == workspaceID && ps.IsDefault
		},
		nil,
	)
	if err != nil {
		return err
	}
	for _, ps := range sources {
		ps.IsDefault = false
		if err := s.InMemoryStore.Update(ctx, ps.ID, ps); err != nil {
			return err
		}
	}
	return nil
}
