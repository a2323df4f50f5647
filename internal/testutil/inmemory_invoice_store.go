package testutil

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/recibohq/recibo/internal/domain/invoice"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/types"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}
	cp := *inv
	if inv.NextRetryAt != nil {
		v := *inv.NextRetryAt
		cp.NextRetryAt = &v
	}
	if inv.PaidAt != nil {
		v := *inv.PaidAt
		cp.PaidAt = &v
	}
	if inv.ExternalTransactionID != nil {
		v := *inv.ExternalTransactionID
		cp.ExternalTransactionID = &v
	}
	return &cp
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if err := s.InMemoryStore.Create(ctx, inv.ID, copyInvoice(inv)); err != nil {
		return ierr.WithError(err).
			WithHintf("invoice %s already exists", inv.ID).
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("invoice not found").
			WithHintf("no invoice with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	if err := s.InMemoryStore.Update(ctx, inv.ID, copyInvoice(inv)); err != nil {
		return ierr.NewError("invoice not found").
			WithHintf("no invoice with id %s", inv.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryInvoiceStore) GetByReference(ctx context.Context, reference string) (*invoice.Invoice, error) {
	invoices, err := s.InMemoryStore.List(ctx, nil,
		func(_ context.Context, inv *invoice.Invoice, _ interface{}) bool {
			return inv.Reference == reference && inv.Status == types.StatusActive
		},
		func(i, j *invoice.Invoice) bool {
			return i.CreatedAt.After(j.CreatedAt)
		},
	)
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, ierr.NewError("invoice not found").
			WithHintf("no invoice with reference %s", reference).
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(invoices[0]), nil
}

func (s *InMemoryInvoiceStore) ListByWorkspace(ctx context.Context, workspaceID string) ([]*invoice.Invoice, error) {
	invoices, err := s.InMemoryStore.List(ctx, nil,
		func(_ context.Context, inv *invoice.Invoice, _ interface{}) bool {
			return inv.WorkspaceID == workspaceID && inv.Status == types.StatusActive
		},
		func(i, j *invoice.Invoice) bool {
			return i.CreatedAt.After(j.CreatedAt)
		},
	)
	if err != nil {
		return nil, err
	}
	return lo.Map(invoices, func(inv *invoice.Invoice, _ int) *invoice.Invoice { return copyInvoice(inv) }), nil
}

func (s *InMemoryInvoiceStore) ListFailedForRetry(ctx context.Context, maxAttempts int) ([]*invoice.Invoice, error) {
	now := time.Now().UTC()
	invoices, err := s.InMemoryStore.List(ctx, nil,
		func(_ context.Context, inv *invoice.Invoice, _ interface{}) bool {
			return inv.InvoiceStatus == types.InvoiceStatusFailed &&
				inv.Status == types.StatusActive &&
				inv.AttemptCount < maxAttempts &&
				inv.NextRetryAt != nil &&
				!inv.NextRetryAt.After(now)
		},
		func(i, j *invoice.Invoice) bool {
			return i.CreatedAt.Before(j.CreatedAt)
		},
	)
	if err != nil {
		return nil, err
	}
	return lo.Map(invoices, func(inv *invoice.Invoice, _ int) *invoice.Invoice { return copyInvoice(inv) }), nil
}

func (s *InMemoryInvoiceStore) ListExhausted(ctx context.Context, maxAttempts int) ([]*invoice.Invoice, error) {
	invoices, err := s.InMemoryStore.List(ctx, nil,
		func(_ context.Context, inv *invoice.Invoice, _ interface{}) bool {
			return inv.InvoiceStatus == types.InvoiceStatusFailed &&
				inv.Status == types.StatusActive &&
				inv.AttemptCount >= maxAttempts
		},
		func(i, j *invoice.Invoice) bool {
			return i.CreatedAt.Before(j.CreatedAt)
		},
	)
	if err != nil {
		return nil, err
	}
	return lo.Map(invoices, func(inv *invoice.Invoice, _ int) *invoice.Invoice { return copyInvoice(inv) }), nil
}
