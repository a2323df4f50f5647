package testutil

import (
	"context"

	"github.com/samber/lo"

	"github.com/recibohq/recibo/internal/domain/transaction"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/types"
)

// InMemoryTransactionStore implements transaction.Repository
type InMemoryTransactionStore struct {
	*InMemoryStore[*transaction.Transaction]
}

func NewInMemoryTransactionStore() *InMemoryTransactionStore {
	return &InMemoryTransactionStore{
		InMemoryStore: NewInMemoryStore[*transaction.Transaction](),
	}
}

func copyTransaction(t *transaction.Transaction) *transaction.Transaction {
	if t == nil {
		return nil
	}
	cp := *t
	if t.RawPayload != nil {
		cp.RawPayload = append([]byte(nil), t.RawPayload...)
	}
	return &cp
}

func (s *InMemoryTransactionStore) Create(ctx context.Context, t *transaction.Transaction) error {
	if err := s.InMemoryStore.Create(ctx, t.ID, copyTransaction(t)); err != nil {
		return ierr.WithError(err).
			WithHintf("transaction %s already exists", t.ID).
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryTransactionStore) Get(ctx context.Context, id string) (*transaction.Transaction, error) {
	t, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("transaction not found").
			WithHintf("no transaction with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	return copyTransaction(t), nil
}

func (s *InMemoryTransactionStore) GetByExternalID(ctx context.Context, externalID string) (*transaction.Transaction, error) {
	transactions, err := s.InMemoryStore.List(ctx, nil,
		func(_ context.Context, t *transaction.Transaction, _ interface{}) bool {
			return t.ExternalID == externalID && t.Status == types.StatusActive
		},
		nil,
	)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, ierr.NewError("transaction not found").
			WithHintf("no transaction with external id %s", externalID).
			Mark(ierr.ErrNotFound)
	}
	return copyTransaction(transactions[0]), nil
}

func (s *InMemoryTransactionStore) Update(ctx context.Context, t *transaction.Transaction) error {
	if err := s.InMemoryStore.Update(ctx, t.ID, copyTransaction(t)); err != nil {
		return ierr.NewError("transaction not found").
			WithHintf("no transaction with id %s", t.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryTransactionStore) ListByInvoice(ctx context.Context, invoiceID string) ([]*transaction.Transaction, error) {
	transactions, err := s.InMemoryStore.List(ctx, nil,
		func(_ context.Context, t *transaction.Transaction, _ interface{}) bool {
			return t.InvoiceID == invoiceID && t.Status == types.StatusActive
		},
		func(i, j *transaction.Transaction) bool {
			return i.CreatedAt.Before(j.CreatedAt)
		},
	)
	if err != nil {
		return nil, err
	}
	return lo.Map(transactions, func(t *transaction.Transaction, _ int) *transaction.Transaction { return copyTransaction(t) }), nil
}
