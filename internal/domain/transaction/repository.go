package transaction

import "context"

type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	Get(ctx context.Context, id string) (*Transaction, error)
	GetByExternalID(ctx context.Context, externalID string) (*Transaction, error)
	Update(ctx context.Context, t *Transaction) error
	ListByInvoice(ctx context.Context, invoiceID string) ([]*Transaction, error)
}
