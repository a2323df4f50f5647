package paymentsource

import "context"

type Repository interface {
	Create(ctx context.Context, ps *PaymentSource) error
	Get(ctx context.Context, id string) (*PaymentSource, error)
	GetByExternalID(ctx context.Context, externalID string) (*PaymentSource, error)
	Update(ctx context.Context, ps *PaymentSource) error
	GetDefaultByWorkspace(ctx context.Context, workspaceID string) (*PaymentSource, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*PaymentSource, error)
	ClearDefaultByWorkspace(ctx context.Context, workspaceID string) error
}
