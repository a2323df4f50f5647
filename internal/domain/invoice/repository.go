package invoice

import (
	"context"
)

// Repository defines the interface for invoice persistence operations
type Repository interface {
	// Create creates a new invoice
	Create(ctx context.Context, invoice *Invoice) error

	// Get retrieves an invoice by ID
	Get(ctx context.Context, id string) (*Invoice, error)

	// Update updates an existing invoice
	Update(ctx context.Context, invoice *Invoice) error

	// GetByReference retrieves an invoice by its gateway reference
	GetByReference(ctx context.Context, reference string) (*Invoice, error)

	// ListByWorkspace retrieves a workspace's invoices, newest first
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*Invoice, error)

	// ListFailedForRetry retrieves failed invoices that still have
	// attempts left, oldest first
	ListFailedForRetry(ctx context.Context, maxAttempts int) ([]*Invoice, error)

	// ListExhausted retrieves failed invoices whose attempts are used
	// up, oldest first
	ListExhausted(ctx context.Context, maxAttempts int) ([]*Invoice, error)
}
