package subscription

import (
	"context"
)

// Repository defines the interface for subscription persistence operations
type Repository interface {
	// Create creates a new subscription
	Create(ctx context.Context, subscription *Subscription) error

	// Get retrieves a subscription by ID
	Get(ctx context.Context, id string) (*Subscription, error)

	// Update updates an existing subscription
	Update(ctx context.Context, subscription *Subscription) error

	// GetByWorkspace retrieves the newest subscription for a workspace
	GetByWorkspace(ctx context.Context, workspaceID string) (*Subscription, error)

	// GetActiveByWorkspace retrieves the active subscription for a
	// workspace, if any
	GetActiveByWorkspace(ctx context.Context, workspaceID string) (*Subscription, error)
}
