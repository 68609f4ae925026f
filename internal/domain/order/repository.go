package order

import "context"

// Repository defines the read/write contract against the order store.
// The store itself is owned by the dashboard; this service only updates
// provisioning-related fields.
type Repository interface {
	// FindByID retrieves an order. Returns (nil, nil) when absent.
	FindByID(ctx context.Context, id int64) (*Order, error)

	// Save persists an order (create or update).
	Save(ctx context.Context, o *Order) error

	// UpdateIPAddress backfills the address once the provider reports it.
	UpdateIPAddress(ctx context.Context, id int64, ip string) error
}
