// Package ports defines the contracts between the application core and
// infrastructure adapters: repositories, the unit of work, the dispatch queue,
// the notification collaborator, and the realtime event transport. These
// interfaces enable dependency inversion and testability.
package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate with its items and add-on
	// selections in the ambient transaction.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order, guarded by the status
	// the aggregate was loaded at. The write applies only when the stored
	// status still equals expectedStatus; a concurrent change surfaces as
	// errs.ErrConflict and the caller decides whether to retry.
	Update(ctx context.Context, aggregate *order.Order, expectedStatus order.Status) error

	// Get retrieves an order aggregate with its items by unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetAllReadyForPickup retrieves orders waiting for a rider,
	// oldest first. Used by the backlog sweep.
	GetAllReadyForPickup(ctx context.Context) ([]*order.Order, error)
}
