package ports

import (
	"context"

	"fulfillment/internal/core/domain/services"
)

// DispatchQueue is the queue collaborator that carries pickup offers to the
// courier-matching consumer. Acceptance is at-least-once; the consumer owns
// courier ranking and claim resolution.
type DispatchQueue interface {
	Enqueue(ctx context.Context, job services.DeliveryJob) error
}
