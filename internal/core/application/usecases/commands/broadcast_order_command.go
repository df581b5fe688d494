package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrBroadcastOrderCommandIsNotConstructed = errors.New(
	"BroadcastOrderCommand must be created via NewBroadcastOrderCommand constructor",
)

// BroadcastOrderCommand requests that a ready order's pickup offer be built
// and queued for courier matching.
type BroadcastOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewBroadcastOrderCommand creates a command to broadcast the given order.
func NewBroadcastOrderCommand(orderID kernel.UUID) (BroadcastOrderCommand, error) {
	cmd := BroadcastOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setOrderID(orderID); err != nil {
		return BroadcastOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c BroadcastOrderCommand) Validate() error {
	return c.guard.Validate(ErrBroadcastOrderCommandIsNotConstructed)
}

// OrderID returns the order to broadcast.
func (c BroadcastOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c *BroadcastOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}
