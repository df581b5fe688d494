package commands

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var ErrUpdateOrderStatusCommandIsNotConstructed = errors.New(
	"UpdateOrderStatusCommand must be created via NewUpdateOrderStatusCommand constructor",
)

// UpdateOrderStatusCommand represents an actor's request to move an order to
// a new lifecycle status, optionally supplying the rider being assigned and a
// refreshed delivery estimate.
type UpdateOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actor   kernel.Actor
	target  order.Status
	riderID *kernel.UUID
	eta     *time.Time

	guard guard.ConstructorGuard
}

// NewUpdateOrderStatusCommand creates a status change command.
// The role gate and ownership checks run later, on the loaded aggregate; the
// command only validates its inputs.
func NewUpdateOrderStatusCommand(
	orderID kernel.UUID,
	actor kernel.Actor,
	target order.Status,
	riderID *kernel.UUID,
	eta *time.Time,
) (UpdateOrderStatusCommand, error) {
	cmd := UpdateOrderStatusCommand{
		riderID: riderID,
		eta:     eta,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setActor(actor),
		cmd.setTarget(target),
	); err != nil {
		return UpdateOrderStatusCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateOrderStatusCommandIsNotConstructed)
}

// OrderID returns the order to move.
func (c UpdateOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Actor returns the principal requesting the change.
func (c UpdateOrderStatusCommand) Actor() kernel.Actor {
	return c.actor
}

// Target returns the requested status.
func (c UpdateOrderStatusCommand) Target() order.Status {
	return c.target
}

// RiderID returns the rider being assigned, if any.
func (c UpdateOrderStatusCommand) RiderID() *kernel.UUID {
	return c.riderID
}

// ETA returns the refreshed delivery estimate, if any.
func (c UpdateOrderStatusCommand) ETA() *time.Time {
	return c.eta
}

func (c *UpdateOrderStatusCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *UpdateOrderStatusCommand) setActor(actor kernel.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	c.actor = actor
	return nil
}

func (c *UpdateOrderStatusCommand) setTarget(target order.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}
	c.target = target
	return nil
}
