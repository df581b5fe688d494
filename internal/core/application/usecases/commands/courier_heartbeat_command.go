package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrCourierHeartbeatCommandIsNotConstructed = errors.New(
	"CourierHeartbeatCommand must be created via NewCourierHeartbeatCommand constructor",
)

// CourierHeartbeatCommand reports a courier's current position. A heartbeat
// also brings an offline courier back online.
type CourierHeartbeatCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	actor     kernel.Actor
	location  kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewCourierHeartbeatCommand creates a heartbeat command.
// Riders may only report their own position; the check runs in the handler.
func NewCourierHeartbeatCommand(
	courierID kernel.UUID,
	actor kernel.Actor,
	location kernel.GeoPoint,
) (CourierHeartbeatCommand, error) {
	cmd := CourierHeartbeatCommand{
		location: location,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCourierID(courierID),
		cmd.setActor(actor),
		location.Validate(),
	); err != nil {
		return CourierHeartbeatCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CourierHeartbeatCommand) Validate() error {
	return c.guard.Validate(ErrCourierHeartbeatCommandIsNotConstructed)
}

// CourierID returns the courier being updated.
func (c CourierHeartbeatCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Actor returns the acting principal.
func (c CourierHeartbeatCommand) Actor() kernel.Actor {
	return c.actor
}

// Location returns the reported position.
func (c CourierHeartbeatCommand) Location() kernel.GeoPoint {
	return c.location
}

func (c *CourierHeartbeatCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	c.courierID = courierID
	return nil
}

func (c *CourierHeartbeatCommand) setActor(actor kernel.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	c.actor = actor
	return nil
}
