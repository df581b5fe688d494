package commands

import (
	"errors"

	"fulfillment/internal/pkg/guard"
)

var ErrSweepReadyOrdersCommandIsNotConstructed = errors.New(
	"SweepReadyOrdersCommand must be created via NewSweepReadyOrdersCommand constructor",
)

// SweepReadyOrdersCommand requests a backlog sweep: re-broadcast every order
// waiting for a rider.
type SweepReadyOrdersCommand struct {
	guard guard.ConstructorGuard
}

// NewSweepReadyOrdersCommand creates a parameterless backlog sweep command.
func NewSweepReadyOrdersCommand() SweepReadyOrdersCommand {
	return SweepReadyOrdersCommand{guard: guard.NewConstructorGuard()}
}

// Validate ensures the command was created through the constructor.
func (c SweepReadyOrdersCommand) Validate() error {
	return c.guard.Validate(ErrSweepReadyOrdersCommandIsNotConstructed)
}

// SweepReport summarizes one backlog sweep: how many waiting orders were
// found, how many offers went out, and the individual failures. A single
// order's failure never aborts the sweep.
type SweepReport struct {
	Found     int
	Broadcast int
	Errors    []error
}
