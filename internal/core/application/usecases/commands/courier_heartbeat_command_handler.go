package commands

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/logger"
)

// CourierHeartbeatCommandHandler records a courier's position report.
// The first heartbeat after a silence also flips the courier online, which
// callers use to trigger a backlog sweep.
type CourierHeartbeatCommandHandler struct {
	uowFactory UoWFactory
}

// NewCourierHeartbeatCommandHandler creates a handler for courier heartbeats.
func NewCourierHeartbeatCommandHandler(uowFactory UoWFactory) CourierHeartbeatCommandHandler {
	return CourierHeartbeatCommandHandler{uowFactory: uowFactory}
}

// Handle processes the heartbeat. Returns true when the courier was offline
// before this report and is online now.
func (h CourierHeartbeatCommandHandler) Handle(
	ctx context.Context,
	cmd CourierHeartbeatCommand,
) (bool, error) {
	if err := cmd.Validate(); err != nil {
		return false, err
	}

	if err := h.authorize(cmd.Actor(), cmd.CourierID()); err != nil {
		return false, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	c, err := uow.CourierRepository().Get(ctx, cmd.CourierID())
	if err != nil {
		return false, err
	}

	cameOnline := !c.IsOnline()
	if err = c.Heartbeat(cmd.Location(), time.Now()); err != nil {
		return false, err
	}

	if err = uow.CourierRepository().Update(ctx, c); err != nil {
		return false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return false, err
	}

	if cameOnline {
		logger.FromCtx(ctx).Info("courier came online",
			zap.String("courier_id", c.ID().String()))
	}
	return cameOnline, nil
}

func (h CourierHeartbeatCommandHandler) authorize(actor kernel.Actor, courierID kernel.UUID) error {
	switch actor.Role {
	case kernel.RoleAdmin:
		return nil
	case kernel.RoleRider:
		if actor.ID.IsEqual(courierID) {
			return nil
		}
		return errs.NewUnauthorizedError(string(actor.Role), "report another courier's position")
	default:
		return errs.NewUnauthorizedError(string(actor.Role), "report courier position")
	}
}
