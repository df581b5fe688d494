package commands

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/logger"
)

// CancelOrderCommandHandler cancels orders within the per-role windows.
//
// An assigned rider backing out is the special case: the order is not
// cancelled but reverts to ReadyForPickup, the rider is cleared and freed in
// the same transaction, and the offer is re-broadcast to all couriers.
type CancelOrderCommandHandler struct {
	uowFactory  UoWFactory
	publisher   ports.EventPublisher
	broadcaster BroadcastOrderCommandHandler
}

// NewCancelOrderCommandHandler creates a handler for order cancellation.
func NewCancelOrderCommandHandler(
	uowFactory UoWFactory,
	publisher ports.EventPublisher,
	broadcaster BroadcastOrderCommandHandler,
) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory:  uowFactory,
		publisher:   publisher,
		broadcaster: broadcaster,
	}
}

// Handle processes the cancellation command.
func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	loadedAt := o.Status()
	freedRider := o.RiderID()

	reverted, err := o.Cancel(cmd.Actor(), cmd.Reason(), time.Now())
	if err != nil {
		return err
	}

	if err = uow.OrderRepository().Update(ctx, o, loadedAt); err != nil {
		return err
	}

	// Whichever way an assigned order leaves the rider, that rider goes back
	// to the pool inside the same transaction.
	if loadedAt == order.Assigned && freedRider != nil {
		if err = h.freeRider(ctx, uow, *freedRider); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.fanOut(ctx, o, cmd, reverted)
	return nil
}

func (h CancelOrderCommandHandler) freeRider(ctx context.Context, uow UoW, riderID kernel.UUID) error {
	rider, err := uow.CourierRepository().Get(ctx, riderID)
	if err != nil {
		return err
	}
	// An assigned rider has not picked up yet, so they are usually not busy;
	// only flip the flag when it is set.
	if rider.IsBusy() {
		if err = rider.SetFree(); err != nil {
			return err
		}
		return uow.CourierRepository().Update(ctx, rider)
	}
	return nil
}

func (h CancelOrderCommandHandler) fanOut(ctx context.Context, o *order.Order, cmd CancelOrderCommand, reverted bool) {
	log := logger.FromCtx(ctx).With(zap.String("order_id", o.ID().String()))
	now := time.Now()

	h.publisher.Publish(ports.OrderChannel(o.ID()), ports.EventOrderCancelled, OrderCancelledPayload{
		OrderID:   o.ID().String(),
		Reason:    cmd.Reason(),
		Timestamp: now,
	})

	if !reverted {
		return
	}

	h.publisher.Publish(ports.ChannelCouriers, ports.EventOrderAvailable, OrderAvailablePayload{
		OrderID: o.ID().String(),
		Message: "Order is available for pickup again",
		Reason:  "rider_cancelled",
	})

	broadcast, err := NewBroadcastOrderCommand(o.ID())
	if err == nil {
		err = h.broadcaster.Handle(ctx, broadcast)
	}
	if err != nil {
		log.Warn("re-broadcast after rider cancel failed", zap.Error(err))
	}
}
