package commands

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/logger"
)

// riderAssignedDelay staggers the rider_assigned event behind the status
// event so client UI updates are not starved.
const riderAssignedDelay = 300 * time.Millisecond

// UpdateOrderStatusCommandHandler applies role-gated status transitions.
//
// The write is a status-guarded read-modify-write: the update only applies
// while the stored status still equals the one the aggregate was loaded at,
// so two concurrent transitions against the same order cannot both win. A
// losing write surfaces as errs.ErrConflict; the caller may retry once.
//
// Side effects by target status:
//   - ReadyForPickup: pickup offer broadcast after commit
//   - PickedUp: assigned rider marked busy, in the same transaction
//   - Delivered: rider freed in the same transaction, then a backlog sweep
//     kicks off on a background goroutine
type UpdateOrderStatusCommandHandler struct {
	uowFactory  UoWFactory
	publisher   ports.EventPublisher
	broadcaster BroadcastOrderCommandHandler
	sweeper     SweepReadyOrdersCommandHandler
}

// NewUpdateOrderStatusCommandHandler creates a handler for status transitions.
func NewUpdateOrderStatusCommandHandler(
	uowFactory UoWFactory,
	publisher ports.EventPublisher,
	broadcaster BroadcastOrderCommandHandler,
	sweeper SweepReadyOrdersCommandHandler,
) UpdateOrderStatusCommandHandler {
	return UpdateOrderStatusCommandHandler{
		uowFactory:  uowFactory,
		publisher:   publisher,
		broadcaster: broadcaster,
		sweeper:     sweeper,
	}
}

// Handle processes the status change command.
// Emission failures after commit are logged and never undo the transition.
func (h UpdateOrderStatusCommandHandler) Handle(ctx context.Context, cmd UpdateOrderStatusCommand) error {
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

	if err = o.ChangeStatus(cmd.Actor(), cmd.Target(), cmd.RiderID(), cmd.ETA(), time.Now()); err != nil {
		return err
	}

	var rider ports.UserProfile
	if cmd.Target() == order.Assigned {
		if rider, err = uow.UserDirectory().GetProfile(ctx, *cmd.RiderID()); err != nil {
			return err
		}
	}

	if err = uow.OrderRepository().Update(ctx, o, loadedAt); err != nil {
		return err
	}

	if err = h.flipRiderAvailability(ctx, uow, o, cmd.Target()); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.fanOut(ctx, o, cmd, rider)
	return nil
}

// flipRiderAvailability keeps the rider pool in sync with the delivery phase:
// picking an order up makes the rider busy, delivering it frees them again.
func (h UpdateOrderStatusCommandHandler) flipRiderAvailability(
	ctx context.Context,
	uow UoW,
	o *order.Order,
	target order.Status,
) error {
	if o.RiderID() == nil || (target != order.PickedUp && target != order.Delivered) {
		return nil
	}

	rider, err := uow.CourierRepository().Get(ctx, *o.RiderID())
	if err != nil {
		return err
	}

	if target == order.PickedUp {
		err = rider.SetBusy()
	} else {
		err = rider.SetFree()
	}
	if err != nil {
		return err
	}

	return uow.CourierRepository().Update(ctx, rider)
}

func (h UpdateOrderStatusCommandHandler) fanOut(
	ctx context.Context,
	o *order.Order,
	cmd UpdateOrderStatusCommand,
	rider ports.UserProfile,
) {
	log := logger.FromCtx(ctx).With(zap.String("order_id", o.ID().String()))
	now := time.Now()

	var riderID *string
	if o.RiderID() != nil {
		s := o.RiderID().String()
		riderID = &s
	}

	h.publisher.Publish(ports.OrderChannel(o.ID()), ports.EventOrderUpdated, OrderUpdatedPayload{
		OrderID: o.ID().String(),
		Order: map[string]any{
			"id":      o.ID().String(),
			"status":  o.Status().String(),
			"riderId": riderID,
			"eta":     o.ETA(),
		},
		Timestamp: now,
	})

	h.publisher.Publish(ports.CustomerChannel(o.CustomerID()), ports.EventOrderStatusUpdate,
		OrderStatusUpdatePayload{
			OrderID:   o.ID().String(),
			Status:    o.Status().String(),
			Timestamp: now,
			RiderID:   riderID,
		})

	if cmd.ETA() != nil {
		h.publisher.Publish(ports.OrderChannel(o.ID()), ports.EventETAUpdate, ETAUpdatePayload{
			OrderID:   o.ID().String(),
			ETA:       *cmd.ETA(),
			Timestamp: now,
		})
	}

	switch cmd.Target() {
	case order.Assigned:
		// Stagger behind the status event.
		customerChannel := ports.CustomerChannel(o.CustomerID())
		payload := RiderAssignedPayload{
			OrderID: o.ID().String(),
			Rider: RiderInfo{
				ID:          rider.ID.String(),
				Name:        rider.Name,
				Phone:       rider.Phone,
				VehicleType: rider.VehicleType,
			},
			Timestamp: now,
		}
		time.AfterFunc(riderAssignedDelay, func() {
			h.publisher.Publish(customerChannel, ports.EventRiderAssigned, payload)
		})
	case order.ReadyForPickup:
		if err := h.broadcast(ctx, o); err != nil {
			log.Warn("pickup broadcast failed", zap.Error(err))
		}
	case order.Delivered:
		background := context.WithoutCancel(ctx)
		go func() {
			if _, err := h.sweeper.Handle(background, NewSweepReadyOrdersCommand()); err != nil {
				logger.FromCtx(background).Warn("post-delivery sweep failed", zap.Error(err))
			}
		}()
	}
}

func (h UpdateOrderStatusCommandHandler) broadcast(ctx context.Context, o *order.Order) error {
	cmd, err := NewBroadcastOrderCommand(o.ID())
	if err != nil {
		return err
	}
	return h.broadcaster.Handle(ctx, cmd)
}
