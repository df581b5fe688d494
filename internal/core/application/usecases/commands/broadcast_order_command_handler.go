package commands

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/logger"
)

// BroadcastOrderCommandHandler builds the pickup offer for a ready order and
// enqueues it to the dispatch queue.
//
// The availability probe is informational: zero available couriers does not
// abort the flow, the job is still queued so a later-arriving courier can be
// matched by the consumer.
type BroadcastOrderCommandHandler struct {
	uowFactory UoWFactory
	queue      ports.DispatchQueue
	builder    services.DeliveryJobBuilder
}

// NewBroadcastOrderCommandHandler creates a handler for dispatch broadcasts.
func NewBroadcastOrderCommandHandler(
	uowFactory UoWFactory,
	queue ports.DispatchQueue,
) BroadcastOrderCommandHandler {
	return BroadcastOrderCommandHandler{
		uowFactory: uowFactory,
		queue:      queue,
		builder:    services.NewDeliveryJobBuilder(),
	}
}

// Handle builds and enqueues the pickup offer for the commanded order.
// The order must currently be ready for pickup.
func (h BroadcastOrderCommandHandler) Handle(ctx context.Context, cmd BroadcastOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	log := logger.FromCtx(ctx).With(zap.String("order_id", cmd.OrderID().String()))

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

	v, err := uow.VendorRepository().Get(ctx, o.VendorID())
	if err != nil {
		return err
	}

	customer, err := uow.UserDirectory().GetProfile(ctx, o.CustomerID())
	if err != nil {
		return err
	}

	available, err := uow.CourierRepository().GetAllAvailable(ctx)
	if err != nil {
		return err
	}
	if len(available) == 0 {
		log.Info("no couriers available, queueing offer anyway")
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	job, err := h.builder.Build(o, v, customer.Name, time.Now())
	if err != nil {
		return err
	}

	if err = h.queue.Enqueue(ctx, job); err != nil {
		return err
	}

	log.Info("pickup offer queued",
		zap.Int("available_couriers", len(available)),
		zap.Float64("distance_km", job.DistanceKm))
	return nil
}
