package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/logger"
)

// SweepReadyOrdersCommandHandler re-broadcasts the backlog of orders waiting
// for a rider. It runs on the background path only: the limiter wait between
// consecutive broadcasts throttles courier-client traffic without ever
// blocking request handling.
type SweepReadyOrdersCommandHandler struct {
	uowFactory  OrderUoWFactory
	broadcaster BroadcastOrderCommandHandler
	limiter     *rate.Limiter
}

// NewSweepReadyOrdersCommandHandler creates a handler for backlog sweeps.
// The limiter paces consecutive broadcasts; pass nil for an unthrottled sweep
// in tests.
func NewSweepReadyOrdersCommandHandler(
	uowFactory OrderUoWFactory,
	broadcaster BroadcastOrderCommandHandler,
	limiter *rate.Limiter,
) SweepReadyOrdersCommandHandler {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return SweepReadyOrdersCommandHandler{
		uowFactory:  uowFactory,
		broadcaster: broadcaster,
		limiter:     limiter,
	}
}

// Handle fetches the waiting orders oldest-first and broadcasts each one,
// pacing broadcasts through the limiter. Per-order failures are collected in
// the report and logged with the order id; they never abort the sweep.
func (h SweepReadyOrdersCommandHandler) Handle(
	ctx context.Context,
	cmd SweepReadyOrdersCommand,
) (SweepReport, error) {
	if err := cmd.Validate(); err != nil {
		return SweepReport{}, err
	}

	log := logger.FromCtx(ctx)

	waiting, err := h.fetchWaiting(ctx)
	if err != nil {
		return SweepReport{}, err
	}

	report := SweepReport{Found: len(waiting)}
	for _, orderID := range waiting {
		if err = h.limiter.Wait(ctx); err != nil {
			report.Errors = append(report.Errors, err)
			return report, nil
		}

		if err = h.broadcast(ctx, orderID); err != nil {
			log.Warn("backlog broadcast failed",
				zap.String("order_id", orderID.String()), zap.Error(err))
			report.Errors = append(report.Errors, fmt.Errorf("order %s: %w", orderID, err))
			continue
		}
		report.Broadcast++
	}

	log.Info("backlog sweep finished",
		zap.Int("found", report.Found),
		zap.Int("broadcast", report.Broadcast),
		zap.Int("errors", len(report.Errors)))
	return report, nil
}

func (h SweepReadyOrdersCommandHandler) fetchWaiting(ctx context.Context) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders, err := uow.OrderRepository().GetAllReadyForPickup(ctx)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID())
	}
	return ids, nil
}

func (h SweepReadyOrdersCommandHandler) broadcast(ctx context.Context, orderID kernel.UUID) error {
	cmd, err := NewBroadcastOrderCommand(orderID)
	if err != nil {
		return err
	}
	return h.broadcaster.Handle(ctx, cmd)
}
