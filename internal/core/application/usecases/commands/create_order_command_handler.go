package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/logger"
)

// newOrderNotifyDelay holds back the vendor's "new order" notification so the
// realtime event lands before the push notification does.
const newOrderNotifyDelay = 3 * time.Second

// CreateOrderCommandHandler handles the business logic for order placement.
// Verifies the vendor, prices the selections against the catalog, persists the
// order atomically, and fans out the NEW_ORDER event plus the delayed vendor
// notification after commit.
type CreateOrderCommandHandler struct {
	uowFactory UoWFactory
	calculator services.PricingCalculator
	publisher  ports.EventPublisher
	notifier   ports.Notifier
}

// NewCreateOrderCommandHandler creates a handler for order placement.
func NewCreateOrderCommandHandler(
	uowFactory UoWFactory,
	calculator services.PricingCalculator,
	publisher ports.EventPublisher,
	notifier ports.Notifier,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		calculator: calculator,
		publisher:  publisher,
		notifier:   notifier,
	}
}

// Handle processes the order placement command and returns the new order's id.
// The caller renders the response from the order projection query.
//
// Emission and notification failures are logged and never roll back the
// already-committed order.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (kernel.UUID, error) {
	if err := cmd.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	v, err := uow.VendorRepository().Get(ctx, cmd.VendorID())
	if err != nil {
		return kernel.UUID{}, err
	}
	if !v.IsActive {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("vendorId",
			fmt.Errorf("vendor %s is not accepting orders", v.ID))
	}

	itemIDs := make([]kernel.UUID, 0, len(cmd.Items()))
	for _, selection := range cmd.Items() {
		itemIDs = append(itemIDs, selection.MenuItemID)
	}

	catalog, err := uow.VendorRepository().GetMenuItems(ctx, cmd.VendorID(), itemIDs)
	if err != nil {
		return kernel.UUID{}, err
	}

	items, pricing, err := h.calculator.Price(catalog, cmd.Items())
	if err != nil {
		return kernel.UUID{}, err
	}

	now := time.Now()
	newOrder, err := order.NewOrder(
		kernel.NewUUID(),
		generateOrderNumber(now),
		cmd.VendorID(),
		cmd.CustomerID(),
		items,
		pricing,
		cmd.DeliveryAddress(),
		cmd.SpecialInstructions(),
		now,
	)
	if err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, err
	}

	h.fanOut(ctx, newOrder)
	return newOrder.ID(), nil
}

func (h CreateOrderCommandHandler) fanOut(ctx context.Context, o *order.Order) {
	payload := NewOrderPayload{
		OrderID:     o.ID().String(),
		OrderNumber: o.OrderNumber(),
		VendorID:    o.VendorID().String(),
		CustomerID:  o.CustomerID().String(),
		Status:      o.Status().String(),
		Total:       o.Pricing().Total.Int64(),
		Timestamp:   time.Now(),
	}

	h.publisher.Publish(ports.VendorChannel(o.VendorID()), ports.EventNewOrder, payload)
	h.publisher.Publish(ports.VendorOrdersChannel(o.VendorID()), ports.EventNewOrder, payload)
	h.publisher.Publish(ports.ChannelCouriers, ports.EventNewOrder, payload)
	h.publisher.Publish(ports.OrderChannel(o.ID()), ports.EventNewOrder, payload)

	notification := ports.Notification{
		ID:         kernel.NewUUID(),
		TargetType: ports.NotifyVendor,
		TargetID:   o.VendorID(),
		Type:       "new_order",
		Title:      "New order",
		Message:    fmt.Sprintf("Order %s is waiting for confirmation", o.OrderNumber()),
		Data:       map[string]any{"orderId": o.ID().String()},
		Priority:   "high",
		Timestamp:  time.Now(),
	}
	if err := h.notifier.NotifyDelayed(ctx, notification, newOrderNotifyDelay); err != nil &&
		!errors.Is(err, context.Canceled) {
		logger.FromCtx(ctx).Warn("vendor notification not enqueued",
			zap.String("order_id", o.ID().String()), zap.Error(err))
	}
}
