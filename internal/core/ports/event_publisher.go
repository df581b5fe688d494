package ports

import (
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
)

// Realtime channel names. Per-entity channels are built with the helpers below.
const (
	ChannelCouriers = "couriers"
)

// OrderChannel is the per-order room all parties to the order may join.
func OrderChannel(id kernel.UUID) string {
	return fmt.Sprintf("order:%s", id)
}

// VendorChannel is the vendor's own room.
func VendorChannel(id kernel.UUID) string {
	return fmt.Sprintf("vendor:%s", id)
}

// VendorOrdersChannel carries vendor order-list refreshes.
func VendorOrdersChannel(id kernel.UUID) string {
	return fmt.Sprintf("vendor:%s:orders", id)
}

// CustomerChannel is the customer's own room.
func CustomerChannel(id kernel.UUID) string {
	return fmt.Sprintf("customer:%s", id)
}

// Realtime event names.
const (
	EventNewOrder          = "NEW_ORDER"
	EventOrderUpdated      = "ORDER_UPDATED"
	EventOrderStatusUpdate = "order_status_update"
	EventRiderAssigned     = "rider_assigned"
	EventOrderCancelled    = "order_cancelled"
	EventETAUpdate         = "eta_update"
	EventOrderAvailable    = "ORDER_AVAILABLE_FOR_PICKUP"
)

// EventPublisher is the realtime transport the core pushes events through.
//
// Publish is fire-and-forget and at-most-once per call: delivery is never
// guaranteed, transport errors are logged by the adapter and never surface to
// the caller, and the call must not block request handling.
type EventPublisher interface {
	Publish(channel, event string, payload any)
}
