package commands

import (
	"time"
)

// Wire payloads for realtime events. Field names follow the client contract,
// so every payload marshals with camelCase JSON keys.

// NewOrderPayload announces a freshly placed order to the vendor and to the
// courier broadcast channel.
type NewOrderPayload struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	VendorID    string    `json:"vendorId"`
	CustomerID  string    `json:"customerId"`
	Status      string    `json:"status"`
	Total       int64     `json:"total"`
	Timestamp   time.Time `json:"timestamp"`
}

// OrderUpdatedPayload carries the changed order fields to the order channel.
type OrderUpdatedPayload struct {
	OrderID   string         `json:"orderId"`
	Order     map[string]any `json:"order"`
	Timestamp time.Time      `json:"timestamp"`
}

// OrderStatusUpdatePayload is the minimal status change pushed to the customer.
type OrderStatusUpdatePayload struct {
	OrderID   string    `json:"orderId"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RiderID   *string   `json:"riderId,omitempty"`
}

// RiderInfo is the rider contact block shared with the customer on assignment.
type RiderInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	VehicleType string `json:"vehicleType"`
}

// RiderAssignedPayload tells the customer who is delivering their order.
type RiderAssignedPayload struct {
	OrderID   string    `json:"orderId"`
	Rider     RiderInfo `json:"rider"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCancelledPayload announces a cancellation to the order channel.
type OrderCancelledPayload struct {
	OrderID   string    `json:"orderId"`
	Reason    *string   `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderAvailablePayload re-offers an order to all couriers after a rider
// backed out.
type OrderAvailablePayload struct {
	OrderID string `json:"orderId"`
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

// ETAUpdatePayload pushes a refreshed delivery estimate.
type ETAUpdatePayload struct {
	OrderID   string    `json:"orderId"`
	ETA       time.Time `json:"eta"`
	Timestamp time.Time `json:"timestamp"`
}
