// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries bypass the domain aggregates and read optimized projections
// straight from the database.
package queries

import (
	"time"
)

// OrderProjection is the formatted order shape every endpoint returns:
// the order with its items and add-ons, the vendor's display name, and the
// assigned rider's contact when one exists. Mutating endpoints reuse this
// same shape so clients always parse one format.
type OrderProjection struct {
	ID                    string              `json:"id"`
	OrderNumber           string              `json:"orderNumber"`
	Status                string              `json:"status"`
	VendorID              string              `json:"vendorId"`
	VendorName            string              `json:"vendorName"`
	CustomerID            string              `json:"customerId"`
	Rider                 *RiderContact       `json:"rider,omitempty"`
	Items                 []ItemProjection    `json:"items"`
	Pricing               PricingProjection   `json:"pricing"`
	DeliveryAddress       AddressProjection   `json:"deliveryAddress"`
	SpecialInstructions   *string             `json:"specialInstructions,omitempty"`
	CancelledAt           *time.Time          `json:"cancelledAt,omitempty"`
	CancellationReason    *string             `json:"cancellationReason,omitempty"`
	EstimatedDeliveryTime *time.Time          `json:"estimatedDeliveryTime,omitempty"`
	CreatedAt             time.Time           `json:"createdAt"`
	UpdatedAt             time.Time           `json:"updatedAt"`
}

// RiderContact is the assigned rider's contact block.
type RiderContact struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	VehicleType string `json:"vehicleType"`
}

// ItemProjection is one order line with its add-on selections.
type ItemProjection struct {
	MenuItemID string            `json:"menuItemId"`
	Name       string            `json:"name"`
	Quantity   int               `json:"quantity"`
	UnitPrice  int64             `json:"unitPrice"`
	TotalPrice int64             `json:"totalPrice"`
	AddOns     []AddOnProjection `json:"addOns,omitempty"`
}

// AddOnProjection is one selected add-on on an order line.
type AddOnProjection struct {
	AddOnID  string `json:"addOnId"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// PricingProjection is the order's price breakdown in minor units.
type PricingProjection struct {
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"deliveryFee"`
	ServiceFee  int64 `json:"serviceFee"`
	Total       int64 `json:"total"`
}

// AddressProjection is the delivery destination.
type AddressProjection struct {
	Label string  `json:"label,omitempty"`
	Text  string  `json:"text"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}
