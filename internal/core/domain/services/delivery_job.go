package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/vendor"
	"fulfillment/internal/pkg/errs"
)

// deliveryJobTTL is how long a broadcast pickup offer stays claimable.
const deliveryJobTTL = 5 * time.Minute

// DeliveryJob is the ephemeral pickup offer broadcast to couriers when an
// order becomes ready. It is never persisted; couriers claim it by accepting
// the ASSIGNED transition before it expires.
type DeliveryJob struct {
	OrderID          kernel.UUID
	OrderNumber      string
	VendorID         kernel.UUID
	VendorName       string
	CustomerID       kernel.UUID
	CustomerName     string
	PickupAddress    string
	PickupLocation   kernel.GeoPoint
	DeliveryAddress  string
	DeliveryLocation kernel.GeoPoint
	DeliveryFee      kernel.Money
	DistanceKm       float64
	ItemSummary      string
	CreatedAt        time.Time
	ExpiresAt        time.Time
}

// IsExpired reports whether the offer can no longer be claimed.
func (j DeliveryJob) IsExpired(now time.Time) bool {
	return now.After(j.ExpiresAt)
}

// DeliveryJobBuilder is a domain service that assembles pickup offers from an
// order, its vendor, and the customer's display name.
type DeliveryJobBuilder struct{}

// NewDeliveryJobBuilder creates a new DeliveryJobBuilder instance.
func NewDeliveryJobBuilder() DeliveryJobBuilder {
	return DeliveryJobBuilder{}
}

// Build assembles the pickup offer for o. The vendor's registered address is
// the pickup point; the route distance is the great-circle distance from
// pickup to delivery. The offer expires five minutes after now.
func (b DeliveryJobBuilder) Build(
	o *order.Order,
	v vendor.Vendor,
	customerName string,
	now time.Time,
) (DeliveryJob, error) {
	if err := errors.Join(o.Validate(), v.Validate()); err != nil {
		return DeliveryJob{}, err
	}
	if o.Status() != order.ReadyForPickup {
		return DeliveryJob{}, errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("order %s is %s, not %s", o.ID(), o.Status(), order.ReadyForPickup))
	}

	distance, err := v.Location.DistanceKm(o.DeliveryAddress().Location)
	if err != nil {
		return DeliveryJob{}, err
	}

	return DeliveryJob{
		OrderID:          o.ID(),
		OrderNumber:      o.OrderNumber(),
		VendorID:         v.ID,
		VendorName:       v.Name,
		CustomerID:       o.CustomerID(),
		CustomerName:     customerName,
		PickupAddress:    v.Address,
		PickupLocation:   v.Location,
		DeliveryAddress:  o.DeliveryAddress().Text,
		DeliveryLocation: o.DeliveryAddress().Location,
		DeliveryFee:      o.Pricing().DeliveryFee,
		DistanceKm:       distance,
		ItemSummary:      summarizeItems(o.Items()),
		CreatedAt:        now,
		ExpiresAt:        now.Add(deliveryJobTTL),
	}, nil
}

// summarizeItems renders a short "2x Margherita, 1x Cola" line for the offer.
func summarizeItems(items []order.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity(), item.Name()))
	}
	return strings.Join(parts, ", ")
}
