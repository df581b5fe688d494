// Package realtimeclient merges an authoritative cached order snapshot with a
// stream of partial push events into one consistent view for display.
//
// Servers push small, field-level events; clients keep the last authoritative
// fetch per order and overlay the freshest pushed value of each individual
// field on top of it. The overlay is owned by the client and never written
// back to the server.
package realtimeclient

import (
	"time"
)

// Rider is the pushed rider contact block, optionally with a live position.
type Rider struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone"`
	VehicleType string     `json:"vehicleType"`
	Lat         *float64   `json:"lat,omitempty"`
	Lon         *float64   `json:"lon,omitempty"`
	ETA         *time.Time `json:"eta,omitempty"`
}

// OrderUpdate is a typed partial update for one order. Only non-nil fields
// carry information; absent fields leave the previously known values alone.
type OrderUpdate struct {
	OrderID               string
	Status                *string
	Rider                 *Rider
	EstimatedDeliveryTime *time.Time
	Cancelled             *CancellationNote

	// ArrivedAt is the local arrival time used for per-field precedence.
	ArrivedAt time.Time
}

// CancellationNote records that the order was cancelled, with the pushed
// reason when one was given.
type CancellationNote struct {
	Reason *string
}

// IsEmpty reports whether the update carries no fields at all.
func (u OrderUpdate) IsEmpty() bool {
	return u.Status == nil && u.Rider == nil && u.EstimatedDeliveryTime == nil && u.Cancelled == nil
}
