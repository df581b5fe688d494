package order

import (
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a state machine with defined transitions so orders follow the
// correct fulfillment workflow.
//
// State transitions:
//
//	PENDING ──> CONFIRMED ──> PREPARING ──> READY_FOR_PICKUP ──> ASSIGNED ──> PICKED_UP ──> OUT_FOR_DELIVERY ──> DELIVERED
//	   │            │             │                                 │  ▲
//	   │            │             │                                 │  └── (rider released, back to pickup pool)
//	   └────────────┴─────────────┴──────────── CANCELLED ◄─────────┘
//
// DELIVERED and CANCELLED are terminal. The map contains no self-loops, so a
// repeated update with the current status is rejected before any side effects.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status when an order is first created.
	Pending

	// Confirmed indicates the vendor has accepted the order.
	Confirmed

	// Preparing indicates the vendor is preparing the order.
	Preparing

	// ReadyForPickup indicates the order awaits a courier. Entering this
	// status triggers a dispatch broadcast.
	ReadyForPickup

	// Assigned indicates a courier has taken the delivery job.
	Assigned

	// PickedUp indicates the courier has collected the order from the vendor.
	PickedUp

	// OutForDelivery indicates the courier is en route to the customer.
	OutForDelivery

	// Delivered indicates the order reached the customer. Terminal.
	Delivered

	// Cancelled indicates the order was cancelled. Terminal.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "UNKNOWN",
		Pending:        "PENDING",
		Confirmed:      "CONFIRMED",
		Preparing:      "PREPARING",
		ReadyForPickup: "READY_FOR_PICKUP",
		Assigned:       "ASSIGNED",
		PickedUp:       "PICKED_UP",
		OutForDelivery: "OUT_FOR_DELIVERY",
		Delivered:      "DELIVERED",
		Cancelled:      "CANCELLED",
	}
}

// getTransitions returns the allowed forward transitions per status.
// Assigned -> ReadyForPickup is the rider-release path: an assigned rider
// backing out returns the order to the pickup pool instead of cancelling it.
func getTransitions() map[Status][]Status {
	return map[Status][]Status{
		Pending:        {Confirmed, Cancelled},
		Confirmed:      {Preparing, Cancelled},
		Preparing:      {ReadyForPickup, Cancelled},
		ReadyForPickup: {Assigned},
		Assigned:       {PickedUp, ReadyForPickup, Cancelled},
		PickedUp:       {OutForDelivery},
		OutForDelivery: {Delivered},
		Delivered:      {},
		Cancelled:      {},
	}
}

// getRoleTargets returns, per role, the set of target statuses the role may
// request via a status update. Ownership checks (own vendor / assigned rider)
// are enforced separately by the aggregate; customers only act through cancel.
func getRoleTargets() map[kernel.Role][]Status {
	return map[kernel.Role][]Status{
		kernel.RoleVendor: {Confirmed, Preparing, ReadyForPickup},
		kernel.RoleRider:  {PickedUp, OutForDelivery, Delivered},
		kernel.RoleAdmin: {
			Confirmed, Preparing, ReadyForPickup, Assigned,
			PickedUp, OutForDelivery, Delivered, Cancelled,
		},
		kernel.RoleCustomer: {},
	}
}

// StatusFromString parses the wire representation of a status.
func StatusFromString(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is a defined, non-Unknown status.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire representation of the status.
// Implements the fmt.Stringer interface and is safe on any value.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no further transitions exist from this status.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// RequiresRider reports whether orders in this status must carry a rider id.
// The rider id is non-nil exactly while the order is in the courier's hands.
func (s Status) RequiresRider() bool {
	switch s {
	case Assigned, PickedUp, OutForDelivery, Delivered:
		return true
	default:
		return false
	}
}

// IsCancellable reports whether the status is inside the cancellable set.
func (s Status) IsCancellable() bool {
	switch s {
	case Pending, Confirmed, Preparing, Assigned:
		return true
	default:
		return false
	}
}

// CanTransitionTo validates a transition from the current status to target.
// A repeated target equal to the current status is rejected: the map holds no
// self-loops, which keeps status updates idempotence-safe for side effects.
func (s Status) CanTransitionTo(target Status) error {
	if err := target.Validate(); err != nil {
		return err
	}

	for _, allowed := range getTransitions()[s] {
		if allowed == target {
			return nil
		}
	}

	return errs.NewValueIsInvalidErrorWithCause(
		"status",
		fmt.Errorf("transition %s -> %s is not allowed", s.String(), target.String()),
	)
}

// AllowedForRole reports whether the given role may request a transition to
// this status at all, before ownership checks.
func (s Status) AllowedForRole(role kernel.Role) bool {
	for _, allowed := range getRoleTargets()[role] {
		if allowed == s {
			return true
		}
	}
	return false
}
