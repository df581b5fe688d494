package order

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// ErrOrderIsNotConstructed is returned when an Order instance was not created
// through NewOrder or RestoreOrder. This ensures all orders are properly validated.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

// Pricing is the persisted price breakdown of an order.
// Invariant: Total == Subtotal + DeliveryFee + ServiceFee.
type Pricing struct {
	Subtotal    kernel.Money
	DeliveryFee kernel.Money
	ServiceFee  kernel.Money
	Total       kernel.Money
}

// Validate checks the pricing invariant.
func (p Pricing) Validate() error {
	if p.Subtotal.Add(p.DeliveryFee).Add(p.ServiceFee) != p.Total {
		return errs.NewValueIsInvalidErrorWithCause("total",
			fmt.Errorf("%d != %d + %d + %d", p.Total, p.Subtotal, p.DeliveryFee, p.ServiceFee))
	}
	return nil
}

// Address is a delivery destination: an optional label, the free-text address,
// and validated coordinates.
type Address struct {
	Label    string
	Text     string
	Location kernel.GeoPoint
}

// Validate checks that the address carries text and valid coordinates.
func (a Address) Validate() error {
	if a.Text == "" {
		return errs.NewValueIsRequiredError("deliveryAddress")
	}
	return a.Location.Validate()
}

// Order is the aggregate root for a customer's placed request, tracked from
// placement through delivery or cancellation.
//
// Order maintains these invariants:
//   - the pricing breakdown always sums (Pricing.Validate)
//   - riderID is non-nil exactly while status requires a rider
//     (ASSIGNED, PICKED_UP, OUT_FOR_DELIVERY, DELIVERED)
//   - status transitions follow the Status state machine and are gated by the
//     acting principal's role and ownership
//
// The struct uses private fields to ensure encapsulation; state changes go
// through ChangeStatus and Cancel, which enforce the permission table.
type Order struct {
	id                  kernel.UUID
	orderNumber         string
	status              Status
	vendorID            kernel.UUID
	customerID          kernel.UUID
	riderID             *kernel.UUID
	items               []OrderItem
	pricing             Pricing
	deliveryAddress     Address
	specialInstructions *string
	cancelledAt         *time.Time
	cancellationReason  *string
	eta                 *time.Time
	createdAt           time.Time
	updatedAt           time.Time

	guard guard.ConstructorGuard
}

// NewOrder creates a new order in PENDING status.
// All referenced identifiers, the items, the pricing breakdown, and the
// delivery address are validated; the order starts with no rider assigned.
func NewOrder(
	id kernel.UUID,
	orderNumber string,
	vendorID kernel.UUID,
	customerID kernel.UUID,
	items []OrderItem,
	pricing Pricing,
	deliveryAddress Address,
	specialInstructions *string,
	now time.Time,
) (*Order, error) {
	o := &Order{
		id:                  id,
		orderNumber:         orderNumber,
		status:              Pending,
		vendorID:            vendorID,
		customerID:          customerID,
		items:               items,
		pricing:             pricing,
		deliveryAddress:     deliveryAddress,
		specialInstructions: specialInstructions,
		createdAt:           now,
		updatedAt:           now,
		guard:               guard.NewConstructorGuard(),
	}

	if err := o.validateInvariants(); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder reconstructs an order aggregate from persistent storage.
// Unlike NewOrder, it accepts the full persisted state including status, rider
// assignment, and cancellation fields, and re-checks all invariants so corrupt
// rows cannot enter the domain.
func RestoreOrder(
	id kernel.UUID,
	orderNumber string,
	status Status,
	vendorID kernel.UUID,
	customerID kernel.UUID,
	riderID *kernel.UUID,
	items []OrderItem,
	pricing Pricing,
	deliveryAddress Address,
	specialInstructions *string,
	cancelledAt *time.Time,
	cancellationReason *string,
	eta *time.Time,
	createdAt time.Time,
	updatedAt time.Time,
) (*Order, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}

	o := &Order{
		id:                  id,
		orderNumber:         orderNumber,
		status:              status,
		vendorID:            vendorID,
		customerID:          customerID,
		riderID:             riderID,
		items:               items,
		pricing:             pricing,
		deliveryAddress:     deliveryAddress,
		specialInstructions: specialInstructions,
		cancelledAt:         cancelledAt,
		cancellationReason:  cancellationReason,
		eta:                 eta,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
		guard:               guard.NewConstructorGuard(),
	}

	if err := o.validateInvariants(); err != nil {
		return nil, err
	}

	return o, nil
}

func (o *Order) validateInvariants() error {
	if err := errors.Join(
		o.id.Validate(),
		o.vendorID.Validate(),
		o.customerID.Validate(),
		o.pricing.Validate(),
		o.deliveryAddress.Validate(),
	); err != nil {
		return err
	}

	if o.orderNumber == "" {
		return errs.NewValueIsRequiredError("orderNumber")
	}

	if len(o.items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}

	if o.riderID != nil && !o.status.RequiresRider() {
		return errs.NewValueIsInvalidErrorWithCause("riderId",
			fmt.Errorf("%s does not allow a rider assignment", o.status))
	}
	if o.riderID == nil && o.status.RequiresRider() {
		return errs.NewValueIsRequiredErrorWithCause("riderId",
			fmt.Errorf("%s requires a rider assignment", o.status))
	}

	return nil
}

// Validate ensures the Order was constructed through NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ChangeStatus applies a role-gated status transition requested by actor.
//
// The permission table gates the set of target statuses per role; ownership is
// checked on top of it: a vendor may only move its own vendor's orders, and a
// rider may only move orders currently assigned to them. Customers never change
// status directly (they act through Cancel). Admins may set any target.
//
// riderID is required when the target is ASSIGNED and ignored otherwise except
// that transitions out of the rider-carrying statuses clear the assignment.
// eta, when supplied, replaces the estimated delivery time.
//
// The order is left untouched when any check fails.
func (o *Order) ChangeStatus(
	actor kernel.Actor,
	target Status,
	riderID *kernel.UUID,
	eta *time.Time,
	now time.Time,
) error {
	if err := errors.Join(o.Validate(), actor.Validate()); err != nil {
		return err
	}
	if err := target.Validate(); err != nil {
		return err
	}

	if !target.AllowedForRole(actor.Role) {
		return errs.NewUnauthorizedError(actor.Role.String(),
			fmt.Sprintf("set status %s", target))
	}

	switch actor.Role {
	case kernel.RoleVendor:
		if !actor.ActsForVendor(o.vendorID) {
			return errs.NewUnauthorizedErrorWithCause(actor.Role.String(),
				fmt.Sprintf("set status %s", target),
				errors.New("order belongs to another vendor"))
		}
	case kernel.RoleRider:
		if o.riderID == nil || !o.riderID.IsEqual(actor.ID) {
			return errs.NewUnauthorizedErrorWithCause(actor.Role.String(),
				fmt.Sprintf("set status %s", target),
				errors.New("order is not assigned to this rider"))
		}
	}

	if err := o.status.CanTransitionTo(target); err != nil {
		return err
	}

	switch {
	case target == Assigned:
		if riderID == nil {
			return errs.NewValueIsRequiredError("riderId")
		}
		if err := riderID.Validate(); err != nil {
			return err
		}
		o.riderID = riderID
	case target == ReadyForPickup:
		// Assigned -> ReadyForPickup releases the rider back to the pool.
		o.riderID = nil
	case target == Cancelled:
		o.riderID = nil
		o.cancelledAt = &now
	}

	if eta != nil {
		o.eta = eta
	}

	o.status = target
	o.updatedAt = now
	return nil
}

// Cancel cancels the order on behalf of actor, enforcing the per-role windows:
//
//   - customer: own order, while PENDING or CONFIRMED
//   - vendor: own vendor's order, while PENDING, CONFIRMED, or PREPARING
//   - rider: only an order assigned to them, while ASSIGNED
//   - admin: any order inside the cancellable set
//
// When the cancelling actor is the assigned rider, the order is NOT cancelled:
// it reverts to READY_FOR_PICKUP with the rider cleared so it can be
// re-broadcast. Cancel reports this with reverted == true. Every other actor
// marks the order CANCELLED with the cancellation timestamp and reason set.
func (o *Order) Cancel(actor kernel.Actor, reason *string, now time.Time) (reverted bool, err error) {
	if err = errors.Join(o.Validate(), actor.Validate()); err != nil {
		return false, err
	}

	if !o.status.IsCancellable() {
		return false, errs.NewNotCancellableError(o.id.String(), o.status.String())
	}

	switch actor.Role {
	case kernel.RoleCustomer:
		if !o.customerID.IsEqual(actor.ID) {
			return false, errs.NewUnauthorizedErrorWithCause(actor.Role.String(), "cancel order",
				errors.New("order belongs to another customer"))
		}
		if o.status != Pending && o.status != Confirmed {
			return false, errs.NewUnauthorizedErrorWithCause(actor.Role.String(), "cancel order",
				fmt.Errorf("customer may not cancel while %s", o.status))
		}
	case kernel.RoleVendor:
		if !actor.ActsForVendor(o.vendorID) {
			return false, errs.NewUnauthorizedErrorWithCause(actor.Role.String(), "cancel order",
				errors.New("order belongs to another vendor"))
		}
		if o.status != Pending && o.status != Confirmed && o.status != Preparing {
			return false, errs.NewUnauthorizedErrorWithCause(actor.Role.String(), "cancel order",
				fmt.Errorf("vendor may not cancel while %s", o.status))
		}
	case kernel.RoleRider:
		if o.status != Assigned || o.riderID == nil || !o.riderID.IsEqual(actor.ID) {
			return false, errs.NewUnauthorizedErrorWithCause(actor.Role.String(), "cancel order",
				errors.New("order is not assigned to this rider"))
		}
	case kernel.RoleAdmin:
		// Admin may cancel anything inside the cancellable set.
	}

	if actor.Role == kernel.RoleRider {
		o.status = ReadyForPickup
		o.riderID = nil
		o.updatedAt = now
		return true, nil
	}

	o.status = Cancelled
	o.riderID = nil
	o.cancelledAt = &now
	o.cancellationReason = reason
	o.updatedAt = now
	return false, nil
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// OrderNumber returns the human-readable order number.
func (o *Order) OrderNumber() string {
	return o.orderNumber
}

// Status returns the current lifecycle status.
func (o *Order) Status() Status {
	return o.status
}

// VendorID returns the vendor the order was placed with.
func (o *Order) VendorID() kernel.UUID {
	return o.vendorID
}

// CustomerID returns the customer that placed the order.
func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// RiderID returns the assigned rider's id, or nil while unassigned.
func (o *Order) RiderID() *kernel.UUID {
	return o.riderID
}

// Items returns the ordered items.
func (o *Order) Items() []OrderItem {
	return o.items
}

// Pricing returns the price breakdown.
func (o *Order) Pricing() Pricing {
	return o.pricing
}

// DeliveryAddress returns the delivery destination.
func (o *Order) DeliveryAddress() Address {
	return o.deliveryAddress
}

// SpecialInstructions returns the customer's note to the vendor, if any.
func (o *Order) SpecialInstructions() *string {
	return o.specialInstructions
}

// CancelledAt returns when the order was cancelled, if it was.
func (o *Order) CancelledAt() *time.Time {
	return o.cancelledAt
}

// CancellationReason returns the recorded cancellation reason, if any.
func (o *Order) CancellationReason() *string {
	return o.cancellationReason
}

// ETA returns the estimated delivery time, if known.
func (o *Order) ETA() *time.Time {
	return o.eta
}

// CreatedAt returns the creation timestamp.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// UpdatedAt returns the last modification timestamp.
func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}
