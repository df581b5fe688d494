// Package order contains the Order aggregate and its lifecycle state machine.
//
// An Order is placed by a customer with a vendor, moves through a fixed set of
// statuses (see Status), and may end DELIVERED or CANCELLED. Status changes are
// role-gated: vendors run the preparation phase, riders run the delivery phase,
// admins may force any transition, and customers act only through cancellation.
//
// The aggregate owns its pricing breakdown (Pricing), its line items
// (OrderItem with optional AddOnSelection entries), and the delivery Address.
// Every construction path re-validates the invariants, so no code outside this
// package can produce an order in an inconsistent state.
package order
