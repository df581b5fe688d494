package kernel

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Role identifies the kind of principal performing an operation.
// Roles gate which order status transitions an actor may request.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleRider    Role = "rider"
	RoleAdmin    Role = "admin"
)

// ParseRole converts a string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleVendor, RoleRider, RoleAdmin:
		return Role(s), nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", s))
	}
}

// Validate checks that the role is one of the known values.
func (r Role) Validate() error {
	_, err := ParseRole(string(r))
	return err
}

// String returns the role name.
func (r Role) String() string {
	return string(r)
}

// Actor is the authenticated principal behind a request. ID is the principal's
// own identifier (user, rider, or admin id); VendorID is set only for vendor
// principals and identifies the vendor they act for.
type Actor struct {
	ID       UUID
	Role     Role
	VendorID *UUID
}

// NewActor creates an actor with a validated id and role.
func NewActor(id UUID, role Role) (Actor, error) {
	if err := id.Validate(); err != nil {
		return Actor{}, err
	}
	if err := role.Validate(); err != nil {
		return Actor{}, err
	}
	return Actor{ID: id, Role: role}, nil
}

// NewVendorActor creates a vendor actor bound to the vendor it acts for.
func NewVendorActor(id UUID, vendorID UUID) (Actor, error) {
	actor, err := NewActor(id, RoleVendor)
	if err != nil {
		return Actor{}, err
	}
	if err = vendorID.Validate(); err != nil {
		return Actor{}, err
	}
	actor.VendorID = &vendorID
	return actor, nil
}

// Validate checks the actor's id and role.
func (a Actor) Validate() error {
	if err := a.ID.Validate(); err != nil {
		return err
	}
	return a.Role.Validate()
}

// ActsForVendor reports whether the actor is a vendor principal of the given vendor.
func (a Actor) ActsForVendor(vendorID UUID) bool {
	return a.Role == RoleVendor && a.VendorID != nil && a.VendorID.IsEqual(vendorID)
}
