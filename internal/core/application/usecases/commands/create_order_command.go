package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a customer's request to place an order with a
// vendor. Item prices are never taken from the request; the handler prices the
// selections against the vendor's catalog.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(customerID, vendorID, selections, address, nil)
//	if err != nil {
//	    return fmt.Errorf("invalid order request: %w", err)
//	}
//
//	orderID, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	customerID          kernel.UUID
	vendorID            kernel.UUID
	items               []services.ItemSelection
	deliveryAddress     order.Address
	specialInstructions *string

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to place a new order.
// Validates the identifiers, the delivery address, and that at least one item
// was selected.
func NewCreateOrderCommand(
	customerID kernel.UUID,
	vendorID kernel.UUID,
	items []services.ItemSelection,
	deliveryAddress order.Address,
	specialInstructions *string,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		items:               items,
		deliveryAddress:     deliveryAddress,
		specialInstructions: specialInstructions,
		guard:               guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCustomerID(customerID),
		cmd.setVendorID(vendorID),
		cmd.requireItems(),
		deliveryAddress.Validate(),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// CustomerID returns the customer placing the order.
func (c CreateOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

// VendorID returns the vendor the order is placed with.
func (c CreateOrderCommand) VendorID() kernel.UUID {
	return c.vendorID
}

// Items returns the requested item selections.
func (c CreateOrderCommand) Items() []services.ItemSelection {
	return c.items
}

// DeliveryAddress returns the delivery destination.
func (c CreateOrderCommand) DeliveryAddress() order.Address {
	return c.deliveryAddress
}

// SpecialInstructions returns the customer's note to the vendor, if any.
func (c CreateOrderCommand) SpecialInstructions() *string {
	return c.specialInstructions
}

func (c *CreateOrderCommand) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.customerID = id
	return nil
}

func (c *CreateOrderCommand) setVendorID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.vendorID = id
	return nil
}

func (c *CreateOrderCommand) requireItems() error {
	if len(c.items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	return nil
}
