package order

import (
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// AddOnSelection is an immutable snapshot of one add-on chosen for an order
// item, capturing the add-on price at order time.
type AddOnSelection struct {
	AddOnID  kernel.UUID
	Name     string
	Quantity int
	Price    kernel.Money
}

// Validate checks the selection's id and quantity.
func (a AddOnSelection) Validate() error {
	if err := a.AddOnID.Validate(); err != nil {
		return err
	}
	if a.Quantity < 1 {
		return errs.NewValueIsInvalidErrorWithCause("addOnQuantity",
			fmt.Errorf("%d is not at least 1", a.Quantity))
	}
	return nil
}

// OrderItem references a catalog menu item as an immutable snapshot of its
// name and price at order time, together with the selected add-ons.
//
// Invariant: TotalPrice == (UnitPrice + Σ addOnPrice·addOnQty) · Quantity.
type OrderItem struct {
	menuItemID kernel.UUID
	name       string
	quantity   int
	unitPrice  kernel.Money
	totalPrice kernel.Money
	addOns     []AddOnSelection
}

// NewOrderItem creates an order item and derives its total price from the
// unit price, the add-on selections, and the quantity.
func NewOrderItem(
	menuItemID kernel.UUID,
	name string,
	quantity int,
	unitPrice kernel.Money,
	addOns []AddOnSelection,
) (OrderItem, error) {
	item := OrderItem{
		menuItemID: menuItemID,
		name:       name,
		quantity:   quantity,
		unitPrice:  unitPrice,
		addOns:     addOns,
	}

	if err := item.validateInputs(); err != nil {
		return OrderItem{}, err
	}

	item.totalPrice = itemTotal(unitPrice, addOns, quantity)
	return item, nil
}

// RestoreOrderItem reconstructs an order item from persistence, verifying the
// stored total still satisfies the pricing invariant.
func RestoreOrderItem(
	menuItemID kernel.UUID,
	name string,
	quantity int,
	unitPrice kernel.Money,
	totalPrice kernel.Money,
	addOns []AddOnSelection,
) (OrderItem, error) {
	item := OrderItem{
		menuItemID: menuItemID,
		name:       name,
		quantity:   quantity,
		unitPrice:  unitPrice,
		totalPrice: totalPrice,
		addOns:     addOns,
	}

	if err := item.validateInputs(); err != nil {
		return OrderItem{}, err
	}

	if expected := itemTotal(unitPrice, addOns, quantity); expected != totalPrice {
		return OrderItem{}, errs.NewValueIsInvalidErrorWithCause("totalPrice",
			fmt.Errorf("stored total %d does not match computed total %d", totalPrice, expected))
	}

	return item, nil
}

// itemTotal computes (unitPrice + Σ addOnPrice·addOnQty) · quantity.
func itemTotal(unitPrice kernel.Money, addOns []AddOnSelection, quantity int) kernel.Money {
	perUnit := unitPrice
	for _, a := range addOns {
		perUnit = perUnit.Add(a.Price.MulQty(a.Quantity))
	}
	return perUnit.MulQty(quantity)
}

func (i OrderItem) validateInputs() error {
	if err := i.menuItemID.Validate(); err != nil {
		return err
	}
	if i.name == "" {
		return errs.NewValueIsRequiredError("itemName")
	}
	if i.quantity < 1 {
		return errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not at least 1", i.quantity))
	}
	for _, a := range i.addOns {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// MenuItemID returns the referenced catalog menu item id.
func (i OrderItem) MenuItemID() kernel.UUID {
	return i.menuItemID
}

// Name returns the snapshotted item name.
func (i OrderItem) Name() string {
	return i.name
}

// Quantity returns the ordered quantity.
func (i OrderItem) Quantity() int {
	return i.quantity
}

// UnitPrice returns the snapshotted per-unit price excluding add-ons.
func (i OrderItem) UnitPrice() kernel.Money {
	return i.unitPrice
}

// TotalPrice returns the item total including add-ons.
func (i OrderItem) TotalPrice() kernel.Money {
	return i.totalPrice
}

// AddOns returns the selected add-ons.
func (i OrderItem) AddOns() []AddOnSelection {
	return i.addOns
}
