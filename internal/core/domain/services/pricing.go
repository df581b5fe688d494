package services

import (
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/vendor"
	"fulfillment/internal/pkg/errs"
)

const (
	// defaultDeliveryFee is the flat delivery fee in minor currency units.
	defaultDeliveryFee = kernel.Money(200)
	// serviceFeeRatePct is the service fee as a percentage of the subtotal.
	serviceFeeRatePct = 5
)

// AddOnChoice is a requested add-on on one order line.
type AddOnChoice struct {
	AddOnID  kernel.UUID
	Quantity int
}

// ItemSelection is one requested order line: a menu item, a quantity, and the
// chosen add-ons. Prices are never taken from the request; they come from the
// vendor catalog.
type ItemSelection struct {
	MenuItemID kernel.UUID
	Quantity   int
	AddOns     []AddOnChoice
}

// PricingCalculator is a domain service that turns requested item selections
// and a vendor's menu catalog into priced order lines and the order's price
// breakdown.
//
// Business rules:
//   - Every selected item must exist in the catalog and be available
//   - Every selected add-on must belong to its item; required add-ons must be
//     chosen; quantities may not exceed the add-on's maximum
//   - serviceFee = subtotal * 5%, rounded half up in integer arithmetic
//   - deliveryFee is a flat amount
type PricingCalculator struct {
	deliveryFee kernel.Money
}

// NewPricingCalculator creates a calculator with the flat delivery fee.
// Pass zero to use the default fee.
func NewPricingCalculator(deliveryFee kernel.Money) PricingCalculator {
	if deliveryFee == 0 {
		deliveryFee = defaultDeliveryFee
	}
	return PricingCalculator{deliveryFee: deliveryFee}
}

// Price validates the selections against the catalog and produces the priced
// order lines and the pricing breakdown.
//
// Validation stops at the first failure, checked in this order per line:
// unknown or unavailable item, unknown add-on, missing required add-on,
// add-on quantity over its maximum.
func (c PricingCalculator) Price(
	catalog []vendor.MenuItem,
	selections []ItemSelection,
) ([]order.OrderItem, order.Pricing, error) {
	if len(selections) == 0 {
		return nil, order.Pricing{}, errs.NewValueIsRequiredError("items")
	}

	byID := make(map[kernel.UUID]vendor.MenuItem, len(catalog))
	for _, item := range catalog {
		byID[item.ID] = item
	}

	items := make([]order.OrderItem, 0, len(selections))
	var subtotal kernel.Money

	for _, selection := range selections {
		menuItem, ok := byID[selection.MenuItemID]
		if !ok || !menuItem.IsAvailable {
			return nil, order.Pricing{}, errs.NewValueIsInvalidErrorWithCause("menuItemId",
				fmt.Errorf("menu item %s is not orderable", selection.MenuItemID))
		}

		addOns, err := c.priceAddOns(menuItem, selection.AddOns)
		if err != nil {
			return nil, order.Pricing{}, err
		}

		item, err := order.NewOrderItem(menuItem.ID, menuItem.Name, selection.Quantity,
			menuItem.Price, addOns)
		if err != nil {
			return nil, order.Pricing{}, err
		}

		items = append(items, item)
		subtotal = subtotal.Add(item.TotalPrice())
	}

	serviceFee := roundHalfUpPct(subtotal, serviceFeeRatePct)
	pricing := order.Pricing{
		Subtotal:    subtotal,
		DeliveryFee: c.deliveryFee,
		ServiceFee:  serviceFee,
		Total:       subtotal.Add(c.deliveryFee).Add(serviceFee),
	}

	return items, pricing, nil
}

func (c PricingCalculator) priceAddOns(
	menuItem vendor.MenuItem,
	choices []AddOnChoice,
) ([]order.AddOnSelection, error) {
	chosen := make(map[kernel.UUID]int, len(choices))
	selections := make([]order.AddOnSelection, 0, len(choices))

	for _, choice := range choices {
		addOn, ok := menuItem.AddOnByID(choice.AddOnID)
		if !ok {
			return nil, errs.NewValueIsInvalidErrorWithCause("addOnId",
				fmt.Errorf("add-on %s does not belong to item %s", choice.AddOnID, menuItem.ID))
		}
		chosen[addOn.ID] = choice.Quantity
		selections = append(selections, order.AddOnSelection{
			AddOnID:  addOn.ID,
			Name:     addOn.Name,
			Quantity: choice.Quantity,
			Price:    addOn.Price,
		})
	}

	for _, required := range menuItem.RequiredAddOns() {
		if chosen[required.ID] == 0 {
			return nil, errs.NewValueIsRequiredErrorWithCause("addOns",
				fmt.Errorf("item %s requires add-on %s", menuItem.ID, required.ID))
		}
	}

	for _, choice := range choices {
		addOn, _ := menuItem.AddOnByID(choice.AddOnID)
		if addOn.MaxQuantity > 0 && choice.Quantity > addOn.MaxQuantity {
			return nil, errs.NewValueIsOutOfRangeError("addOnQuantity",
				choice.Quantity, 1, addOn.MaxQuantity)
		}
	}

	return selections, nil
}

// roundHalfUpPct computes value * pct% rounded half up, in minor units.
func roundHalfUpPct(value kernel.Money, pct int64) kernel.Money {
	return kernel.Money((int64(value)*pct + 50) / 100)
}
