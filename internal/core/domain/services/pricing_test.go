package services_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/vendor"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricingCalculator_Price(t *testing.T) {
	calc := services.NewPricingCalculator(0)

	pizzaID := kernel.NewUUID()
	colaID := kernel.NewUUID()
	cheeseID := kernel.NewUUID()
	sizeID := kernel.NewUUID()

	catalog := []vendor.MenuItem{
		{
			ID:          pizzaID,
			VendorID:    kernel.NewUUID(),
			Name:        "Margherita",
			Price:       kernel.Money(1200),
			IsAvailable: true,
			AddOns: []vendor.AddOn{
				{ID: cheeseID, Name: "Extra cheese", Price: kernel.Money(150), MaxQuantity: 3},
				{ID: sizeID, Name: "Size", Price: kernel.Money(300), IsRequired: true, MaxQuantity: 1},
			},
		},
		{
			ID:          colaID,
			VendorID:    kernel.NewUUID(),
			Name:        "Cola",
			Price:       kernel.Money(300),
			IsAvailable: true,
		},
	}

	t.Run("should price items with fees", func(t *testing.T) {
		// subtotal 2*1500 = 3000, delivery 200, service 150, total 3350
		items, pricing, err := calc.Price(catalog, []services.ItemSelection{
			{
				MenuItemID: pizzaID,
				Quantity:   2,
				AddOns:     []services.AddOnChoice{{AddOnID: sizeID, Quantity: 1}},
			},
		})

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, kernel.Money(3000), pricing.Subtotal)
		assert.Equal(t, kernel.Money(200), pricing.DeliveryFee)
		assert.Equal(t, kernel.Money(150), pricing.ServiceFee)
		assert.Equal(t, kernel.Money(3350), pricing.Total)
		require.NoError(t, pricing.Validate())
	})

	t.Run("should round the service fee half up", func(t *testing.T) {
		// subtotal 310: 5% = 15.5, rounds up to 16
		_, pricing, err := calc.Price(catalog, []services.ItemSelection{
			{MenuItemID: colaID, Quantity: 1},
			{MenuItemID: colaID, Quantity: 1},
		})
		require.NoError(t, err)
		assert.Equal(t, kernel.Money(600), pricing.Subtotal)
		assert.Equal(t, kernel.Money(30), pricing.ServiceFee)

		thin := []vendor.MenuItem{{ID: colaID, VendorID: kernel.NewUUID(), Name: "Cola",
			Price: kernel.Money(310), IsAvailable: true}}
		_, pricing, err = calc.Price(thin, []services.ItemSelection{
			{MenuItemID: colaID, Quantity: 1},
		})
		require.NoError(t, err)
		assert.Equal(t, kernel.Money(16), pricing.ServiceFee)
	})

	t.Run("should reject empty selections", func(t *testing.T) {
		_, _, err := calc.Price(catalog, nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject unknown menu item", func(t *testing.T) {
		_, _, err := calc.Price(catalog, []services.ItemSelection{
			{MenuItemID: kernel.NewUUID(), Quantity: 1},
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "menuItemId")
	})

	t.Run("should reject unavailable menu item", func(t *testing.T) {
		soldOutID := kernel.NewUUID()
		withSoldOut := append(catalog, vendor.MenuItem{
			ID: soldOutID, VendorID: kernel.NewUUID(), Name: "Calzone",
			Price: kernel.Money(1400), IsAvailable: false,
		})

		_, _, err := calc.Price(withSoldOut, []services.ItemSelection{
			{MenuItemID: soldOutID, Quantity: 1},
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject add-on from another item", func(t *testing.T) {
		_, _, err := calc.Price(catalog, []services.ItemSelection{
			{
				MenuItemID: colaID,
				Quantity:   1,
				AddOns:     []services.AddOnChoice{{AddOnID: cheeseID, Quantity: 1}},
			},
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "addOnId")
	})

	t.Run("should reject missing required add-on", func(t *testing.T) {
		_, _, err := calc.Price(catalog, []services.ItemSelection{
			{MenuItemID: pizzaID, Quantity: 1},
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "addOns")
	})

	t.Run("should reject add-on quantity over its maximum", func(t *testing.T) {
		_, _, err := calc.Price(catalog, []services.ItemSelection{
			{
				MenuItemID: pizzaID,
				Quantity:   1,
				AddOns: []services.AddOnChoice{
					{AddOnID: sizeID, Quantity: 1},
					{AddOnID: cheeseID, Quantity: 4},
				},
			},
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("should reject non-positive item quantity", func(t *testing.T) {
		_, _, err := calc.Price(catalog, []services.ItemSelection{
			{MenuItemID: colaID, Quantity: 0},
		})

		require.Error(t, err)
	})
}
