package services_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/vendor"
	"fulfillment/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createReadyOrder(t *testing.T, vendorID kernel.UUID) *order.Order {
	t.Helper()

	pizza, err := order.NewOrderItem(kernel.NewUUID(), "Margherita", 2, kernel.Money(1200), nil)
	require.NoError(t, err)
	cola, err := order.NewOrderItem(kernel.NewUUID(), "Cola", 1, kernel.Money(300), nil)
	require.NoError(t, err)

	location, err := kernel.NewGeoPoint(52.5170, 13.3889)
	require.NoError(t, err)

	items := []order.OrderItem{pizza, cola}
	subtotal := pizza.TotalPrice().Add(cola.TotalPrice())
	pricing := order.Pricing{
		Subtotal:    subtotal,
		DeliveryFee: kernel.Money(200),
		ServiceFee:  kernel.Money(135),
		Total:       subtotal.Add(kernel.Money(335)),
	}

	o, err := order.RestoreOrder(kernel.NewUUID(), "ORD-20260831-X1Y2Z3", order.ReadyForPickup,
		vendorID, kernel.NewUUID(), nil, items, pricing,
		order.Address{Text: "Unter den Linden 1, Berlin", Location: location},
		nil, nil, nil, nil, time.Now(), time.Now())
	require.NoError(t, err)
	return o
}

func createVendor(t *testing.T) vendor.Vendor {
	t.Helper()
	location, err := kernel.NewGeoPoint(52.5200, 13.4050)
	require.NoError(t, err)
	return vendor.Vendor{
		ID:       kernel.NewUUID(),
		Name:     "Pizzeria Roma",
		Address:  "Alexanderplatz 1, Berlin",
		Location: location,
		IsActive: true,
	}
}

func TestDeliveryJobBuilder_Build(t *testing.T) {
	builder := services.NewDeliveryJobBuilder()

	t.Run("should assemble offer from order and vendor", func(t *testing.T) {
		v := createVendor(t)
		o := createReadyOrder(t, v.ID)
		now := time.Now()

		job, err := builder.Build(o, v, "Jamie", now)

		require.NoError(t, err)
		assert.True(t, job.OrderID.IsEqual(o.ID()))
		assert.Equal(t, o.OrderNumber(), job.OrderNumber)
		assert.Equal(t, v.Name, job.VendorName)
		assert.Equal(t, "Jamie", job.CustomerName)
		assert.Equal(t, v.Address, job.PickupAddress)
		assert.Equal(t, o.DeliveryAddress().Text, job.DeliveryAddress)
		assert.Equal(t, kernel.Money(200), job.DeliveryFee)
		assert.Equal(t, "2x Margherita, 1x Cola", job.ItemSummary)
		assert.Equal(t, now, job.CreatedAt)
		assert.Equal(t, now.Add(5*time.Minute), job.ExpiresAt)
		// Both points are in central Berlin, about a kilometer apart.
		assert.Greater(t, job.DistanceKm, 0.0)
		assert.Less(t, job.DistanceKm, 5.0)
	})

	t.Run("should reject order that is not ready for pickup", func(t *testing.T) {
		v := createVendor(t)
		o := createReadyOrder(t, v.ID)
		riderID := kernel.NewUUID()
		admin, err := kernel.NewActor(kernel.NewUUID(), kernel.RoleAdmin)
		require.NoError(t, err)
		require.NoError(t, o.ChangeStatus(admin, order.Assigned, &riderID, nil, time.Now()))

		_, err = builder.Build(o, v, "Jamie", time.Now())

		require.Error(t, err)
	})

	t.Run("offer should expire after five minutes", func(t *testing.T) {
		v := createVendor(t)
		o := createReadyOrder(t, v.ID)
		now := time.Now()

		job, err := builder.Build(o, v, "Jamie", now)
		require.NoError(t, err)

		assert.False(t, job.IsExpired(now.Add(4*time.Minute)))
		assert.True(t, job.IsExpired(now.Add(6*time.Minute)))
	})
}
