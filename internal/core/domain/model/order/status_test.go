package order_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFromString(t *testing.T) {
	t.Run("should parse all known statuses", func(t *testing.T) {
		cases := map[string]order.Status{
			"PENDING":          order.Pending,
			"CONFIRMED":        order.Confirmed,
			"PREPARING":        order.Preparing,
			"READY_FOR_PICKUP": order.ReadyForPickup,
			"ASSIGNED":         order.Assigned,
			"PICKED_UP":        order.PickedUp,
			"OUT_FOR_DELIVERY": order.OutForDelivery,
			"DELIVERED":        order.Delivered,
			"CANCELLED":        order.Cancelled,
		}

		for raw, want := range cases {
			got, err := order.StatusFromString(raw)
			require.NoError(t, err, raw)
			assert.Equal(t, want, got)
			assert.Equal(t, raw, got.String())
		}
	})

	t.Run("should reject unknown status", func(t *testing.T) {
		_, err := order.StatusFromString("SHIPPED")

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject empty status", func(t *testing.T) {
		_, err := order.StatusFromString("")

		require.Error(t, err)
	})
}

func TestStatusCanTransitionTo(t *testing.T) {
	allowed := map[order.Status][]order.Status{
		order.Pending:        {order.Confirmed, order.Cancelled},
		order.Confirmed:      {order.Preparing, order.Cancelled},
		order.Preparing:      {order.ReadyForPickup, order.Cancelled},
		order.ReadyForPickup: {order.Assigned},
		order.Assigned:       {order.PickedUp, order.ReadyForPickup, order.Cancelled},
		order.PickedUp:       {order.OutForDelivery},
		order.OutForDelivery: {order.Delivered},
		order.Delivered:      {},
		order.Cancelled:      {},
	}

	all := []order.Status{
		order.Pending, order.Confirmed, order.Preparing, order.ReadyForPickup,
		order.Assigned, order.PickedUp, order.OutForDelivery, order.Delivered,
		order.Cancelled,
	}

	t.Run("should permit exactly the configured transitions", func(t *testing.T) {
		for from, targets := range allowed {
			permitted := make(map[order.Status]bool, len(targets))
			for _, target := range targets {
				permitted[target] = true
			}

			for _, target := range all {
				err := from.CanTransitionTo(target)
				if permitted[target] {
					assert.NoError(t, err, "%s -> %s", from, target)
				} else {
					assert.ErrorIs(t, err, errs.ErrValueIsInvalid, "%s -> %s", from, target)
				}
			}
		}
	})

	t.Run("should reject transition to the current status", func(t *testing.T) {
		for _, s := range all {
			assert.Error(t, s.CanTransitionTo(s), s.String())
		}
	})
}

func TestStatusRoleTargets(t *testing.T) {
	t.Run("vendor runs the preparation phase only", func(t *testing.T) {
		assert.True(t, order.Confirmed.AllowedForRole(kernel.RoleVendor))
		assert.True(t, order.Preparing.AllowedForRole(kernel.RoleVendor))
		assert.True(t, order.ReadyForPickup.AllowedForRole(kernel.RoleVendor))

		assert.False(t, order.PickedUp.AllowedForRole(kernel.RoleVendor))
		assert.False(t, order.Delivered.AllowedForRole(kernel.RoleVendor))
		assert.False(t, order.Cancelled.AllowedForRole(kernel.RoleVendor))
	})

	t.Run("rider runs the delivery phase only", func(t *testing.T) {
		assert.True(t, order.PickedUp.AllowedForRole(kernel.RoleRider))
		assert.True(t, order.OutForDelivery.AllowedForRole(kernel.RoleRider))
		assert.True(t, order.Delivered.AllowedForRole(kernel.RoleRider))

		assert.False(t, order.Confirmed.AllowedForRole(kernel.RoleRider))
		assert.False(t, order.Assigned.AllowedForRole(kernel.RoleRider))
	})

	t.Run("customer may not set any status", func(t *testing.T) {
		for _, s := range []order.Status{
			order.Confirmed, order.Preparing, order.ReadyForPickup, order.Assigned,
			order.PickedUp, order.OutForDelivery, order.Delivered, order.Cancelled,
		} {
			assert.False(t, s.AllowedForRole(kernel.RoleCustomer), s.String())
		}
	})

	t.Run("admin may set every non-pending status", func(t *testing.T) {
		for _, s := range []order.Status{
			order.Confirmed, order.Preparing, order.ReadyForPickup, order.Assigned,
			order.PickedUp, order.OutForDelivery, order.Delivered, order.Cancelled,
		} {
			assert.True(t, s.AllowedForRole(kernel.RoleAdmin), s.String())
		}
		assert.False(t, order.Pending.AllowedForRole(kernel.RoleAdmin))
	})
}

func TestStatusPredicates(t *testing.T) {
	t.Run("terminal statuses", func(t *testing.T) {
		assert.True(t, order.Delivered.IsTerminal())
		assert.True(t, order.Cancelled.IsTerminal())
		assert.False(t, order.Pending.IsTerminal())
		assert.False(t, order.OutForDelivery.IsTerminal())
	})

	t.Run("rider-carrying statuses", func(t *testing.T) {
		assert.True(t, order.Assigned.RequiresRider())
		assert.True(t, order.PickedUp.RequiresRider())
		assert.True(t, order.OutForDelivery.RequiresRider())
		assert.True(t, order.Delivered.RequiresRider())

		assert.False(t, order.ReadyForPickup.RequiresRider())
		assert.False(t, order.Cancelled.RequiresRider())
	})

	t.Run("cancellable statuses", func(t *testing.T) {
		assert.True(t, order.Pending.IsCancellable())
		assert.True(t, order.Confirmed.IsCancellable())
		assert.True(t, order.Preparing.IsCancellable())
		assert.True(t, order.Assigned.IsCancellable())

		assert.False(t, order.ReadyForPickup.IsCancellable())
		assert.False(t, order.PickedUp.IsCancellable())
		assert.False(t, order.OutForDelivery.IsCancellable())
		assert.False(t, order.Delivered.IsCancellable())
		assert.False(t, order.Cancelled.IsCancellable())
	})
}
