package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

func newTestContext(t *testing.T, target string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, rec), rec
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"required value maps to 400", errs.NewValueIsRequiredError("items"), http.StatusBadRequest},
		{"invalid value maps to 400", errs.NewValueIsInvalidError("vendorId"), http.StatusBadRequest},
		{"out of range maps to 400", errs.NewValueIsOutOfRangeError("limit", 500, 1, 100), http.StatusBadRequest},
		{"unauthorized maps to 403", errs.NewUnauthorizedError("rider", "confirm order"), http.StatusForbidden},
		{"not found maps to 404", errs.NewObjectNotFoundError("order", "x"), http.StatusNotFound},
		{"conflict maps to 409", errs.NewConflictError("order", "x"), http.StatusConflict},
		{"not cancellable maps to 422", errs.NewNotCancellableError("x", "DELIVERED"), http.StatusUnprocessableEntity},
		{"unknown error maps to 500", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(t, "/orders")

			require.NoError(t, respondError(c, tc.err))

			assert.Equal(t, tc.wantStatus, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.wantStatus, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}

	t.Run("internal errors never leak details", func(t *testing.T) {
		c, rec := newTestContext(t, "/orders")

		require.NoError(t, respondError(c, errors.New("dsn=postgres://secret")))

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "internal error", body.Message)
		assert.NotContains(t, rec.Body.String(), "secret")
	})
}

func TestRetryOnConflict(t *testing.T) {
	t.Run("should retry exactly once on conflict", func(t *testing.T) {
		c, _ := newTestContext(t, "/orders/x/status")
		s := &Server{}

		calls := 0
		err := s.retryOnConflict(c, func() error {
			calls++
			if calls == 1 {
				return errs.NewConflictError("order", "x")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("should give up after the second conflict", func(t *testing.T) {
		c, _ := newTestContext(t, "/orders/x/status")
		s := &Server{}

		calls := 0
		err := s.retryOnConflict(c, func() error {
			calls++
			return errs.NewConflictError("order", "x")
		})

		assert.ErrorIs(t, err, errs.ErrConflict)
		assert.Equal(t, 2, calls)
	})

	t.Run("should not retry other failures", func(t *testing.T) {
		c, _ := newTestContext(t, "/orders/x/status")
		s := &Server{}

		calls := 0
		err := s.retryOnConflict(c, func() error {
			calls++
			return errs.NewUnauthorizedError("customer", "confirm order")
		})

		assert.ErrorIs(t, err, errs.ErrUnauthorized)
		assert.Equal(t, 1, calls)
	})
}

func TestParseListFilters(t *testing.T) {
	t.Run("should parse the full filter set", func(t *testing.T) {
		vendorID := kernel.NewUUID()
		c, _ := newTestContext(t,
			"/orders?page=2&limit=50&status=PENDING,CONFIRMED&from=2026-08-01T00:00:00Z&to=2026-08-31T00:00:00Z&vendorId="+vendorID.String())

		filters, err := parseListFilters(c)

		require.NoError(t, err)
		assert.Equal(t, 2, filters.Page)
		assert.Equal(t, 50, filters.Limit)
		assert.Equal(t, []order.Status{order.Pending, order.Confirmed}, filters.Statuses)
		require.NotNil(t, filters.From)
		require.NotNil(t, filters.To)
		assert.True(t, filters.From.Before(*filters.To))
		require.NotNil(t, filters.VendorID)
		assert.Equal(t, vendorID, *filters.VendorID)
		assert.Nil(t, filters.CustomerID)
		assert.Nil(t, filters.RiderID)
	})

	t.Run("should leave absent filters zero", func(t *testing.T) {
		c, _ := newTestContext(t, "/orders")

		filters, err := parseListFilters(c)

		require.NoError(t, err)
		assert.Zero(t, filters.Page)
		assert.Zero(t, filters.Limit)
		assert.Empty(t, filters.Statuses)
	})

	t.Run("should reject an unknown status name", func(t *testing.T) {
		c, _ := newTestContext(t, "/orders?status=SHIPPED")

		_, err := parseListFilters(c)

		assert.Error(t, err)
	})

	t.Run("should reject a malformed date", func(t *testing.T) {
		c, _ := newTestContext(t, "/orders?from=yesterday")

		_, err := parseListFilters(c)

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject a malformed page", func(t *testing.T) {
		c, _ := newTestContext(t, "/orders?page=first")

		_, err := parseListFilters(c)

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestBuildCreateOrderCommand(t *testing.T) {
	customerID := kernel.NewUUID()

	validRequest := func() CreateOrderRequest {
		return CreateOrderRequest{
			VendorID: kernel.NewUUID().String(),
			Items: []OrderItemRequest{{
				MenuItemID: kernel.NewUUID().String(),
				Quantity:   2,
				AddOns:     []AddOnRequest{{AddOnID: kernel.NewUUID().String(), Quantity: 1}},
			}},
			DeliveryAddress: AddressRequest{Label: "Home", Text: "12 Canal St", Lat: 52.37, Lon: 4.89},
		}
	}

	t.Run("should build a valid command", func(t *testing.T) {
		req := validRequest()

		cmd, err := buildCreateOrderCommand(customerID, req)

		require.NoError(t, err)
		assert.Equal(t, customerID, cmd.CustomerID())
		require.Len(t, cmd.Items(), 1)
		assert.Equal(t, 2, cmd.Items()[0].Quantity)
		require.Len(t, cmd.Items()[0].AddOns, 1)
		assert.Equal(t, "12 Canal St", cmd.DeliveryAddress().Text)
	})

	t.Run("should reject a malformed vendor id", func(t *testing.T) {
		req := validRequest()
		req.VendorID = "not-a-uuid"

		_, err := buildCreateOrderCommand(customerID, req)

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject a malformed menu item id", func(t *testing.T) {
		req := validRequest()
		req.Items[0].MenuItemID = "nope"

		_, err := buildCreateOrderCommand(customerID, req)

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject coordinates off the globe", func(t *testing.T) {
		req := validRequest()
		req.DeliveryAddress.Lat = 123.0

		_, err := buildCreateOrderCommand(customerID, req)

		assert.Error(t, err)
	})

	t.Run("should reject an empty item list", func(t *testing.T) {
		req := validRequest()
		req.Items = nil

		_, err := buildCreateOrderCommand(customerID, req)

		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestHealth(t *testing.T) {
	c, rec := newTestContext(t, "/health")

	require.NoError(t, (&Server{}).Health(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
