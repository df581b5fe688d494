package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/courier"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/vendor"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order, expected order.Status) error {
	args := m.Called(ctx, o, expected)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllReadyForPickup(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockCourierRepository struct{ mock.Mock }

func (m *MockCourierRepository) Add(ctx context.Context, c *courier.Courier) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourierRepository) Update(ctx context.Context, c *courier.Courier) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*courier.Courier), args.Error(1)
}

func (m *MockCourierRepository) GetAllAvailable(ctx context.Context) ([]*courier.Courier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*courier.Courier), args.Error(1)
}

type MockVendorRepository struct{ mock.Mock }

func (m *MockVendorRepository) Get(ctx context.Context, id kernel.UUID) (vendor.Vendor, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(vendor.Vendor), args.Error(1)
}

func (m *MockVendorRepository) GetMenuItems(
	ctx context.Context,
	vendorID kernel.UUID,
	itemIDs []kernel.UUID,
) ([]vendor.MenuItem, error) {
	args := m.Called(ctx, vendorID, itemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]vendor.MenuItem), args.Error(1)
}

type MockUserDirectory struct{ mock.Mock }

func (m *MockUserDirectory) GetProfile(ctx context.Context, id kernel.UUID) (ports.UserProfile, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ports.UserProfile), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) CourierRepository() ports.CourierRepository {
	args := m.Called()
	return args.Get(0).(ports.CourierRepository)
}

func (m *MockUoW) VendorRepository() ports.VendorRepository {
	args := m.Called()
	return args.Get(0).(ports.VendorRepository)
}

func (m *MockUoW) UserDirectory() ports.UserDirectory {
	args := m.Called()
	return args.Get(0).(ports.UserDirectory)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(channel, event string, payload any) {
	m.Called(channel, event, payload)
}

type MockDispatchQueue struct{ mock.Mock }

func (m *MockDispatchQueue) Enqueue(ctx context.Context, job services.DeliveryJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, n ports.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotifier) NotifyDelayed(ctx context.Context, n ports.Notification, delay time.Duration) error {
	args := m.Called(ctx, n, delay)
	return args.Error(0)
}

// Test fixtures.

func testVendor(t *testing.T) vendor.Vendor {
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

func testAddress(t *testing.T) order.Address {
	t.Helper()
	location, err := kernel.NewGeoPoint(52.5170, 13.3889)
	require.NoError(t, err)
	return order.Address{Label: "Home", Text: "Unter den Linden 1, Berlin", Location: location}
}

func testOrder(t *testing.T, vendorID kernel.UUID, status order.Status, riderID *kernel.UUID) *order.Order {
	t.Helper()

	item, err := order.NewOrderItem(kernel.NewUUID(), "Margherita", 2, kernel.Money(1500), nil)
	require.NoError(t, err)

	pricing := order.Pricing{
		Subtotal:    kernel.Money(3000),
		DeliveryFee: kernel.Money(200),
		ServiceFee:  kernel.Money(150),
		Total:       kernel.Money(3350),
	}

	o, err := order.RestoreOrder(kernel.NewUUID(), "ORD-20260831-001-0001", status,
		vendorID, kernel.NewUUID(), riderID, []order.OrderItem{item}, pricing,
		testAddress(t), nil, nil, nil, nil, time.Now(), time.Now())
	require.NoError(t, err)
	return o
}
