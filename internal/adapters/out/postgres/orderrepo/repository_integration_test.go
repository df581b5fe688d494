package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

// OrderRepositoryIntegrationTestSuite provides integration tests for
// OrderRepository using PostgreSQL containers.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
	tracker    *MockAggregateTracker
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.OrderItemDTO{},
		&orderrepo.OrderItemAddOnDTO{},
	))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders CASCADE").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = orderrepo.NewGormOrderRepository(suite.db, suite.tracker)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_ValidOrder_PersistsLinesAndAddOns() {
	ctx := context.Background()

	testOrder := suite.createPendingOrder()
	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Once()

	err := suite.repository.Add(ctx, testOrder)
	suite.Require().NoError(err)

	retrieved, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)

	suite.Equal(testOrder.ID(), retrieved.ID())
	suite.Equal(testOrder.OrderNumber(), retrieved.OrderNumber())
	suite.Equal(order.Pending, retrieved.Status())
	suite.Nil(retrieved.RiderID())
	suite.Equal(testOrder.Pricing().Total, retrieved.Pricing().Total)
	suite.Require().Len(retrieved.Items(), 1)

	item := retrieved.Items()[0]
	suite.Equal("Margherita", item.Name())
	suite.Equal(2, item.Quantity())
	suite.Require().Len(item.AddOns(), 1)
	suite.Equal("Extra Cheese", item.AddOns()[0].Name)

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NonExistentOrder_ReturnsNotFoundError() {
	ctx := context.Background()

	retrieved, err := suite.repository.Get(ctx, kernel.NewUUID())

	suite.Nil(retrieved)
	suite.Require().Error(err)

	var notFoundErr *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFoundErr)

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_InvalidUUID_ReturnsError() {
	_, err := suite.repository.Get(context.Background(), kernel.UUID{})
	suite.Require().Error(err)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_MatchingExpectedStatus_PersistsTransition() {
	ctx := context.Background()

	testOrder := suite.createPendingOrder()
	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Twice()
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	loadedAt := testOrder.Status()
	err := testOrder.ChangeStatus(suite.adminActor(), order.Confirmed, nil, nil, time.Now().UTC())
	suite.Require().NoError(err)

	err = suite.repository.Update(ctx, testOrder, loadedAt)
	suite.Require().NoError(err)

	retrieved, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Confirmed, retrieved.Status())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_StaleExpectedStatus_ReturnsConflict() {
	ctx := context.Background()

	testOrder := suite.createPendingOrder()
	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Twice()
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	// First writer wins.
	admin := suite.adminActor()
	suite.Require().NoError(testOrder.ChangeStatus(admin, order.Confirmed, nil, nil, time.Now().UTC()))
	suite.Require().NoError(suite.repository.Update(ctx, testOrder, order.Pending))

	// Second writer still believes the order is pending.
	suite.Require().NoError(testOrder.ChangeStatus(admin, order.Preparing, nil, nil, time.Now().UTC()))
	err := suite.repository.Update(ctx, testOrder, order.Pending)

	suite.Require().Error(err)
	suite.Require().ErrorIs(err, errs.ErrConflict)

	// The row keeps the first writer's state.
	retrieved, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Confirmed, retrieved.Status())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_NonExistentOrder_ReturnsConflict() {
	ctx := context.Background()

	ghost := suite.createPendingOrder()
	err := suite.repository.Update(ctx, ghost, order.Pending)

	suite.Require().Error(err)
	suite.Require().ErrorIs(err, errs.ErrConflict)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_ClearsRiderOnReadyForPickup() {
	ctx := context.Background()

	riderID := kernel.NewUUID()
	testOrder := suite.restoreOrderWithStatus(order.Assigned, &riderID)
	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Twice()
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	loadedAt := testOrder.Status()
	err := testOrder.ChangeStatus(suite.adminActor(), order.ReadyForPickup, nil, nil, time.Now().UTC())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Update(ctx, testOrder, loadedAt))

	retrieved, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.ReadyForPickup, retrieved.Status())
	suite.Nil(retrieved.RiderID())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetAllReadyForPickup_ReturnsOldestFirst() {
	ctx := context.Background()

	suite.tracker.On("TrackAggregate", mock.AnythingOfType("kernel.UUID"), mock.Anything).Times(4)

	older := suite.restoreOrderWithStatusAt(order.ReadyForPickup, nil, time.Now().UTC().Add(-10*time.Minute))
	newer := suite.restoreOrderWithStatusAt(order.ReadyForPickup, nil, time.Now().UTC().Add(-1*time.Minute))
	pending := suite.restoreOrderWithStatus(order.Pending, nil)
	riderID := kernel.NewUUID()
	assigned := suite.restoreOrderWithStatus(order.Assigned, &riderID)

	for _, o := range []*order.Order{newer, older, pending, assigned} {
		suite.Require().NoError(suite.repository.Add(ctx, o))
	}

	waiting, err := suite.repository.GetAllReadyForPickup(ctx)
	suite.Require().NoError(err)

	suite.Require().Len(waiting, 2)
	suite.Equal(older.ID(), waiting[0].ID())
	suite.Equal(newer.ID(), waiting[1].ID())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetAllReadyForPickup_NoBacklog_ReturnsEmptySlice() {
	waiting, err := suite.repository.GetAllReadyForPickup(context.Background())
	suite.Require().NoError(err)
	suite.Empty(waiting)
}

func (suite *OrderRepositoryIntegrationTestSuite) adminActor() kernel.Actor {
	actor, err := kernel.NewActor(kernel.NewUUID(), kernel.RoleAdmin)
	suite.Require().NoError(err)
	return actor
}

func (suite *OrderRepositoryIntegrationTestSuite) createPendingOrder() *order.Order {
	addOn := order.AddOnSelection{
		AddOnID:  kernel.NewUUID(),
		Name:     "Extra Cheese",
		Quantity: 1,
		Price:    kernel.Money(150),
	}
	item, err := order.NewOrderItem(kernel.NewUUID(), "Margherita", 2, kernel.Money(1425), []order.AddOnSelection{addOn})
	suite.Require().NoError(err)

	location, err := kernel.NewGeoPoint(52.52, 13.405)
	suite.Require().NoError(err)

	testOrder, err := order.NewOrder(
		kernel.NewUUID(),
		"ORD-20260831-042-0042",
		kernel.NewUUID(),
		kernel.NewUUID(),
		[]order.OrderItem{item},
		order.Pricing{
			Subtotal:    kernel.Money(3150),
			DeliveryFee: kernel.Money(200),
			ServiceFee:  kernel.Money(158),
			Total:       kernel.Money(3508),
		},
		order.Address{Label: "Home", Text: "Alexanderplatz 1, Berlin", Location: location},
		nil,
		time.Now().UTC(),
	)
	suite.Require().NoError(err)
	return testOrder
}

func (suite *OrderRepositoryIntegrationTestSuite) restoreOrderWithStatus(
	status order.Status, riderID *kernel.UUID,
) *order.Order {
	return suite.restoreOrderWithStatusAt(status, riderID, time.Now().UTC())
}

func (suite *OrderRepositoryIntegrationTestSuite) restoreOrderWithStatusAt(
	status order.Status, riderID *kernel.UUID, createdAt time.Time,
) *order.Order {
	item, err := order.NewOrderItem(kernel.NewUUID(), "Cola", 1, kernel.Money(300), nil)
	suite.Require().NoError(err)

	location, err := kernel.NewGeoPoint(52.52, 13.405)
	suite.Require().NoError(err)

	testOrder, err := order.RestoreOrder(
		kernel.NewUUID(),
		"ORD-20260831-007-"+kernel.NewUUID().String()[:4],
		status,
		kernel.NewUUID(),
		kernel.NewUUID(),
		riderID,
		[]order.OrderItem{item},
		order.Pricing{
			Subtotal:    kernel.Money(300),
			DeliveryFee: kernel.Money(200),
			ServiceFee:  kernel.Money(15),
			Total:       kernel.Money(515),
		},
		order.Address{Text: "Alexanderplatz 1, Berlin", Location: location},
		nil,
		nil,
		nil,
		nil,
		createdAt,
		createdAt,
	)
	suite.Require().NoError(err)
	return testOrder
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
