package cmd

import (
	"time"

	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
)

// sweepBroadcastInterval paces backlog re-broadcasts so a large backlog does
// not flood courier clients.
const sweepBroadcastInterval = 200 * time.Millisecond

type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	publisher  ports.EventPublisher
	queue      ports.DispatchQueue
	notifier   ports.Notifier
	calculator services.PricingCalculator
}

func NewCompositionRoot(
	config Config,
	gormDB *gorm.DB,
	publisher ports.EventPublisher,
	queue ports.DispatchQueue,
	notifier ports.Notifier,
) CompositionRoot {
	return CompositionRoot{
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		publisher:  publisher,
		queue:      queue,
		notifier:   notifier,
		calculator: services.NewPricingCalculator(kernel.Money(config.DeliveryFee)),
	}
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f, c.calculator, c.publisher, c.notifier)
}

func (c *CompositionRoot) CreateBroadcastOrderCommandHandler() commands.BroadcastOrderCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewBroadcastOrderCommandHandler(f, c.queue)
}

func (c *CompositionRoot) CreateSweepReadyOrdersCommandHandler() commands.SweepReadyOrdersCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	limiter := rate.NewLimiter(rate.Every(sweepBroadcastInterval), 1)
	return commands.NewSweepReadyOrdersCommandHandler(f, c.CreateBroadcastOrderCommandHandler(), limiter)
}

func (c *CompositionRoot) CreateUpdateOrderStatusCommandHandler() commands.UpdateOrderStatusCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpdateOrderStatusCommandHandler(
		f,
		c.publisher,
		c.CreateBroadcastOrderCommandHandler(),
		c.CreateSweepReadyOrdersCommandHandler(),
	)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelOrderCommandHandler(f, c.publisher, c.CreateBroadcastOrderCommandHandler())
}

func (c *CompositionRoot) CreateCourierHeartbeatCommandHandler() commands.CourierHeartbeatCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCourierHeartbeatCommandHandler(f)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.gormDB)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
