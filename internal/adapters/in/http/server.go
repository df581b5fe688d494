package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/logger"
)

// realtimeGateway serves websocket connections joined to event channels.
type realtimeGateway interface {
	Serve(conn *websocket.Conn)
}

// sweepKicker triggers an immediate backlog sweep outside the cron schedule.
type sweepKicker interface {
	KickBacklogSweep()
}

// Server coordinates between HTTP handlers and application use cases.
// Mutating order endpoints respond with the same hydrated projection the
// read endpoints return, so clients always parse one format.
type Server struct {
	// Command handlers
	createOrderHandler      commands.CreateOrderCommandHandler
	updateStatusHandler     commands.UpdateOrderStatusCommandHandler
	cancelOrderHandler      commands.CancelOrderCommandHandler
	courierHeartbeatHandler commands.CourierHeartbeatCommandHandler

	// Query handlers
	getOrderHandler   queries.GetOrderQueryHandler
	listOrdersHandler queries.ListOrdersQueryHandler

	realtime realtimeGateway
	sweeper  sweepKicker
	upgrader websocket.Upgrader
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	updateStatusHandler commands.UpdateOrderStatusCommandHandler,
	cancelOrderHandler commands.CancelOrderCommandHandler,
	courierHeartbeatHandler commands.CourierHeartbeatCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	listOrdersHandler queries.ListOrdersQueryHandler,
	realtime realtimeGateway,
	sweeper sweepKicker,
) *Server {
	return &Server{
		createOrderHandler:      createOrderHandler,
		updateStatusHandler:     updateStatusHandler,
		cancelOrderHandler:      cancelOrderHandler,
		courierHeartbeatHandler: courierHeartbeatHandler,
		getOrderHandler:         getOrderHandler,
		listOrdersHandler:       listOrdersHandler,
		realtime:                realtime,
		sweeper:                 sweeper,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// RegisterRoutes mounts all routes. Health and metrics stay open; everything
// else requires a verified token.
func (s *Server) RegisterRoutes(e *echo.Echo, jwtSecret []byte) {
	e.GET("/health", s.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("", AuthMiddleware(jwtSecret))
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.PATCH("/orders/:id/status", s.UpdateOrderStatus)
	api.PATCH("/orders/:id/cancel", s.CancelOrder)
	api.PATCH("/couriers/:id/location", s.CourierHeartbeat)
	api.GET("/ws", s.Websocket)
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// CreateOrderRequest is the body of POST /orders. Prices are never taken
// from the request; they come from the vendor catalog.
type CreateOrderRequest struct {
	VendorID            string             `json:"vendorId"`
	Items               []OrderItemRequest `json:"items"`
	DeliveryAddress     AddressRequest     `json:"deliveryAddress"`
	SpecialInstructions *string            `json:"specialInstructions,omitempty"`
}

// OrderItemRequest is one requested order line.
type OrderItemRequest struct {
	MenuItemID string         `json:"menuItemId"`
	Quantity   int            `json:"quantity"`
	AddOns     []AddOnRequest `json:"addOns,omitempty"`
}

// AddOnRequest is one selected add-on on a line.
type AddOnRequest struct {
	AddOnID  string `json:"addOnId"`
	Quantity int    `json:"quantity"`
}

// AddressRequest is the delivery destination.
type AddressRequest struct {
	Label string  `json:"label,omitempty"`
	Text  string  `json:"text"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

// CreateOrder handles POST /orders. Only customers place orders; the
// customer id comes from the verified token, never from the body.
func (s *Server) CreateOrder(c echo.Context) error {
	actor, err := requestActor(c)
	if err != nil {
		return err
	}
	if actor.Role != kernel.RoleCustomer {
		return respondError(c, errs.NewUnauthorizedError(actor.Role.String(), "place order"))
	}

	var req CreateOrderRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	cmd, err := buildCreateOrderCommand(actor.ID, req)
	if err != nil {
		return respondError(c, err)
	}

	orderID, err := s.createOrderHandler.Handle(c.Request().Context(), cmd)
	RecordOrderOperation("create", err == nil)
	if err != nil {
		return respondError(c, err)
	}

	return s.respondWithOrder(c, http.StatusCreated, orderID)
}

func buildCreateOrderCommand(customerID kernel.UUID, req CreateOrderRequest) (commands.CreateOrderCommand, error) {
	vendorID, err := kernel.UUIDFromString(req.VendorID)
	if err != nil {
		return commands.CreateOrderCommand{}, errs.NewValueIsInvalidErrorWithCause("vendorId", err)
	}

	items := make([]services.ItemSelection, 0, len(req.Items))
	for _, item := range req.Items {
		menuItemID, iErr := kernel.UUIDFromString(item.MenuItemID)
		if iErr != nil {
			return commands.CreateOrderCommand{}, errs.NewValueIsInvalidErrorWithCause("menuItemId", iErr)
		}

		addOns := make([]services.AddOnChoice, 0, len(item.AddOns))
		for _, a := range item.AddOns {
			addOnID, aErr := kernel.UUIDFromString(a.AddOnID)
			if aErr != nil {
				return commands.CreateOrderCommand{}, errs.NewValueIsInvalidErrorWithCause("addOnId", aErr)
			}
			addOns = append(addOns, services.AddOnChoice{AddOnID: addOnID, Quantity: a.Quantity})
		}

		items = append(items, services.ItemSelection{
			MenuItemID: menuItemID,
			Quantity:   item.Quantity,
			AddOns:     addOns,
		})
	}

	location, err := kernel.NewGeoPoint(req.DeliveryAddress.Lat, req.DeliveryAddress.Lon)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	return commands.NewCreateOrderCommand(customerID, vendorID, items, order.Address{
		Label:    req.DeliveryAddress.Label,
		Text:     req.DeliveryAddress.Text,
		Location: location,
	}, req.SpecialInstructions)
}

// GetOrder handles GET /orders/:id.
func (s *Server) GetOrder(c echo.Context) error {
	actor, err := requestActor(c)
	if err != nil {
		return err
	}

	orderID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid order id")
	}

	query, err := queries.NewGetOrderQuery(orderID, actor)
	if err != nil {
		return respondError(c, err)
	}

	projection, err := s.getOrderHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, projection)
}

// ListOrders handles GET /orders. Non-admin actors are scoped to their own
// orders; admins may additionally filter by vendor, customer, and rider.
func (s *Server) ListOrders(c echo.Context) error {
	actor, err := requestActor(c)
	if err != nil {
		return err
	}

	filters, err := parseListFilters(c)
	if err != nil {
		return respondError(c, err)
	}

	query, err := queries.NewListOrdersQuery(actor, filters)
	if err != nil {
		return respondError(c, err)
	}

	projections, err := s.listOrdersHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, projections)
}

func parseListFilters(c echo.Context) (queries.ListOrdersFilters, error) {
	var filters queries.ListOrdersFilters

	if v := c.QueryParam("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return filters, errs.NewValueIsInvalidErrorWithCause("page", err)
		}
		filters.Page = page
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return filters, errs.NewValueIsInvalidErrorWithCause("limit", err)
		}
		filters.Limit = limit
	}

	if v := c.QueryParam("status"); v != "" {
		for _, name := range strings.Split(v, ",") {
			status, err := order.StatusFromString(strings.TrimSpace(name))
			if err != nil {
				return filters, err
			}
			filters.Statuses = append(filters.Statuses, status)
		}
	}

	var err error
	if filters.From, err = parseTimeParam(c, "from"); err != nil {
		return filters, err
	}
	if filters.To, err = parseTimeParam(c, "to"); err != nil {
		return filters, err
	}
	if filters.VendorID, err = parseUUIDParam(c, "vendorId"); err != nil {
		return filters, err
	}
	if filters.CustomerID, err = parseUUIDParam(c, "customerId"); err != nil {
		return filters, err
	}
	if filters.RiderID, err = parseUUIDParam(c, "riderId"); err != nil {
		return filters, err
	}

	return filters, nil
}

func parseTimeParam(c echo.Context, name string) (*time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return &t, nil
}

func parseUUIDParam(c echo.Context, name string) (*kernel.UUID, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	id, err := kernel.UUIDFromString(v)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return &id, nil
}

// UpdateOrderStatusRequest is the body of PATCH /orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status  string     `json:"status"`
	RiderID *string    `json:"riderId,omitempty"`
	ETA     *time.Time `json:"eta,omitempty"`
}

// UpdateOrderStatus handles PATCH /orders/:id/status.
// A lost status race surfaces as a conflict; the handler retries once with
// the same command before giving up with 409.
func (s *Server) UpdateOrderStatus(c echo.Context) error {
	actor, err := requestActor(c)
	if err != nil {
		return err
	}

	orderID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid order id")
	}

	var req UpdateOrderStatusRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	target, err := order.StatusFromString(req.Status)
	if err != nil {
		return respondError(c, err)
	}

	var riderID *kernel.UUID
	if req.RiderID != nil {
		id, rErr := kernel.UUIDFromString(*req.RiderID)
		if rErr != nil {
			return respondError(c, errs.NewValueIsInvalidErrorWithCause("riderId", rErr))
		}
		riderID = &id
	}

	cmd, err := commands.NewUpdateOrderStatusCommand(orderID, actor, target, riderID, req.ETA)
	if err != nil {
		return respondError(c, err)
	}

	err = s.retryOnConflict(c, func() error {
		return s.updateStatusHandler.Handle(c.Request().Context(), cmd)
	})
	RecordOrderOperation("update_status", err == nil)
	if err != nil {
		return respondError(c, err)
	}

	return s.respondWithOrder(c, http.StatusOK, orderID)
}

// CancelOrderRequest is the body of PATCH /orders/:id/cancel.
type CancelOrderRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// CancelOrder handles PATCH /orders/:id/cancel.
func (s *Server) CancelOrder(c echo.Context) error {
	actor, err := requestActor(c)
	if err != nil {
		return err
	}

	orderID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid order id")
	}

	var req CancelOrderRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	cmd, err := commands.NewCancelOrderCommand(orderID, actor, req.Reason)
	if err != nil {
		return respondError(c, err)
	}

	err = s.retryOnConflict(c, func() error {
		return s.cancelOrderHandler.Handle(c.Request().Context(), cmd)
	})
	RecordOrderOperation("cancel", err == nil)
	if err != nil {
		return respondError(c, err)
	}

	return s.respondWithOrder(c, http.StatusOK, orderID)
}

// retryOnConflict runs the operation and retries it exactly once when it
// loses a concurrent status race.
func (s *Server) retryOnConflict(c echo.Context, op func() error) error {
	err := op()
	if err == nil || !errors.Is(err, errs.ErrConflict) {
		return err
	}

	logger.FromCtx(c.Request().Context()).Info("retrying after status conflict")
	return op()
}

// CourierHeartbeatRequest is the body of PATCH /couriers/:id/location.
type CourierHeartbeatRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CourierHeartbeat handles PATCH /couriers/:id/location. A heartbeat that
// brings a courier back online kicks a backlog sweep so waiting orders reach
// the fresh courier without delay.
func (s *Server) CourierHeartbeat(c echo.Context) error {
	actor, err := requestActor(c)
	if err != nil {
		return err
	}

	courierID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid courier id")
	}

	var req CourierHeartbeatRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	location, err := kernel.NewGeoPoint(req.Lat, req.Lon)
	if err != nil {
		return respondError(c, err)
	}

	cmd, err := commands.NewCourierHeartbeatCommand(courierID, actor, location)
	if err != nil {
		return respondError(c, err)
	}

	cameOnline, err := s.courierHeartbeatHandler.Handle(c.Request().Context(), cmd)
	if err != nil {
		return respondError(c, err)
	}

	if cameOnline && s.sweeper != nil {
		s.sweeper.KickBacklogSweep()
	}

	return c.JSON(http.StatusOK, map[string]bool{"online": true})
}

// Websocket handles GET /ws, upgrading the connection and handing it to the
// realtime hub. Serve blocks until the client disconnects.
func (s *Server) Websocket(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.FromCtx(c.Request().Context()).Warn("websocket upgrade failed", zap.Error(err))
		return nil
	}

	s.realtime.Serve(conn)
	return nil
}

// respondWithOrder hydrates the projection for a just-mutated order. The
// mutation already enforced the actor's permissions, so the lookup runs with
// a service principal; that keeps the response working for a rider whose
// cancellation just unassigned them.
func (s *Server) respondWithOrder(c echo.Context, status int, orderID kernel.UUID) error {
	system, err := kernel.NewActor(kernel.NewUUID(), kernel.RoleAdmin)
	if err != nil {
		return respondError(c, err)
	}

	query, err := queries.NewGetOrderQuery(orderID, system)
	if err != nil {
		return respondError(c, err)
	}

	projection, err := s.getOrderHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(status, projection)
}
