package courier

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// Domain errors for courier operations.
var (
	// ErrNameIsRequired is returned when attempting to create a courier without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrCourierIsNotConstructed is returned when using an improperly initialized Courier.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier constructor")
	// ErrCourierIsBusy is returned when assigning work to a courier that already carries an order.
	ErrCourierIsBusy = errors.New("courier is already busy")
	// ErrCourierIsNotBusy is returned when releasing a courier that carries no order.
	ErrCourierIsNotBusy = errors.New("courier is not busy")
)

// Courier represents a delivery rider in the system.
// It is an aggregate root that tracks the rider's identity, whether they are
// online, whether they are currently carrying an order, and the last reported
// position.
//
// Business rules:
//   - Courier must have a valid UUID and a non-empty name
//   - Only an online and free courier is eligible for dispatch offers
//   - A location heartbeat marks the courier online and refreshes lastSeenAt
//   - SetBusy and SetFree toggle the carrying state and reject double calls
type Courier struct {
	id           kernel.UUID
	name         string
	online       bool
	busy         bool
	lastLocation kernel.GeoPoint
	lastSeenAt   time.Time

	guard guard.ConstructorGuard
}

// NewCourier creates a new Courier at the given position.
// New couriers start online and free so they are immediately eligible for
// dispatch offers.
func NewCourier(id kernel.UUID, name string, location kernel.GeoPoint, now time.Time) (*Courier, error) {
	courier := &Courier{
		online:     true,
		lastSeenAt: now,
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		courier.setID(id),
		courier.setName(name),
		courier.setLocation(location),
	); err != nil {
		return nil, err
	}

	return courier, nil
}

// RestoreCourier reconstructs a Courier aggregate from persistent storage,
// including its online and busy flags and the last reported position.
func RestoreCourier(
	id kernel.UUID,
	name string,
	online bool,
	busy bool,
	location kernel.GeoPoint,
	lastSeenAt time.Time,
) (*Courier, error) {
	courier := &Courier{
		online:     online,
		busy:       busy,
		lastSeenAt: lastSeenAt,
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		courier.setID(id),
		courier.setName(name),
		courier.setLocation(location),
	); err != nil {
		return nil, err
	}

	return courier, nil
}

// IsEqual compares two couriers by their unique identifiers.
func (c *Courier) IsEqual(other *Courier) bool {
	return other != nil && c.id.IsEqual(other.id)
}

// Validate ensures the Courier was constructed through a constructor.
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

// ID returns the courier's unique identifier.
func (c *Courier) ID() kernel.UUID {
	return c.id
}

// Name returns the courier's display name.
func (c *Courier) Name() string {
	return c.name
}

// IsOnline reports whether the courier has an active session.
func (c *Courier) IsOnline() bool {
	return c.online
}

// IsBusy reports whether the courier is carrying an order.
func (c *Courier) IsBusy() bool {
	return c.busy
}

// IsAvailable reports whether the courier is eligible for dispatch offers:
// online and not carrying an order.
func (c *Courier) IsAvailable() bool {
	return c.online && !c.busy
}

// Location returns the last reported position.
func (c *Courier) Location() kernel.GeoPoint {
	return c.lastLocation
}

// LastSeenAt returns when the courier last sent a heartbeat.
func (c *Courier) LastSeenAt() time.Time {
	return c.lastSeenAt
}

// DistanceKmTo returns the great-circle distance in kilometers from the
// courier's last reported position to point.
func (c *Courier) DistanceKmTo(point kernel.GeoPoint) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	return c.lastLocation.DistanceKm(point)
}

// Heartbeat records a fresh position report. It marks the courier online and
// refreshes the last-seen timestamp.
func (c *Courier) Heartbeat(location kernel.GeoPoint, now time.Time) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := c.setLocation(location); err != nil {
		return err
	}

	c.online = true
	c.lastSeenAt = now
	return nil
}

// MarkOffline takes the courier out of the dispatch pool.
func (c *Courier) MarkOffline() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.online = false
	return nil
}

// SetBusy marks the courier as carrying an order.
// Returns ErrCourierIsBusy when the courier already carries one.
func (c *Courier) SetBusy() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.busy {
		return ErrCourierIsBusy
	}
	c.busy = true
	return nil
}

// SetFree releases the courier after a delivery completes or falls through.
// Returns ErrCourierIsNotBusy when the courier carries no order.
func (c *Courier) SetFree() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !c.busy {
		return ErrCourierIsNotBusy
	}
	c.busy = false
	return nil
}

func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Courier) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	c.name = name
	return nil
}

func (c *Courier) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}
	c.lastLocation = location
	return nil
}
