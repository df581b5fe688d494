package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrListOrdersQueryIsNotConstructed = errors.New(
	"ListOrdersQuery must be created via NewListOrdersQuery constructor",
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ListOrdersFilters narrows an admin's order listing. Non-admin actors are
// scoped to their own orders and may only narrow by status and date range.
type ListOrdersFilters struct {
	VendorID   *kernel.UUID
	CustomerID *kernel.UUID
	RiderID    *kernel.UUID
	Statuses   []order.Status
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}

// ListOrdersQuery retrieves a page of order projections scoped to an actor:
// customers see their own orders, vendors their own vendor's, riders the
// orders assigned to them, and admins everything. Pages are newest-first.
type ListOrdersQuery struct { //nolint:recvcheck //using for validation
	actor   kernel.Actor
	filters ListOrdersFilters

	guard guard.ConstructorGuard
}

// NewListOrdersQuery creates a role-scoped listing query.
// Page defaults to 1 and limit to 20, capped at 100.
func NewListOrdersQuery(actor kernel.Actor, filters ListOrdersFilters) (ListOrdersQuery, error) {
	if err := actor.Validate(); err != nil {
		return ListOrdersQuery{}, err
	}

	if filters.Page <= 0 {
		filters.Page = 1
	}
	switch {
	case filters.Limit <= 0:
		filters.Limit = defaultPageLimit
	case filters.Limit > maxPageLimit:
		return ListOrdersQuery{}, errs.NewValueIsOutOfRangeError("limit", filters.Limit, 1, maxPageLimit)
	}

	for _, s := range filters.Statuses {
		if err := s.Validate(); err != nil {
			return ListOrdersQuery{}, err
		}
	}

	return ListOrdersQuery{
		actor:   actor,
		filters: filters,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

// Actor returns the principal listing orders.
func (q ListOrdersQuery) Actor() kernel.Actor {
	return q.actor
}

// Filters returns the normalized filters.
func (q ListOrdersQuery) Filters() ListOrdersFilters {
	return q.filters
}
