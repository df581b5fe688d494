package queries

import (
	"context"

	"gorm.io/gorm"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// GetOrderQueryHandler reads one hydrated order projection from the database.
// Uses direct SQL for optimal read performance in the CQRS pattern.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for single-order retrieval.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the query and enforces participant visibility: the order's
// customer, its vendor, its assigned rider, or an admin.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderProjection, error) {
	if err := query.Validate(); err != nil {
		return OrderProjection{}, err
	}

	rows, err := h.db.WithContext(ctx).
		Raw(`SELECT `+orderColumns+orderJoins+` WHERE o.id = ?`, query.OrderID().Bytes()).
		Rows()
	if err != nil {
		return OrderProjection{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return OrderProjection{}, err
		}
		return OrderProjection{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}

	p, err := scanOrderRow(rows)
	if err != nil {
		return OrderProjection{}, err
	}
	if err = rows.Close(); err != nil {
		return OrderProjection{}, err
	}

	if err = h.authorize(query.Actor(), p); err != nil {
		return OrderProjection{}, err
	}

	byID := map[string]*OrderProjection{p.ID: &p}
	if err = attachItems(ctx, h.db, byID); err != nil {
		return OrderProjection{}, err
	}

	return p, nil
}

func (h GetOrderQueryHandler) authorize(actor kernel.Actor, p OrderProjection) error {
	switch actor.Role {
	case kernel.RoleAdmin:
		return nil
	case kernel.RoleCustomer:
		if p.CustomerID == actor.ID.String() {
			return nil
		}
	case kernel.RoleVendor:
		vendorID, err := kernel.UUIDFromString(p.VendorID)
		if err == nil && actor.ActsForVendor(vendorID) {
			return nil
		}
	case kernel.RoleRider:
		if p.Rider != nil && p.Rider.ID == actor.ID.String() {
			return nil
		}
	}
	return errs.NewUnauthorizedError(actor.Role.String(), "view order")
}
