package queries

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// ListOrdersQueryHandler reads order pages straight from the database,
// bypassing the domain model.
type ListOrdersQueryHandler struct {
	db *gorm.DB
}

func NewListOrdersQueryHandler(db *gorm.DB) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{db: db}
}

// Handle returns the actor's visible orders, newest first.
func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]OrderProjection, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	where, args, err := buildListPredicate(query)
	if err != nil {
		return nil, err
	}

	filters := query.Filters()
	offset := (filters.Page - 1) * filters.Limit
	sql := `SELECT ` + orderColumns + orderJoins + where +
		` ORDER BY o.created_at DESC LIMIT ? OFFSET ?`
	args = append(args, filters.Limit, offset)

	rows, err := h.db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	projections := make([]OrderProjection, 0, filters.Limit)
	byID := make(map[string]*OrderProjection)
	for rows.Next() {
		p, scanErr := scanOrderRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		projections = append(projections, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	for i := range projections {
		byID[projections[i].ID] = &projections[i]
	}

	if len(byID) > 0 {
		if err := attachItems(ctx, h.db, byID); err != nil {
			return nil, err
		}
	}
	return projections, nil
}

func buildListPredicate(query ListOrdersQuery) (string, []any, error) {
	actor := query.Actor()
	filters := query.Filters()

	var conds []string
	var args []any

	switch actor.Role {
	case kernel.RoleCustomer:
		conds = append(conds, "o.customer_id = ?")
		args = append(args, actor.ID.Bytes())
	case kernel.RoleVendor:
		if actor.VendorID == nil {
			return "", nil, errs.NewUnauthorizedError(actor.Role.String(), "list orders")
		}
		conds = append(conds, "o.vendor_id = ?")
		args = append(args, actor.VendorID.Bytes())
	case kernel.RoleRider:
		conds = append(conds, "o.rider_id = ?")
		args = append(args, actor.ID.Bytes())
	case kernel.RoleAdmin:
		if filters.VendorID != nil {
			conds = append(conds, "o.vendor_id = ?")
			args = append(args, filters.VendorID.Bytes())
		}
		if filters.CustomerID != nil {
			conds = append(conds, "o.customer_id = ?")
			args = append(args, filters.CustomerID.Bytes())
		}
		if filters.RiderID != nil {
			conds = append(conds, "o.rider_id = ?")
			args = append(args, filters.RiderID.Bytes())
		}
	default:
		return "", nil, errs.NewUnauthorizedError(actor.Role.String(), "list orders")
	}

	if len(filters.Statuses) > 0 {
		names := make([]string, 0, len(filters.Statuses))
		for _, s := range filters.Statuses {
			names = append(names, s.String())
		}
		conds = append(conds, "o.status IN ?")
		args = append(args, names)
	}
	if filters.From != nil {
		conds = append(conds, "o.created_at >= ?")
		args = append(args, *filters.From)
	}
	if filters.To != nil {
		conds = append(conds, "o.created_at <= ?")
		args = append(args, *filters.To)
	}

	if len(conds) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}
