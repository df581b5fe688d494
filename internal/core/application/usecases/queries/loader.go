package queries

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// orderColumns is the projection's base row: the order joined with the
// vendor's name and the rider's contact. Shared by the single-order and the
// list query so both read the exact same shape.
const orderColumns = `
	o.id,
	o.order_number,
	o.status,
	o.vendor_id,
	v.name AS vendor_name,
	o.customer_id,
	o.rider_id,
	u.name AS rider_name,
	u.phone AS rider_phone,
	u.vehicle_type AS rider_vehicle_type,
	o.subtotal,
	o.delivery_fee,
	o.service_fee,
	o.total,
	o.address_label,
	o.address_text,
	o.address_lat,
	o.address_lon,
	o.special_instructions,
	o.cancelled_at,
	o.cancellation_reason,
	o.eta,
	o.created_at,
	o.updated_at`

const orderJoins = `
	FROM orders o
	JOIN vendors v ON v.id = o.vendor_id
	LEFT JOIN users u ON u.id = o.rider_id`

// scanOrderRow maps one joined row onto a projection without its items.
func scanOrderRow(rows *sql.Rows) (OrderProjection, error) {
	var (
		p                OrderProjection
		id, vendorID     uuid.UUID
		customerID       uuid.UUID
		riderID          uuid.NullUUID
		riderName        sql.NullString
		riderPhone       sql.NullString
		riderVehicleType sql.NullString
		addressLabel     sql.NullString
		instructions     sql.NullString
		cancelledAt      sql.NullTime
		cancelReason     sql.NullString
		eta              sql.NullTime
	)

	err := rows.Scan(
		&id,
		&p.OrderNumber,
		&p.Status,
		&vendorID,
		&p.VendorName,
		&customerID,
		&riderID,
		&riderName,
		&riderPhone,
		&riderVehicleType,
		&p.Pricing.Subtotal,
		&p.Pricing.DeliveryFee,
		&p.Pricing.ServiceFee,
		&p.Pricing.Total,
		&addressLabel,
		&p.DeliveryAddress.Text,
		&p.DeliveryAddress.Lat,
		&p.DeliveryAddress.Lon,
		&instructions,
		&cancelledAt,
		&cancelReason,
		&eta,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return OrderProjection{}, err
	}

	p.ID = id.String()
	p.VendorID = vendorID.String()
	p.CustomerID = customerID.String()
	p.DeliveryAddress.Label = addressLabel.String

	if riderID.Valid {
		p.Rider = &RiderContact{
			ID:          riderID.UUID.String(),
			Name:        riderName.String,
			Phone:       riderPhone.String,
			VehicleType: riderVehicleType.String,
		}
	}
	if instructions.Valid {
		p.SpecialInstructions = &instructions.String
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		p.CancelledAt = &t
	}
	if cancelReason.Valid {
		p.CancellationReason = &cancelReason.String
	}
	if eta.Valid {
		t := eta.Time
		p.EstimatedDeliveryTime = &t
	}

	return p, nil
}

// attachItems loads the order lines and add-on selections for every
// projection in byID in two queries.
func attachItems(ctx context.Context, db *gorm.DB, byID map[string]*OrderProjection) error {
	if len(byID) == 0 {
		return nil
	}

	orderIDs := make([]string, 0, len(byID))
	for id := range byID {
		orderIDs = append(orderIDs, id)
	}

	itemRows, err := db.WithContext(ctx).Raw(`
		SELECT id, order_id, menu_item_id, name, quantity, unit_price, total_price
		FROM order_items
		WHERE order_id IN ?
		ORDER BY id
	`, orderIDs).Rows()
	if err != nil {
		return err
	}
	defer itemRows.Close()

	// Remember which projection and line each order_items row landed in so
	// the add-on pass can find it again.
	type itemSlot struct {
		orderID string
		index   int
	}
	slots := make(map[int64]itemSlot)

	for itemRows.Next() {
		var (
			itemID     int64
			orderID    uuid.UUID
			menuItemID uuid.UUID
			item       ItemProjection
		)
		if err = itemRows.Scan(&itemID, &orderID, &menuItemID, &item.Name,
			&item.Quantity, &item.UnitPrice, &item.TotalPrice); err != nil {
			return err
		}
		item.MenuItemID = menuItemID.String()

		p, ok := byID[orderID.String()]
		if !ok {
			continue
		}
		p.Items = append(p.Items, item)
		slots[itemID] = itemSlot{orderID: orderID.String(), index: len(p.Items) - 1}
	}
	if err = itemRows.Err(); err != nil {
		return err
	}

	addOnRows, err := db.WithContext(ctx).Raw(`
		SELECT a.order_item_id, a.addon_id, a.name, a.quantity, a.price
		FROM order_item_addons a
		JOIN order_items i ON i.id = a.order_item_id
		WHERE i.order_id IN ?
		ORDER BY a.id
	`, orderIDs).Rows()
	if err != nil {
		return err
	}
	defer addOnRows.Close()

	for addOnRows.Next() {
		var (
			itemID  int64
			addOnID uuid.UUID
			addOn   AddOnProjection
		)
		if err = addOnRows.Scan(&itemID, &addOnID, &addOn.Name,
			&addOn.Quantity, &addOn.Price); err != nil {
			return err
		}
		addOn.AddOnID = addOnID.String()

		slot, ok := slots[itemID]
		if !ok {
			continue
		}
		item := &byID[slot.orderID].Items[slot.index]
		item.AddOns = append(item.AddOns, addOn)
	}
	return addOnRows.Err()
}

