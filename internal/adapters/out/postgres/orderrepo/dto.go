// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. It implements the repository pattern for the order
// aggregate, converting between domain entities and database rows.
package orderrepo

import (
	"time"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderDTO represents the database structure for persisting order aggregates.
// The status is stored as its wire string so rows stay readable and the read
// side can filter without decoding enums.
type OrderDTO struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OrderNumber         string         `gorm:"column:order_number;type:varchar(32);not null;uniqueIndex"`
	Status              string         `gorm:"type:varchar(32);not null;index"`
	VendorID            uuid.UUID      `gorm:"column:vendor_id;type:uuid;not null;index"`
	CustomerID          uuid.UUID      `gorm:"column:customer_id;type:uuid;not null;index"`
	RiderID             *uuid.UUID     `gorm:"column:rider_id;type:uuid;index"`
	Subtotal            int64          `gorm:"not null"`
	DeliveryFee         int64          `gorm:"column:delivery_fee;not null"`
	ServiceFee          int64          `gorm:"column:service_fee;not null"`
	Total               int64          `gorm:"not null"`
	AddressLabel        string         `gorm:"column:address_label;type:varchar(64)"`
	AddressText         string         `gorm:"column:address_text;type:text;not null"`
	AddressLat          float64        `gorm:"column:address_lat;type:float8;not null"`
	AddressLon          float64        `gorm:"column:address_lon;type:float8;not null"`
	SpecialInstructions *string        `gorm:"column:special_instructions;type:text"`
	CancelledAt         *time.Time     `gorm:"column:cancelled_at"`
	CancellationReason  *string        `gorm:"column:cancellation_reason;type:text"`
	ETA                 *time.Time     `gorm:"column:eta"`
	CreatedAt           time.Time      `gorm:"column:created_at;not null;index"`
	UpdatedAt           time.Time      `gorm:"column:updated_at;not null"`
	Items               []OrderItemDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// OrderItemDTO represents one priced order line.
type OrderItemDTO struct {
	ID         int64               `gorm:"primaryKey;autoIncrement"`
	OrderID    uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	MenuItemID uuid.UUID           `gorm:"column:menu_item_id;type:uuid;not null"`
	Name       string              `gorm:"type:varchar(255);not null"`
	Quantity   int                 `gorm:"not null"`
	UnitPrice  int64               `gorm:"column:unit_price;not null"`
	TotalPrice int64               `gorm:"column:total_price;not null"`
	AddOns     []OrderItemAddOnDTO `gorm:"foreignKey:OrderItemID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for order line entities.
func (OrderItemDTO) TableName() string {
	return "order_items"
}

// OrderItemAddOnDTO represents one add-on selection attached to an order line.
type OrderItemAddOnDTO struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	OrderItemID int64     `gorm:"column:order_item_id;not null;index"`
	AddOnID     uuid.UUID `gorm:"column:addon_id;type:uuid;not null"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Quantity    int       `gorm:"not null"`
	Price       int64     `gorm:"not null"`
}

// TableName specifies the database table name for add-on selection entities.
func (OrderItemAddOnDTO) TableName() string {
	return "order_item_addons"
}

// fromDomain converts an order aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	var riderID *uuid.UUID
	if id := aggregate.RiderID(); id != nil {
		raw := id.Bytes()
		riderID = &raw
	}

	items := make([]OrderItemDTO, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		addOns := make([]OrderItemAddOnDTO, 0, len(item.AddOns()))
		for _, a := range item.AddOns() {
			addOns = append(addOns, OrderItemAddOnDTO{
				AddOnID:  a.AddOnID.Bytes(),
				Name:     a.Name,
				Quantity: a.Quantity,
				Price:    a.Price.Int64(),
			})
		}

		items = append(items, OrderItemDTO{
			OrderID:    aggregate.ID().Bytes(),
			MenuItemID: item.MenuItemID().Bytes(),
			Name:       item.Name(),
			Quantity:   item.Quantity(),
			UnitPrice:  item.UnitPrice().Int64(),
			TotalPrice: item.TotalPrice().Int64(),
			AddOns:     addOns,
		})
	}

	pricing := aggregate.Pricing()
	address := aggregate.DeliveryAddress()

	return OrderDTO{
		ID:                  aggregate.ID().Bytes(),
		OrderNumber:         aggregate.OrderNumber(),
		Status:              aggregate.Status().String(),
		VendorID:            aggregate.VendorID().Bytes(),
		CustomerID:          aggregate.CustomerID().Bytes(),
		RiderID:             riderID,
		Subtotal:            pricing.Subtotal.Int64(),
		DeliveryFee:         pricing.DeliveryFee.Int64(),
		ServiceFee:          pricing.ServiceFee.Int64(),
		Total:               pricing.Total.Int64(),
		AddressLabel:        address.Label,
		AddressText:         address.Text,
		AddressLat:          address.Location.Lat(),
		AddressLon:          address.Location.Lon(),
		SpecialInstructions: aggregate.SpecialInstructions(),
		CancelledAt:         aggregate.CancelledAt(),
		CancellationReason:  aggregate.CancellationReason(),
		ETA:                 aggregate.ETA(),
		CreatedAt:           aggregate.CreatedAt(),
		UpdatedAt:           aggregate.UpdatedAt(),
		Items:               items,
	}
}

// toDomain converts a database DTO to an order aggregate using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	vendorID, err := kernel.UUIDFromBytes(dto.VendorID[:])
	if err != nil {
		return nil, err
	}

	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}

	var riderID *kernel.UUID
	if dto.RiderID != nil {
		rID, riderErr := kernel.UUIDFromBytes((*dto.RiderID)[:])
		if riderErr != nil {
			return nil, riderErr
		}
		riderID = &rID
	}

	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	items, err := itemsToDomain(dto.Items)
	if err != nil {
		return nil, err
	}

	location, err := kernel.NewGeoPoint(dto.AddressLat, dto.AddressLon)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(
		id,
		dto.OrderNumber,
		status,
		vendorID,
		customerID,
		riderID,
		items,
		order.Pricing{
			Subtotal:    kernel.Money(dto.Subtotal),
			DeliveryFee: kernel.Money(dto.DeliveryFee),
			ServiceFee:  kernel.Money(dto.ServiceFee),
			Total:       kernel.Money(dto.Total),
		},
		order.Address{Label: dto.AddressLabel, Text: dto.AddressText, Location: location},
		dto.SpecialInstructions,
		dto.CancelledAt,
		dto.CancellationReason,
		dto.ETA,
		dto.CreatedAt,
		dto.UpdatedAt,
	)
}

func itemsToDomain(dtos []OrderItemDTO) ([]order.OrderItem, error) {
	items := make([]order.OrderItem, 0, len(dtos))
	for _, itemDTO := range dtos {
		menuItemID, err := kernel.UUIDFromBytes(itemDTO.MenuItemID[:])
		if err != nil {
			return nil, err
		}

		addOns := make([]order.AddOnSelection, 0, len(itemDTO.AddOns))
		for _, addOnDTO := range itemDTO.AddOns {
			addOnID, addOnErr := kernel.UUIDFromBytes(addOnDTO.AddOnID[:])
			if addOnErr != nil {
				return nil, addOnErr
			}
			addOns = append(addOns, order.AddOnSelection{
				AddOnID:  addOnID,
				Name:     addOnDTO.Name,
				Quantity: addOnDTO.Quantity,
				Price:    kernel.Money(addOnDTO.Price),
			})
		}

		item, err := order.RestoreOrderItem(
			menuItemID,
			itemDTO.Name,
			itemDTO.Quantity,
			kernel.Money(itemDTO.UnitPrice),
			kernel.Money(itemDTO.TotalPrice),
			addOns,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
