// Package vendorrepo provides read-only access to the vendor, menu catalog
// and user directory tables mirrored from the upstream services. Fulfillment
// only reads these rows, so the package carries no write paths.
package vendorrepo

import (
	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/vendor"
	"fulfillment/internal/core/ports"
)

// VendorDTO mirrors the vendor record fulfillment prices and dispatches from.
type VendorDTO struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string    `gorm:"type:varchar(255);not null"`
	Phone    string    `gorm:"type:varchar(32)"`
	Address  string    `gorm:"type:text"`
	Lat      float64   `gorm:"type:float8;not null"`
	Lon      float64   `gorm:"type:float8;not null"`
	IsActive bool      `gorm:"column:is_active;not null"`
}

func (VendorDTO) TableName() string {
	return "vendors"
}

// MenuItemDTO mirrors one catalog entry of a vendor's menu.
type MenuItemDTO struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey"`
	VendorID    uuid.UUID          `gorm:"column:vendor_id;type:uuid;not null;index"`
	Name        string             `gorm:"type:varchar(255);not null"`
	Price       int64              `gorm:"not null"`
	IsAvailable bool               `gorm:"column:is_available;not null"`
	AddOns      []MenuItemAddOnDTO `gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE"`
}

func (MenuItemDTO) TableName() string {
	return "menu_items"
}

// MenuItemAddOnDTO mirrors one selectable extra of a menu item.
type MenuItemAddOnDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	MenuItemID  uuid.UUID `gorm:"column:menu_item_id;type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Price       int64     `gorm:"not null"`
	IsRequired  bool      `gorm:"column:is_required;not null"`
	MaxQuantity int       `gorm:"column:max_quantity;not null"`
}

func (MenuItemAddOnDTO) TableName() string {
	return "menu_item_addons"
}

// UserDTO mirrors the directory record of a customer or rider.
type UserDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Phone       string    `gorm:"type:varchar(32)"`
	VehicleType string    `gorm:"column:vehicle_type;type:varchar(32)"`
}

func (UserDTO) TableName() string {
	return "users"
}

func vendorToDomain(dto VendorDTO) (vendor.Vendor, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return vendor.Vendor{}, err
	}

	location, err := kernel.NewGeoPoint(dto.Lat, dto.Lon)
	if err != nil {
		return vendor.Vendor{}, err
	}

	return vendor.Vendor{
		ID:       id,
		Name:     dto.Name,
		Phone:    dto.Phone,
		Address:  dto.Address,
		Location: location,
		IsActive: dto.IsActive,
	}, nil
}

func menuItemToDomain(dto MenuItemDTO) (vendor.MenuItem, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return vendor.MenuItem{}, err
	}

	vendorID, err := kernel.UUIDFromBytes(dto.VendorID[:])
	if err != nil {
		return vendor.MenuItem{}, err
	}

	addOns := make([]vendor.AddOn, 0, len(dto.AddOns))
	for _, addOnDTO := range dto.AddOns {
		addOnID, addOnErr := kernel.UUIDFromBytes(addOnDTO.ID[:])
		if addOnErr != nil {
			return vendor.MenuItem{}, addOnErr
		}
		addOns = append(addOns, vendor.AddOn{
			ID:          addOnID,
			Name:        addOnDTO.Name,
			Price:       kernel.Money(addOnDTO.Price),
			IsRequired:  addOnDTO.IsRequired,
			MaxQuantity: addOnDTO.MaxQuantity,
		})
	}

	return vendor.MenuItem{
		ID:          id,
		VendorID:    vendorID,
		Name:        dto.Name,
		Price:       kernel.Money(dto.Price),
		IsAvailable: dto.IsAvailable,
		AddOns:      addOns,
	}, nil
}

func profileToDomain(dto UserDTO) (ports.UserProfile, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return ports.UserProfile{}, err
	}

	return ports.UserProfile{
		ID:          id,
		Name:        dto.Name,
		Phone:       dto.Phone,
		VehicleType: dto.VehicleType,
	}, nil
}
