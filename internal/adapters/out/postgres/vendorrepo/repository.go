package vendorrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/vendor"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// GormVendorRepository implements VendorRepository using GORM.
type GormVendorRepository struct {
	db *gorm.DB
}

// NewGormVendorRepository creates a new GORM vendor repository.
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// Get retrieves a vendor by ID.
func (r *GormVendorRepository) Get(ctx context.Context, id kernel.UUID) (vendor.Vendor, error) {
	if err := id.Validate(); err != nil {
		return vendor.Vendor{}, err
	}

	var dto VendorDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return vendor.Vendor{}, errs.NewObjectNotFoundError("vendor", id.String())
		}
		return vendor.Vendor{}, err
	}

	return vendorToDomain(dto)
}

// GetMenuItems retrieves the requested catalog entries of one vendor with
// their add-ons. Items belonging to other vendors are not returned, so a
// pricing pass over the result rejects foreign menu item ids as unknown.
func (r *GormVendorRepository) GetMenuItems(
	ctx context.Context,
	vendorID kernel.UUID,
	itemIDs []kernel.UUID,
) ([]vendor.MenuItem, error) {
	if err := vendorID.Validate(); err != nil {
		return nil, err
	}
	if len(itemIDs) == 0 {
		return nil, errs.NewValueIsRequiredError("itemIds")
	}

	rawIDs := make([]uuid.UUID, 0, len(itemIDs))
	for _, id := range itemIDs {
		if err := id.Validate(); err != nil {
			return nil, err
		}
		rawIDs = append(rawIDs, id.Bytes())
	}

	var dtos []MenuItemDTO
	if err := r.db.WithContext(ctx).
		Preload("AddOns").
		Where("vendor_id = ? AND id IN ?", vendorID.Bytes(), rawIDs).
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	items := make([]vendor.MenuItem, 0, len(dtos))
	for _, dto := range dtos {
		item, err := menuItemToDomain(dto)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

// GormUserDirectory implements UserDirectory using GORM.
type GormUserDirectory struct {
	db *gorm.DB
}

// NewGormUserDirectory creates a new GORM user directory.
func NewGormUserDirectory(db *gorm.DB) *GormUserDirectory {
	return &GormUserDirectory{db: db}
}

// GetProfile retrieves the directory record of a customer or rider.
func (d *GormUserDirectory) GetProfile(ctx context.Context, id kernel.UUID) (ports.UserProfile, error) {
	if err := id.Validate(); err != nil {
		return ports.UserProfile{}, err
	}

	var dto UserDTO
	if err := d.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.UserProfile{}, errs.NewObjectNotFoundError("user", id.String())
		}
		return ports.UserProfile{}, err
	}

	return profileToDomain(dto)
}
