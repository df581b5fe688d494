package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/vendor"
)

// VendorRepository reads the vendor and menu catalog records mirrored from the
// catalog service. Fulfillment never writes them.
type VendorRepository interface {
	// Get retrieves a vendor record by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (vendor.Vendor, error)

	// GetMenuItems retrieves the catalog records for the given menu item ids
	// of one vendor, with their add-ons.
	GetMenuItems(ctx context.Context, vendorID kernel.UUID, itemIDs []kernel.UUID) ([]vendor.MenuItem, error)
}

// UserProfile is the directory record for a customer or rider: the display
// name plus the contact fields shared with counterparties.
type UserProfile struct {
	ID          kernel.UUID
	Name        string
	Phone       string
	VehicleType string
}

// UserDirectory resolves customer and rider profiles for projections,
// dispatch offers, and rider_assigned events.
type UserDirectory interface {
	GetProfile(ctx context.Context, id kernel.UUID) (UserProfile, error)
}
