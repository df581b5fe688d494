// Package courierrepo provides data transfer objects and mapping functions
// for rider pool persistence. It implements the repository pattern for the
// courier aggregate, converting between domain entities and database rows.
package courierrepo

import (
	"time"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/courier"
	"fulfillment/internal/core/domain/model/kernel"
)

// CourierDTO represents the database structure for persisting courier
// aggregates. Availability is two flags so the pool query stays an index scan.
type CourierDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"type:varchar(255);not null"`
	Online     bool      `gorm:"not null;index:idx_couriers_availability"`
	Busy       bool      `gorm:"not null;index:idx_couriers_availability"`
	Lat        float64   `gorm:"type:float8;not null"`
	Lon        float64   `gorm:"type:float8;not null"`
	LastSeenAt time.Time `gorm:"column:last_seen_at;not null"`
}

// TableName specifies the database table name for courier entities.
func (CourierDTO) TableName() string {
	return "couriers"
}

// fromDomain converts a courier aggregate to its database representation.
func fromDomain(aggregate *courier.Courier) CourierDTO {
	return CourierDTO{
		ID:         aggregate.ID().Bytes(),
		Name:       aggregate.Name(),
		Online:     aggregate.IsOnline(),
		Busy:       aggregate.IsBusy(),
		Lat:        aggregate.Location().Lat(),
		Lon:        aggregate.Location().Lon(),
		LastSeenAt: aggregate.LastSeenAt(),
	}
}

// toDomain converts a database DTO to a courier aggregate using RestoreCourier.
func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	location, err := kernel.NewGeoPoint(dto.Lat, dto.Lon)
	if err != nil {
		return nil, err
	}

	return courier.RestoreCourier(id, dto.Name, dto.Online, dto.Busy, location, dto.LastSeenAt)
}
