// Package kernel provides shared value objects used across the fulfillment domain.
//
// The package includes:
//   - UUID: validated unique identifier for entities and aggregates
//   - GeoPoint: geographic coordinates with great-circle distance calculation
//   - Money: exact monetary amounts in minor currency units
//   - Actor and Role: the authenticated principal behind an operation
//
// All value objects are immutable and validate their construction, following
// the constructor guard pattern from internal/pkg/guard.
package kernel
