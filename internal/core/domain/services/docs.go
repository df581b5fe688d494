// Package services provides domain services that orchestrate business
// operations across multiple domain entities. It implements workflows that
// don't naturally belong to a single aggregate root.
//
// The package includes:
//   - PricingCalculator: prices requested items against a vendor's menu catalog
//   - DeliveryJobBuilder: assembles the pickup offers broadcast to couriers
package services
