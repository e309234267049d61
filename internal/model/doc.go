// Package model defines the shared data types for the crypto tracker.
//
// Conventions:
//   - Prices, market caps, and volumes: float64 in the configured quote currency (USD by default)
//   - Timestamps: time.Time in UTC
//   - IDs: string for provider asset ids, uuid.UUID for cycle ids
package model
