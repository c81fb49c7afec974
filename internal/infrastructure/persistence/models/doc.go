// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain types to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
//  1. Domain types carry no GORM tags
//  2. Persistence models contain all GORM annotations, table names and unique indexes
//  3. Mappers (ToDomain / FromDomain) convert between the two
//  4. Composite unique indexes are declared on the models so that AutoMigrate in
//     tests reproduces the upsert keys of the SQL migrations
//
// Structure:
// - base.go: shared columns
// - earnings.go: platform_earnings, sales, products, platform_connections
// - creator.go: creators, creator_snapshots, media_snapshots
// - vendor.go: shopmy_* and mavely_* detail tables
// - access.go: user_roles
package models
