// Package integration contains the Integration bounded context.
// It defines the ports through which ingest jobs reach external platforms.
//
// Key concepts:
//   - Affiliate network ports: ShopMy, Mavely, LTK and the Airtable mirror
//   - Social port: the Instagram Graph API
//   - Platform errors: sentinels every adapter wraps, so callers classify failures with errors.Is
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
