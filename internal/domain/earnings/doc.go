// Package earnings contains the Earnings bounded context.
// It owns the canonical ledger that every affiliate network is normalized into.
//
// Key concepts:
//   - Record: the canonical earnings tuple {creator, platform, period, revenue, commission, clicks, orders, status}
//   - Sale: an individual attributed order reported by a network
//   - Fields: a loosely-typed vendor payload with fallback-aware accessors
//   - Normalizers: pure functions mapping vendor payloads into Records and Sales
//
// Every write port is an upsert keyed on a natural composite key, so re-running a
// sync for the same period never duplicates a row.
package earnings
