// Package affiliate implements the integration ports for the affiliate networks:
// ShopMy, Mavely, LTK, and the Airtable mirror that also holds LTK credentials.
//
// Clients share nothing but their vendorhttp.Transport, which paces, guards and
// size-caps every call. Payloads that vendors reshape between endpoints are
// returned as earnings.Fields and normalized by the domain layer.
package affiliate
