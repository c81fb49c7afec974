package earnings

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Platform identifies an affiliate network or social source
// ---------------------------------------------------------------------------

// Platform identifies an affiliate network or social source
type Platform string

const (
	// PlatformMavely is the Mavely affiliate network
	PlatformMavely Platform = "mavely"
	// PlatformShopMy is the ShopMy affiliate network
	PlatformShopMy Platform = "shopmy"
	// PlatformLTK is LTK (rewardStyle)
	PlatformLTK Platform = "ltk"
	// PlatformAmazon is the Amazon Associates program
	PlatformAmazon Platform = "amazon"
	// PlatformInstagram is the Instagram Graph API
	PlatformInstagram Platform = "instagram"
)

// AllPlatforms lists every known platform in display order
var AllPlatforms = []Platform{
	PlatformMavely,
	PlatformShopMy,
	PlatformLTK,
	PlatformAmazon,
	PlatformInstagram,
}

// IsValid returns true if the platform is known
func (p Platform) IsValid() bool {
	switch p {
	case PlatformMavely, PlatformShopMy, PlatformLTK, PlatformAmazon, PlatformInstagram:
		return true
	default:
		return false
	}
}

// String returns the string representation of Platform
func (p Platform) String() string {
	return string(p)
}

// DisplayName returns a human-readable name for the platform
func (p Platform) DisplayName() string {
	switch p {
	case PlatformMavely:
		return "Mavely"
	case PlatformShopMy:
		return "ShopMy"
	case PlatformLTK:
		return "LTK"
	case PlatformAmazon:
		return "Amazon"
	case PlatformInstagram:
		return "Instagram"
	default:
		return string(p)
	}
}

// ParsePlatform parses a platform name case-insensitively
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPlatform, s)
	}
	return p, nil
}

// ---------------------------------------------------------------------------
// Status is the payout state of an earnings row or sale
// ---------------------------------------------------------------------------

// Status is the payout state of an earnings row or sale
type Status string

const (
	// StatusOpen is the default state for newly reported earnings
	StatusOpen Status = "open"
	// StatusPending indicates earnings locked or processing for payout
	StatusPending Status = "pending"
	// StatusPaid indicates earnings already paid out
	StatusPaid Status = "paid"
	// StatusReversed indicates cancelled or returned orders
	StatusReversed Status = "reversed"
)

// IsValid returns true if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusPending, StatusPaid, StatusReversed:
		return true
	default:
		return false
	}
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// ParseStatus maps a vendor status string onto Status.
// Unknown or empty values fall back to StatusOpen.
func ParseStatus(s string) Status {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st.IsValid() {
		return st
	}
	return StatusOpen
}
