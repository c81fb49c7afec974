package integration

import "errors"

// ---------------------------------------------------------------------------
// Platform Errors
// ---------------------------------------------------------------------------

var (
	ErrPlatformNotConfigured   = errors.New("integration: platform not configured")
	ErrPlatformUnavailable     = errors.New("integration: platform temporarily unavailable")
	ErrPlatformRequestFailed   = errors.New("integration: platform request failed")
	ErrPlatformInvalidResponse = errors.New("integration: invalid platform response")
	ErrPlatformAuthFailed      = errors.New("integration: platform authentication failed")
	ErrPlatformTokenExpired    = errors.New("integration: platform token expired")
	ErrPlatformRateLimited     = errors.New("integration: platform rate limited")
	ErrPlatformCircuitOpen     = errors.New("integration: platform circuit open")

	// GraphQL-level errors returned with HTTP 200
	ErrPlatformQueryFailed = errors.New("integration: platform query failed")

	// Credential errors
	ErrCredentialsMissing  = errors.New("integration: credentials missing")
	ErrCSRFTokenMissing    = errors.New("integration: csrf token cookie not found")
	ErrSessionTokenMissing = errors.New("integration: session token missing")
)

// IsRetryable returns true for failures worth retrying on a later run
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPlatformUnavailable) ||
		errors.Is(err, ErrPlatformRateLimited) ||
		errors.Is(err, ErrPlatformCircuitOpen)
}
