package earnings

import "errors"

var (
	ErrInvalidPlatform   = errors.New("earnings: invalid platform")
	ErrInvalidPeriod     = errors.New("earnings: period end is before start")
	ErrMissingCreator    = errors.New("earnings: creator id is required")
	ErrNegativeCount     = errors.New("earnings: clicks and orders must not be negative")
	ErrMissingExternalID = errors.New("earnings: external id is required")
	ErrInvalidMonthKey   = errors.New("earnings: invalid month key")
)
