package ingest

import "errors"

var (
	ErrJobAlreadyRunning  = errors.New("ingest: job is already running")
	ErrUnknownJob         = errors.New("ingest: unknown job")
	ErrNoOwnedCreators    = errors.New("ingest: no owned creators found")
	ErrCreatorNotEligible = errors.New("ingest: creator is not eligible for this job")
)
