// Package storage archives raw vendor payloads to object storage.
package storage

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"
)

// Archive is one raw vendor payload captured during a sync run
type Archive struct {
	Platform  string
	CreatorID string
	Job       string
	FetchedAt time.Time
	Payload   any
}

// Key returns raw/<platform>/<creator>/<yyyy-mm-dd>/<job>-<unix>.json under prefix
func (a Archive) Key(prefix string) string {
	creator := a.CreatorID
	if creator == "" {
		creator = "_all"
	}
	at := a.FetchedAt.UTC()
	return path.Join(
		strings.Trim(prefix, "/"),
		sanitizeSegment(a.Platform),
		sanitizeSegment(creator),
		at.Format("2006-01-02"),
		sanitizeSegment(a.Job)+"-"+strconv.FormatInt(at.Unix(), 10)+".json",
	)
}

// sanitizeSegment keeps a key segment from escaping its directory
func sanitizeSegment(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "..", "_")
	if s == "" {
		return "_"
	}
	return s
}

// Archiver stores raw payloads and returns the object key
type Archiver interface {
	Archive(ctx context.Context, a Archive) (string, error)
}

// NopArchiver discards payloads; it is used when storage is disabled
type NopArchiver struct{}

// Archive returns the key the payload would have had, without storing it
func (NopArchiver) Archive(_ context.Context, a Archive) (string, error) {
	if a.Platform == "" || a.Job == "" {
		return "", fmt.Errorf("archive platform and job are required")
	}
	return "", nil
}

var _ Archiver = NopArchiver{}
