// Package store holds raw audio segments between the record and generate
// steps of the voice-banking flow. Contents are transient: a new wizard run
// replaces the whole set, and a successful voice creation consumes it.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrStorageUnavailable wraps any backend failure. Callers surface it as a
// retryable condition instead of continuing with a partial Recording Set.
var ErrStorageUnavailable = errors.New("recording storage unavailable")

// Segment is one captured audio answer to one prompt.
type Segment struct {
	Data        []byte
	ContentType string
}

// Store keeps the ordered Recording Set for a wizard session. Keys are
// scoped per session, so two concurrent wizard runs never observe each
// other's segments.
type Store interface {
	// ReplaceAll clears any previously stored segments for the session and
	// writes the given ordered list. On failure the prior contents are
	// indeterminate; no rollback is attempted.
	ReplaceAll(ctx context.Context, sessionID string, segments []Segment) error

	// ReadAll returns the session's segments in ordinal order. An empty
	// store yields an empty list, not an error.
	ReadAll(ctx context.Context, sessionID string) ([]Segment, error)

	// Clear empties the session's segments.
	Clear(ctx context.Context, sessionID string) error
}

// segmentKey derives the storage key for the segment at the given ordinal.
// Zero-padded so lexicographic ordering equals ordinal ordering.
func segmentKey(ordinal int) string {
	return fmt.Sprintf("segment_%03d", ordinal)
}

// SessionKey derives the store key for one owner's wizard session. The
// owner prefix means a caller can only ever read sets written under their
// own identity, whatever session id they present.
func SessionKey(ownerID, sessionID string) string {
	return ownerID + "/" + sessionID
}
