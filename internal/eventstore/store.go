// Package eventstore records build history as an append-only event log.
package eventstore

import (
	"context"
	"time"
)

// Store persists and retrieves build events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, buildID, eventType string, payload []byte) error

	// GetByBuildID retrieves all events for a specific build, oldest first.
	GetByBuildID(ctx context.Context, buildID string) ([]Event, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// RecentBuilds returns summaries of the n most recently started builds, newest first.
	RecentBuilds(ctx context.Context, n int) ([]BuildSummary, error)

	// Close closes the store and releases resources.
	Close() error
}
