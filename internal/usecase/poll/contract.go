package poll

import (
	"context"

	"github.com/kailas-cloud/usagerelay/internal/domain/snapshot"
)

// UsageFetcher retrieves the raw usage payload from upstream.
type UsageFetcher interface {
	FetchUsage(ctx context.Context) ([]byte, error)
}

// SnapshotStore receives the outcome of every cycle.
type SnapshotStore interface {
	Store(s *snapshot.Snapshot)
}
