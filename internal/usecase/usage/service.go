package usage

import (
	"context"

	"github.com/kailas-cloud/usagerelay/internal/domain/snapshot"
)

// Service serves the cached usage snapshot. It never contacts upstream.
type Service struct {
	snapshots SnapshotReader
}

// New creates a Service.
func New(snapshots SnapshotReader) *Service {
	return &Service{snapshots: snapshots}
}

// Current returns the latest snapshot together with its served JSON document.
func (s *Service) Current(_ context.Context) (*snapshot.Snapshot, []byte, error) {
	snap := s.snapshots.Load()
	doc, err := snap.MarshalJSON()
	if err != nil {
		return nil, nil, err
	}
	return snap, doc, nil
}
