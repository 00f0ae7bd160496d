package usage

import "github.com/kailas-cloud/usagerelay/internal/domain/snapshot"

// SnapshotReader provides read-only access to the current snapshot.
type SnapshotReader interface {
	Load() *snapshot.Snapshot
}
