package health

import (
	"context"
	"time"
)

// Status represents the server liveness status.
type Status string

// Healthy is reported whenever the server is able to answer.
const Healthy Status = "ok"

// Message accompanies every health report.
const Message = "Server is running"

// Report describes the server and whether it has usage data to serve.
type Report struct {
	Status    Status
	HasData   bool
	Message   string
	UpdatedAt time.Time // zero until the first fetch completes
}

// Service builds health reports from the current snapshot.
type Service struct {
	snapshots SnapshotReader
}

// New creates a Service.
func New(snapshots SnapshotReader) *Service {
	return &Service{snapshots: snapshots}
}

// Check reports liveness. HasData is true iff the last completed fetch succeeded.
func (s *Service) Check(_ context.Context) Report {
	snap := s.snapshots.Load()
	return Report{
		Status:    Healthy,
		HasData:   snap.HasData(),
		Message:   Message,
		UpdatedAt: snap.UpdatedAt(),
	}
}
