// Package snapshot defines the cached result of the most recent fetch cycle.
package snapshot

import (
	"encoding/json"
	"time"
)

// Kind distinguishes the snapshot variants.
type Kind string

// Snapshot kinds.
const (
	KindPending Kind = "pending"
	KindSuccess Kind = "success"
	KindFailure Kind = "failure"
)

// Snapshot is an immutable fetch outcome. Values are never modified after
// construction; a new Snapshot replaces the old one.
type Snapshot struct {
	kind      Kind
	payload   json.RawMessage
	reason    string
	updatedAt time.Time
}

// Pending returns the snapshot that exists before the first fetch completes.
func Pending() *Snapshot {
	return &Snapshot{kind: KindPending}
}

// Success creates a snapshot holding the upstream payload verbatim.
// The payload is copied so later mutation of the caller's buffer is not observed.
func Success(payload []byte, at time.Time) *Snapshot {
	p := make(json.RawMessage, len(payload))
	copy(p, payload)
	return &Snapshot{kind: KindSuccess, payload: p, updatedAt: at}
}

// Failure creates a snapshot recording why the last fetch failed.
func Failure(reason string, at time.Time) *Snapshot {
	return &Snapshot{kind: KindFailure, reason: reason, updatedAt: at}
}

// Kind returns the snapshot variant.
func (s *Snapshot) Kind() Kind { return s.kind }

// Payload returns the raw upstream body. Nil unless Kind is KindSuccess.
func (s *Snapshot) Payload() json.RawMessage { return s.payload }

// Reason returns the failure reason. Empty unless Kind is KindFailure.
func (s *Snapshot) Reason() string { return s.reason }

// UpdatedAt returns when the snapshot was produced. Zero for pending.
func (s *Snapshot) UpdatedAt() time.Time { return s.updatedAt }

// HasData reports whether the snapshot carries a successful payload.
func (s *Snapshot) HasData() bool { return s.kind == KindSuccess }

// MarshalJSON renders the snapshot the way it is served:
// {"status":"starting"} while pending, the payload as-is on success,
// and {"error":reason} on failure.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case KindSuccess:
		return s.payload, nil
	case KindFailure:
		return json.Marshal(struct {
			Error string `json:"error"`
		}{Error: s.reason})
	default:
		return []byte(`{"status":"starting"}`), nil
	}
}
