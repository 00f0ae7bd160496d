package usagerelay

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// State tells which kind of snapshot the relay is serving.
type State string

// State constants.
const (
	StateStarting State = "starting" // no fetch has completed yet
	StateReady    State = "ready"    // Payload holds the upstream document
	StateFailed   State = "failed"   // Error holds the failure reason
)

// Usage is the snapshot served on GET /usage.
type Usage struct {
	State     State
	Payload   json.RawMessage // verbatim upstream body when State is StateReady
	Error     string
	UpdatedAt time.Time // zero when the server did not send Last-Modified
}

// Usage calls GET /usage.
func (c *Client) Usage(ctx context.Context) (u Usage, err error) {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, err) }()

	body, header, err := c.get(ctx, "/usage")
	if err != nil {
		return Usage{}, err
	}
	obj, err := decodeObject(body)
	if err != nil {
		return Usage{}, err
	}

	if lm := header.Get("Last-Modified"); lm != "" {
		if t, perr := http.ParseTime(lm); perr == nil {
			u.UpdatedAt = t
		}
	}

	switch {
	case isSingleString(obj, "status", "starting"):
		u.State = StateStarting
	case isSingleString(obj, "error", ""):
		u.State = StateFailed
		_ = json.Unmarshal(obj["error"], &u.Error)
	default:
		u.State = StateReady
		u.Payload = json.RawMessage(bytes.Clone(body))
	}
	return u, nil
}

// isSingleString reports whether obj is exactly {key: <string>}. An empty want matches any string.
func isSingleString(obj map[string]json.RawMessage, key, want string) bool {
	if len(obj) != 1 {
		return false
	}
	raw, ok := obj[key]
	if !ok {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	return want == "" || s == want
}
