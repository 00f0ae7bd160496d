package usagerelay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// HealthStatus is the relay's liveness report.
type HealthStatus struct {
	Status  string `json:"status"`
	HasData bool   `json:"has_data"` // last completed fetch succeeded
	Message string `json:"message"`
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) (h HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	body, _, err := c.get(ctx, "/health")
	if err != nil {
		return HealthStatus{}, err
	}
	if _, err = decodeObject(body); err != nil {
		return HealthStatus{}, err
	}
	if err = json.Unmarshal(body, &h); err != nil {
		return HealthStatus{}, fmt.Errorf("usagerelay: decode health: %w", err)
	}
	return h, nil
}
