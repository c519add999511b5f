package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type healthResponse struct {
	envelope
	Version string `json:"version"`
}

// Health probes the companion service. It goes through doOnce on purpose: a
// liveness check must not trigger session renewal.
func (c *Client) Health(ctx context.Context) error {
	payload, result, err := c.doOnce(ctx, http.MethodGet, "/mobile/health", nil, nil)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	if result == callAuthExpired {
		// The probe itself answered, which is all liveness cares about.
		return nil
	}

	var resp healthResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}

	return resp.check()
}
