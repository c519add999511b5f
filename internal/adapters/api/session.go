package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pocketcode/pocket-cli/internal/domain"
)

type createSessionRequest struct {
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName"`
	Platform   string `json:"platform"`
}

type sessionPayload struct {
	ID             string `json:"id"`
	DeviceName     string `json:"deviceName"`
	Platform       string `json:"platform"`
	CurrentProject string `json:"currentProject"`
	LastActivity   string `json:"lastActivity"`
}

type sessionResponse struct {
	envelope
	Session sessionPayload `json:"session"`
}

// CreateSession posts the device identity and returns the new session. It
// deliberately bypasses the renewal retry: a rejected creation is final.
func (c *Client) CreateSession(ctx context.Context, identity domain.DeviceIdentity, deviceName, platform string) (*domain.SessionInfo, error) {
	body := createSessionRequest{
		DeviceID:   identity.DeviceID,
		DeviceName: deviceName,
		Platform:   platform,
	}

	payload, result, err := c.doOnce(ctx, http.MethodPost, "/mobile/session", nil, body)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if result == callAuthExpired {
		return nil, fmt.Errorf("create session: %w", domain.ErrAuthExpired)
	}

	var resp sessionResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decode session response: %w", err)
	}
	if err := resp.check(); err != nil {
		return nil, err
	}
	if resp.Session.ID == "" {
		return nil, fmt.Errorf("session response missing session id")
	}

	session := sessionFromPayload(resp.Session)
	return &session, nil
}

// FetchSession returns the current session metadata.
func (c *Client) FetchSession(ctx context.Context) (*domain.SessionInfo, error) {
	payload, err := c.do(ctx, http.MethodGet, "/mobile/session", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}

	var resp sessionResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decode session response: %w", err)
	}
	if err := resp.check(); err != nil {
		return nil, err
	}

	session := sessionFromPayload(resp.Session)
	return &session, nil
}

func sessionFromPayload(payload sessionPayload) domain.SessionInfo {
	return domain.SessionInfo{
		ID:             payload.ID,
		DeviceName:     payload.DeviceName,
		Platform:       payload.Platform,
		CurrentProject: payload.CurrentProject,
		LastActivity:   parseTime(payload.LastActivity),
	}
}
