package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pocketcode/pocket-cli/internal/domain"
)

type filePayload struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Modified string `json:"modified"`
}

type fileResponse struct {
	envelope
	File filePayload `json:"file"`
}

type writeFileRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type writeFileResponse struct {
	envelope
}

func (c *Client) ReadFile(ctx context.Context, path string) (*domain.FileContent, error) {
	if path == "" {
		return nil, errors.New("file path is required")
	}

	query := url.Values{}
	query.Set("path", path)

	payload, err := c.do(ctx, http.MethodGet, "/mobile/files", query, nil)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var resp fileResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decode file response: %w", err)
	}
	if err := resp.check(); err != nil {
		return nil, err
	}

	return &domain.FileContent{
		Path:     resp.File.Path,
		Content:  resp.File.Content,
		Modified: parseTime(resp.File.Modified),
	}, nil
}

func (c *Client) WriteFile(ctx context.Context, path, content string) error {
	if path == "" {
		return errors.New("file path is required")
	}

	payload, err := c.do(ctx, http.MethodPut, "/mobile/files", nil, writeFileRequest{
		Path:    path,
		Content: content,
	})
	if err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	var resp writeFileResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return fmt.Errorf("decode write response: %w", err)
	}

	return resp.check()
}
