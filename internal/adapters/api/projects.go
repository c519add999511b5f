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

type projectPayload struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Path         string   `json:"path"`
	Language     string   `json:"language"`
	IsGitRepo    bool     `json:"isGitRepo"`
	LastModified string   `json:"lastModified"`
	Files        []string `json:"files"`
}

type projectListResponse struct {
	envelope
	Projects []projectPayload `json:"projects"`
}

type projectResponse struct {
	envelope
	Project *projectPayload `json:"project"`
}

func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	payload, err := c.do(ctx, http.MethodGet, "/mobile/projects", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	var resp projectListResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decode project list: %w", err)
	}
	if err := resp.check(); err != nil {
		return nil, err
	}

	projects := make([]domain.Project, 0, len(resp.Projects))
	for _, project := range resp.Projects {
		projects = append(projects, projectFromPayload(project))
	}

	return projects, nil
}

func (c *Client) OpenProject(ctx context.Context, id string) (*domain.ProjectDetails, error) {
	if id == "" {
		return nil, errors.New("project id is required")
	}

	path := fmt.Sprintf("/mobile/projects/%s/open", url.PathEscape(id))
	payload, err := c.do(ctx, http.MethodPost, path, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("open project: %w", err)
	}

	return decodeProject(payload)
}

// CurrentProject returns nil without error when no project is open.
func (c *Client) CurrentProject(ctx context.Context) (*domain.ProjectDetails, error) {
	payload, err := c.do(ctx, http.MethodGet, "/mobile/projects/current", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch current project: %w", err)
	}

	var resp projectResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decode project response: %w", err)
	}
	if err := resp.check(); err != nil {
		return nil, err
	}
	if resp.Project == nil {
		return nil, nil
	}

	details := detailsFromPayload(*resp.Project)
	return &details, nil
}

func decodeProject(payload []byte) (*domain.ProjectDetails, error) {
	var resp projectResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decode project response: %w", err)
	}
	if err := resp.check(); err != nil {
		return nil, err
	}
	if resp.Project == nil {
		return nil, errors.New("project response missing project")
	}

	details := detailsFromPayload(*resp.Project)
	return &details, nil
}

func projectFromPayload(payload projectPayload) domain.Project {
	return domain.Project{
		ID:           payload.ID,
		Name:         payload.Name,
		Path:         payload.Path,
		Language:     payload.Language,
		IsGitRepo:    payload.IsGitRepo,
		LastModified: parseTime(payload.LastModified),
	}
}

func detailsFromPayload(payload projectPayload) domain.ProjectDetails {
	return domain.ProjectDetails{
		Project: projectFromPayload(payload),
		Files:   payload.Files,
	}
}
