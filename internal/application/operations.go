package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/pocketcode/pocket-cli/internal/domain"
)

// Typed wrappers around the companion service endpoints. While disconnected
// each call parks on the offline queue (see queue.go); none of them retry
// beyond the transport's single 401-triggered renewal.

func (c *Client) SendMessage(ctx context.Context, content string) (*domain.ChatExchange, error) {
	var exchange *domain.ChatExchange
	err := c.execute(ctx, func(callCtx context.Context) error {
		result, err := c.api.SendChat(callCtx, content)
		if err != nil {
			return err
		}
		exchange = result
		return nil
	})
	return exchange, err
}

func (c *Client) SendVoiceMessage(ctx context.Context, transcript string) (*domain.ChatExchange, error) {
	var exchange *domain.ChatExchange
	err := c.execute(ctx, func(callCtx context.Context) error {
		result, err := c.api.SendVoice(callCtx, transcript)
		if err != nil {
			return err
		}
		exchange = result
		return nil
	})
	return exchange, err
}

func (c *Client) ChatHistory(ctx context.Context, limit, offset int) (*domain.HistoryPage, error) {
	var page *domain.HistoryPage
	err := c.execute(ctx, func(callCtx context.Context) error {
		result, err := c.api.ChatHistory(callCtx, limit, offset)
		if err != nil {
			return err
		}
		page = result
		return nil
	})
	return page, err
}

func (c *Client) ClearChatHistory(ctx context.Context) error {
	return c.execute(ctx, func(callCtx context.Context) error {
		return c.api.ClearChatHistory(callCtx)
	})
}

func (c *Client) Projects(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	err := c.execute(ctx, func(callCtx context.Context) error {
		result, err := c.api.ListProjects(callCtx)
		if err != nil {
			return err
		}
		projects = result
		return nil
	})
	return projects, err
}

func (c *Client) OpenProject(ctx context.Context, id string) (*domain.ProjectDetails, error) {
	var details *domain.ProjectDetails
	err := c.execute(ctx, func(callCtx context.Context) error {
		result, err := c.api.OpenProject(callCtx, id)
		if err != nil {
			return err
		}
		details = result
		return nil
	})
	return details, err
}

func (c *Client) CurrentProject(ctx context.Context) (*domain.ProjectDetails, error) {
	var details *domain.ProjectDetails
	err := c.execute(ctx, func(callCtx context.Context) error {
		result, err := c.api.CurrentProject(callCtx)
		if err != nil {
			return err
		}
		details = result
		return nil
	})
	return details, err
}

func (c *Client) ReadFile(ctx context.Context, path string) (*domain.FileContent, error) {
	var file *domain.FileContent
	err := c.execute(ctx, func(callCtx context.Context) error {
		result, err := c.api.ReadFile(callCtx, path)
		if err != nil {
			return err
		}
		file = result
		return nil
	})
	return file, err
}

func (c *Client) WriteFile(ctx context.Context, path, content string) error {
	return c.execute(ctx, func(callCtx context.Context) error {
		return c.api.WriteFile(callCtx, path, content)
	})
}

// Health is the one operation that never waits for a connection: it probes
// the configured target directly.
func (c *Client) Health(ctx context.Context) bool {
	if err := c.api.Health(ctx); err != nil {
		c.logger.Debug("health probe failed", zap.Error(err))
		return false
	}
	return true
}
