package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pocketcode/pocket-cli/internal/domain"
)

type chatMessagePayload struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	IsVoice   bool   `json:"isVoice"`
	Timestamp string `json:"timestamp"`
	Model     string `json:"model"`
}

type sendChatRequest struct {
	Content string `json:"content"`
}

type sendVoiceRequest struct {
	Transcript string `json:"transcript"`
}

type chatExchangeResponse struct {
	envelope
	UserMessage      chatMessagePayload `json:"userMessage"`
	AssistantMessage chatMessagePayload `json:"assistantMessage"`
}

type chatHistoryResponse struct {
	envelope
	Messages []chatMessagePayload `json:"messages"`
	Total    int                  `json:"total"`
}

type clearHistoryResponse struct {
	envelope
}

// SendChat posts a text message and returns the echoed user/assistant pair.
func (c *Client) SendChat(ctx context.Context, content string) (*domain.ChatExchange, error) {
	return c.sendMessage(ctx, "/mobile/chat", sendChatRequest{Content: content})
}

// SendVoice posts an already-transcribed voice message. Capture and
// transcription happen outside this client.
func (c *Client) SendVoice(ctx context.Context, transcript string) (*domain.ChatExchange, error) {
	return c.sendMessage(ctx, "/mobile/voice", sendVoiceRequest{Transcript: transcript})
}

func (c *Client) sendMessage(ctx context.Context, path string, body any) (*domain.ChatExchange, error) {
	payload, err := c.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	var resp chatExchangeResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if err := resp.check(); err != nil {
		return nil, err
	}

	return &domain.ChatExchange{
		UserMessage:      messageFromPayload(resp.UserMessage),
		AssistantMessage: messageFromPayload(resp.AssistantMessage),
	}, nil
}

// ChatHistory fetches one page of history, newest-first as served.
func (c *Client) ChatHistory(ctx context.Context, limit, offset int) (*domain.HistoryPage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	payload, err := c.do(ctx, http.MethodGet, "/mobile/chat/history", query, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch chat history: %w", err)
	}

	var resp chatHistoryResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decode chat history: %w", err)
	}
	if err := resp.check(); err != nil {
		return nil, err
	}

	messages := make([]domain.ChatMessage, 0, len(resp.Messages))
	for _, message := range resp.Messages {
		messages = append(messages, messageFromPayload(message))
	}

	return &domain.HistoryPage{Messages: messages, Total: resp.Total}, nil
}

func (c *Client) ClearChatHistory(ctx context.Context) error {
	payload, err := c.do(ctx, http.MethodDelete, "/mobile/chat/history", nil, nil)
	if err != nil {
		return fmt.Errorf("clear chat history: %w", err)
	}

	var resp clearHistoryResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return fmt.Errorf("decode clear history response: %w", err)
	}

	return resp.check()
}

func messageFromPayload(payload chatMessagePayload) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        payload.ID,
		Role:      domain.MessageRole(payload.Role),
		Content:   payload.Content,
		IsVoice:   payload.IsVoice,
		Timestamp: parseTime(payload.Timestamp),
		Model:     payload.Model,
	}
}
