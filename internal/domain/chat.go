package domain

import "time"

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is server-owned; the client only parses and displays it.
type ChatMessage struct {
	ID        string
	Role      MessageRole
	Content   string
	IsVoice   bool
	Timestamp time.Time
	Model     string
}

// ChatExchange is the user/assistant pair echoed back by the chat and voice
// endpoints.
type ChatExchange struct {
	UserMessage      ChatMessage
	AssistantMessage ChatMessage
}

type HistoryPage struct {
	Messages []ChatMessage
	Total    int
}
