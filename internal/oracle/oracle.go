// Package oracle provides the reasoning-oracle clients used to judge and plan bounties.
// Two wire protocols are supported: OpenAI-style chat completions and the Anthropic
// Messages API (directly or through AWS Bedrock).
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Role tags a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged chat message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a single completion call. Zero Temperature/MaxTokens fall back to the
// client's configured values.
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Response is the text consumed by callers plus token usage.
type Response struct {
	Content      string
	Model        string
	InputTokens  int64
	OutputTokens int64
}

// Completer is anything that can answer a chat request.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// ErrEmptyResponse is returned when the oracle answers without any content.
var ErrEmptyResponse = errors.New("oracle returned no choices")

// APIError wraps non-2xx responses from the oracle endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("oracle api error: status=%d body=%s", e.StatusCode, truncate(strings.TrimSpace(e.Body), 500))
}

// System builds a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User builds a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Assistant builds an assistant message.
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
