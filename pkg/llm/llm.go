package llm

import (
	"context"
	"fmt"
)

// ChatModel is a minimal abstraction for chat-based LLMs used by the domain.
// It intentionally hides concrete providers to preserve dependency direction.
type ChatModel interface {
	Complete(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// ChatRequest is a single-turn chat completion: one system and one user message.
type ChatRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

type Choice struct {
	Index        int
	Text         string
	FinishReason string
}

type ChatResponse struct {
	Model   string
	Choices []Choice
}

// APIError is returned when the provider answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}
