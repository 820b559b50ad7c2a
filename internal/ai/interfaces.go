package ai

import (
	"context"
)

// Provider is a single LLM backend. Generate sends one prompt pair and
// returns the raw model text; it never parses or validates it.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// Request is one prompt pair sent to a Provider
type Request struct {
	SystemPrompt string
	UserPrompt   string
}

// Response is the raw model output plus usage accounting
type Response struct {
	Text  string
	Usage *TokenUsage
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}
