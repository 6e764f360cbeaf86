package ai

import (
	"context"

	"github.com/thinkscotty/fakenews/internal/models"
)

// Provider is the interface that all chat-completion backends must implement.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Name() string
}

// UsageRecorder receives one record per model call. The run ledger
// implements it; a nil recorder disables recording.
type UsageRecorder interface {
	LogModelCall(call models.ModelCall) error
}

// ChatRequest is a provider-agnostic request.
type ChatRequest struct {
	Messages  []Message
	Model     string
	MaxTokens int
	Schema    *JSONSchema // non-nil requests strict schema-constrained output
}

// ChatResponse is a provider-agnostic response.
type ChatResponse struct {
	Content    string
	TokensUsed int
	Model      string
	Provider   string
}

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

type runIDKey struct{}

// WithRunID tags ctx so model calls made under it are attributed to a run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run ID set by WithRunID, or "".
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
