package harnessports

import (
	"context"
)

// Message roles understood by every provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// PromptMessage represents a single chat message used to build prompts.
type PromptMessage struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ResponseFormat constrains the completion to a named JSON schema.
type ResponseFormat struct {
	Name        string
	Description string
	Schema      []byte
	Strict      bool
}

// PromptInput aggregates everything the provider needs to produce a completion.
type PromptInput struct {
	Messages []PromptMessage // ordered chat history
	// ResponseFormat is nil for free-text completions.
	ResponseFormat *ResponseFormat
	Meta           map[string]string // lightweight metadata for tracing
}

// Options controls model selection, sampling and limits.
type Options struct {
	Model        string
	MaxNewTokens int
	Temperature  float32
	// TimeoutMs applies to the provider call only (not the overall run deadline)
	TimeoutMs int
}

// Usage captures token accounting for cost/telemetry.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the provider's non-streaming response.
type Completion struct {
	Text  string
	Raw   any    // raw provider payload for debugging/telemetry
	Usage *Usage // optional usage information
}

// Provider is the abstraction for all LLM backends.
type Provider interface {
	Complete(ctx context.Context, in PromptInput, opts Options) (Completion, error)
}
