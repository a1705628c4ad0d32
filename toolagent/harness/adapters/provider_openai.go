package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
)

// OpenAIConfig configures the OpenAI-compatible adapters.
type OpenAIConfig struct {
	BaseURL string // e.g. https://api.openai.com/v1
	APIKey  string
	Timeout time.Duration
}

// OpenAIProvider implements Provider against an OpenAI-compatible
// /chat/completions endpoint.
type OpenAIProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewOpenAIProvider creates a provider. A zero timeout defaults to 60s.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	return &OpenAIProvider{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: newHTTPClient(cfg.Timeout),
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

type chatRequest struct {
	Model          string                `json:"model"`
	Messages       []ports.PromptMessage `json:"messages"`
	MaxTokens      int                   `json:"max_tokens,omitempty"`
	Temperature    float32               `json:"temperature"`
	ResponseFormat *chatResponseFormat   `json:"response_format,omitempty"`
}

type chatResponseFormat struct {
	Type       string          `json:"type"`
	JSONSchema *chatJSONSchema `json:"json_schema,omitempty"`
}

type chatJSONSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Schema      json.RawMessage `json:"schema"`
	Strict      bool            `json:"strict"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *ports.Usage `json:"usage,omitempty"`
}

// Complete sends one chat completion request. Structured output is requested
// when in.ResponseFormat is set.
func (p *OpenAIProvider) Complete(ctx context.Context, in ports.PromptInput, opts ports.Options) (ports.Completion, error) {
	if opts.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	req := chatRequest{
		Model:       opts.Model,
		Messages:    in.Messages,
		MaxTokens:   opts.MaxNewTokens,
		Temperature: opts.Temperature,
	}
	if rf := in.ResponseFormat; rf != nil {
		req.ResponseFormat = &chatResponseFormat{
			Type: "json_schema",
			JSONSchema: &chatJSONSchema{
				Name:        rf.Name,
				Description: rf.Description,
				Schema:      json.RawMessage(rf.Schema),
				Strict:      rf.Strict,
			},
		}
	}

	var resp chatResponse
	if err := postJSON(ctx, p.httpClient, p.baseURL+"/chat/completions", p.apiKey, req, &resp); err != nil {
		return ports.Completion{}, err
	}

	if len(resp.Choices) == 0 {
		return ports.Completion{}, errors.New("chat completion returned no choices")
	}

	msg := resp.Choices[0].Message
	if msg.Content == "" && msg.Refusal != "" {
		return ports.Completion{}, errors.New("model refused: " + msg.Refusal)
	}

	return ports.Completion{
		Text:  msg.Content,
		Raw:   resp,
		Usage: resp.Usage,
	}, nil
}

var _ ports.Provider = (*OpenAIProvider)(nil)
