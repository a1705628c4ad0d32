package harness

import (
	"context"
	"fmt"

	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
)

// Synthesizer runs the final model turn that answers the user from tool results.
type Synthesizer struct {
	provider ports.Provider
	builder  *PromptBuilder
	opts     ports.Options
}

func NewSynthesizer(provider ports.Provider, builder *PromptBuilder, opts ports.Options) *Synthesizer {
	return &Synthesizer{provider: provider, builder: builder, opts: opts}
}

// Synthesize appends the synthesis instruction, the user question and the
// tool results summary to history, sends everything in text mode and returns
// the model's answer with the full message sequence.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, history []ports.PromptMessage, results []ToolResult) (string, []ports.PromptMessage, error) {
	tail, err := s.builder.SynthesisMessages(query, results)
	if err != nil {
		return "", nil, err
	}

	messages := make([]ports.PromptMessage, 0, len(history)+len(tail))
	messages = append(messages, history...)
	messages = append(messages, tail...)

	completion, err := s.provider.Complete(ctx, ports.PromptInput{
		Messages: messages,
		Meta:     map[string]string{"phase": "synthesis"},
	}, s.opts)
	if err != nil {
		return "", messages, fmt.Errorf("synthesis model call: %w", err)
	}

	return completion.Text, messages, nil
}
