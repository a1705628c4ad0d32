package harness

import (
	"context"
	"fmt"

	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
)

// Decider runs the decision phase: it shows the model the capability manifest
// and asks which tools to call.
type Decider struct {
	provider ports.Provider
	builder  *PromptBuilder
	parser   *OutputParser
	opts     ports.Options
}

// DecisionOutcome is the decision phase result. Messages holds the system
// instruction and the user query, the start of the run's conversation.
type DecisionOutcome struct {
	Messages  []ports.PromptMessage
	Decisions []ToolDecision
	Raw       string
}

// NewDecider creates a decision phase bound to a provider and registry.
func NewDecider(provider ports.Provider, builder *PromptBuilder, opts ports.Options) (*Decider, error) {
	parser, err := NewOutputParser()
	if err != nil {
		return nil, err
	}
	return &Decider{provider: provider, builder: builder, parser: parser, opts: opts}, nil
}

// Decide asks the model for tool decisions. Transport failures are returned
// as is; invalid output wraps ErrMalformedDecision. Function names are not
// checked against the registry here.
func (d *Decider) Decide(ctx context.Context, query string) (*DecisionOutcome, error) {
	instruction, err := d.builder.DecisionInstruction()
	if err != nil {
		return nil, err
	}

	format, err := decisionResponseFormat()
	if err != nil {
		return nil, err
	}

	messages := []ports.PromptMessage{
		{Role: ports.RoleSystem, Content: instruction},
		{Role: ports.RoleUser, Content: query},
	}

	completion, err := d.provider.Complete(ctx, ports.PromptInput{
		Messages:       messages,
		ResponseFormat: format,
		Meta:           map[string]string{"phase": "decision"},
	}, d.opts)
	if err != nil {
		return nil, fmt.Errorf("decision model call: %w", err)
	}

	decisions, err := d.parser.ParseDecisions(completion.Text)
	if err != nil {
		return nil, err
	}

	return &DecisionOutcome{
		Messages:  messages,
		Decisions: decisions,
		Raw:       completion.Text,
	}, nil
}
