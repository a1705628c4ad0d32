package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
)

const decisionTemplate = `You are an intelligent AI assistant capable of deciding whether to invoke tools based on the user's request.

Available tools:
{{.Manifest}}

Instructions:
- For each relevant tool, return a JSON entry with the function name and parameters.
- If no tool is relevant, return an entry with decision = "no_tool".

Return ONLY valid JSON like:
{
  "tool_calls": [
    {
      "decision": "tool",
      "reason": "The user asked for weather.",
      "function": "get_weather",
      "parameters": {
        "latitude": 48.8566,
        "longitude": 2.3522
      }
    },
    {
      "decision": "tool",
      "reason": "The user asked for time.",
      "function": "get_time_now",
      "parameters": {}
    }
  ]
}
`

const synthesisInstruction = `You now have access to the results provided by the tools. When the results are clear and complete, use only that information to answer the user's question in a natural, helpful, and concise manner. However, if any result appears vague, incomplete, or states uncertainty (e.g., "I don't know"), rely on your own knowledge to deliver an accurate and informative response.
Always avoid requesting information already provided. Focus on clarity, relevance, and user value.`

var decisionTmpl = template.Must(template.New("decision").Parse(decisionTemplate))

// PromptBuilder renders the instructions sent to the model in each phase.
type PromptBuilder struct {
	registry *Registry
}

func NewPromptBuilder(registry *Registry) *PromptBuilder {
	return &PromptBuilder{registry: registry}
}

// Manifest serializes the registry's capability manifest as two-space
// indented JSON.
func (b *PromptBuilder) Manifest() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b.registry.DescriptionForPrompt()); err != nil {
		return "", fmt.Errorf("encode tool manifest: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// DecisionInstruction renders the system message for the decision phase.
func (b *PromptBuilder) DecisionInstruction() (string, error) {
	manifest, err := b.Manifest()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := decisionTmpl.Execute(&buf, struct{ Manifest string }{manifest}); err != nil {
		return "", fmt.Errorf("render decision instruction: %w", err)
	}
	return buf.String(), nil
}

// SynthesisMessages returns the messages appended before the final model call:
// the synthesis instruction, the user question and the tool results summary.
func (b *PromptBuilder) SynthesisMessages(query string, results []ToolResult) ([]ports.PromptMessage, error) {
	summary, err := summarizeResults(results)
	if err != nil {
		return nil, err
	}

	return []ports.PromptMessage{
		{Role: ports.RoleSystem, Content: synthesisInstruction},
		{Role: ports.RoleUser, Content: "User question: " + query},
		{Role: ports.RoleUser, Content: "Tool Results:\n" + summary},
	}, nil
}

// summarizeResults renders one line per tool result, in execution order.
func summarizeResults(results []ToolResult) (string, error) {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		encoded, err := marshalCompact(r.Output())
		if err != nil {
			return "", fmt.Errorf("encode result of %s: %w", r.ToolName, err)
		}
		lines = append(lines, fmt.Sprintf("- Tool `%s` returned: %s", r.ToolName, encoded))
	}
	return strings.Join(lines, "\n"), nil
}

func marshalCompact(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
