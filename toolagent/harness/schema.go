package harness

import (
	"encoding/json"
	"fmt"
	"sync"

	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
	"github.com/invopop/jsonschema"
)

// Decision values understood by the execution phase.
const (
	DecisionTool   = "tool"
	DecisionNoTool = "no_tool"
)

// ToolDecision is the model's judgment for one candidate tool call.
type ToolDecision struct {
	Decision   string         `json:"decision"`
	Reason     string         `json:"reason"`
	Function   string         `json:"function"`
	Parameters map[string]any `json:"parameters"`
}

// ToolCalls is the decision phase output envelope.
type ToolCalls struct {
	ToolCalls []ToolDecision `json:"tool_calls"`
}

var (
	decisionSchemaOnce sync.Once
	decisionSchema     []byte
	decisionSchemaErr  error
)

// DecisionSchema returns the JSON schema every decision payload must satisfy.
func DecisionSchema() ([]byte, error) {
	decisionSchemaOnce.Do(func() {
		r := &jsonschema.Reflector{
			ExpandedStruct:            true,
			DoNotReference:            true,
			AllowAdditionalProperties: true,
		}
		s := r.Reflect(&ToolCalls{})
		s.Version = ""
		s.Title = "ToolCalls"
		decisionSchema, decisionSchemaErr = json.Marshal(s)
		if decisionSchemaErr != nil {
			decisionSchemaErr = fmt.Errorf("marshal decision schema: %w", decisionSchemaErr)
		}
	})
	return decisionSchema, decisionSchemaErr
}

// decisionResponseFormat wraps the schema in the named format sent to the provider.
func decisionResponseFormat() (*ports.ResponseFormat, error) {
	schema, err := DecisionSchema()
	if err != nil {
		return nil, err
	}
	return &ports.ResponseFormat{
		Name:        "ToolCall",
		Description: "Tool execution format",
		Schema:      schema,
	}, nil
}
