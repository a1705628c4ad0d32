package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OutputParser turns decision-phase completions into ToolDecisions. It never
// repairs output: anything that is not schema-valid JSON is rejected.
type OutputParser struct {
	validator *JSONValidator
	schema    []byte
}

// NewOutputParser creates a parser bound to the decision schema.
func NewOutputParser() (*OutputParser, error) {
	schema, err := DecisionSchema()
	if err != nil {
		return nil, err
	}
	return &OutputParser{validator: NewJSONValidator(), schema: schema}, nil
}

// ParseDecisions validates text against the decision schema and decodes it.
// Errors wrap ErrMalformedDecision.
func (p *OutputParser) ParseDecisions(text string) ([]ToolDecision, error) {
	data := bytes.TrimSpace([]byte(text))
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty completion", ErrMalformedDecision)
	}

	if err := p.validator.Validate(data, p.schema); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDecision, err)
	}

	var calls ToolCalls
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&calls); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDecision, err)
	}

	return calls.ToolCalls, nil
}
