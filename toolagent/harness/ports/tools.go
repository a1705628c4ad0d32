package harnessports

import (
	"context"
)

// ToolSpec describes a callable tool exposed to the model.
type ToolSpec struct {
	Name        string            // unique logical name
	Description string            // concise doc for model selection
	Parameters  map[string]string // parameter name -> human readable type and meaning
}

// Tool defines the runtime that executes a tool call. Arguments arrive by
// parameter name.
type Tool interface {
	Spec() ToolSpec
	Invoke(ctx context.Context, args map[string]any) (any, error)
}
