package harness

import (
	"errors"
	"fmt"
)

// ErrMalformedDecision marks decision-phase output that is not valid JSON or
// does not satisfy the decision schema. It aborts the run.
var ErrMalformedDecision = errors.New("malformed decision output")

// State is a step of a single run.
type State string

const (
	StateStart              State = "start"
	StateDecisionRequested  State = "decision_requested"
	StateDecisionsParsed    State = "decisions_parsed"
	StateToolsExecuted      State = "tools_executed"
	StateSynthesisRequested State = "synthesis_requested"
	StateDone               State = "done"
)

// RunError reports the state a run had reached when it failed.
type RunError struct {
	State State
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run failed in state %s: %v", e.State, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// ToolErrorKind distinguishes why a tool produced no value.
type ToolErrorKind string

const (
	ToolNotFound   ToolErrorKind = "not_found"
	ToolInvocation ToolErrorKind = "invocation"
)

// ToolError is the failure half of a ToolResult.
type ToolError struct {
	Kind    ToolErrorKind
	Message string
}

func (e *ToolError) Error() string { return e.Message }
