package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
	"github.com/rs/zerolog"
)

// Tool call outcomes reported to metrics.
const (
	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeNotFound = "not_found"
)

// ToolResult is the typed outcome of one executed decision. Exactly one of
// Value and Err is meaningful.
type ToolResult struct {
	ToolName string
	Value    any
	Err      *ToolError
	Duration time.Duration
}

// Output is the value shown to the model during synthesis. Failures are
// flattened to text here and nowhere earlier.
func (r ToolResult) Output() any {
	if r.Err == nil {
		return r.Value
	}
	switch r.Err.Kind {
	case ToolNotFound:
		return fmt.Sprintf("Function '%s' not found.", r.ToolName)
	default:
		return "Error: " + r.Err.Message
	}
}

// Failed reports whether the tool produced no value.
func (r ToolResult) Failed() bool { return r.Err != nil }

// Executor runs tool decisions sequentially, in decision order.
type Executor struct {
	registry *Registry
	tracer   ports.Tracer
	metrics  ports.Metrics
	logger   zerolog.Logger
	verbose  bool
}

// NewExecutor creates an execution phase over registry. Nil tracer and
// metrics are replaced by no-ops.
func NewExecutor(registry *Registry, tracer ports.Tracer, metrics ports.Metrics, logger zerolog.Logger, verbose bool) *Executor {
	if tracer == nil {
		tracer = &noOpTracer{}
	}
	if metrics == nil {
		metrics = &noOpMetrics{}
	}
	return &Executor{
		registry: registry,
		tracer:   tracer,
		metrics:  metrics,
		logger:   logger,
		verbose:  verbose,
	}
}

// Execute invokes every decision marked "tool" and returns one result per
// invocation. Every decision, invoked or not, is echoed as an assistant
// message. Tool failures never abort the batch.
func (e *Executor) Execute(ctx context.Context, decisions []ToolDecision) ([]ToolResult, []ports.PromptMessage, error) {
	results := make([]ToolResult, 0, len(decisions))
	messages := make([]ports.PromptMessage, 0, len(decisions))

	for _, decision := range decisions {
		if decision.Decision == DecisionTool {
			results = append(results, e.executeOne(ctx, decision))
		}

		encoded, err := marshalCompact(decision)
		if err != nil {
			return nil, nil, fmt.Errorf("encode decision for %q: %w", decision.Function, err)
		}
		messages = append(messages, ports.PromptMessage{Role: ports.RoleAssistant, Content: encoded})
	}

	return results, messages, nil
}

func (e *Executor) executeOne(ctx context.Context, decision ToolDecision) ToolResult {
	name := decision.Function
	ctx, finish := e.tracer.StartSpan(ctx, "tool."+name, map[string]any{"tool": name})
	start := time.Now()

	result := ToolResult{ToolName: name}

	desc, ok := e.registry.Lookup(name)
	if !ok || desc.Func == nil {
		result.Err = &ToolError{Kind: ToolNotFound, Message: fmt.Sprintf("function %q is not registered", name)}
		result.Duration = time.Since(start)
		e.metrics.ObserveToolCall(name, outcomeNotFound, result.Duration)
		finish(result.Err)
		e.logger.Warn().Str("tool", name).Msg("Model selected an unregistered tool")
		return result
	}

	value, err := invokeTool(ctx, desc, decision.Parameters)
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = &ToolError{Kind: ToolInvocation, Message: err.Error()}
		e.metrics.ObserveToolCall(name, outcomeError, result.Duration)
		finish(err)
		e.logger.Warn().Err(err).Str("tool", name).Msg("Tool invocation failed")
		return result
	}

	result.Value = value
	e.metrics.ObserveToolCall(name, outcomeOK, result.Duration)
	finish(nil)

	if e.verbose {
		args, _ := json.Marshal(decision.Parameters)
		out, _ := json.Marshal(value)
		e.logger.Info().
			Str("tool", name).
			RawJSON("args", orNull(args)).
			RawJSON("result", orNull(out)).
			Dur("duration", result.Duration).
			Msg("Tool executed")
	}

	return result
}

// invokeTool binds arguments and calls the tool, converting panics to errors.
func invokeTool(ctx context.Context, desc *ToolDescriptor, params map[string]any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("%v", r)
		}
	}()

	args, err := bindArguments(desc, params)
	if err != nil {
		return nil, err
	}
	return desc.Func(ctx, args)
}

func orNull(b []byte) []byte {
	if len(b) == 0 {
		return []byte("null")
	}
	return b
}
