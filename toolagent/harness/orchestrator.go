package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Settings controls model options shared by both model calls of a run.
type Settings struct {
	Options ports.Options
	Verbose bool // log decisions and tool results
}

// Response is the final output of a run.
type Response struct {
	RunID     string
	Query     string
	Answer    string
	Decisions []ToolDecision
	Results   []ToolResult
	Messages  []ports.PromptMessage
}

// HarnessOrchestrator drives decide-tools, execute-tools, synthesize-answer.
type HarnessOrchestrator struct {
	registry    *Registry
	decider     *Decider
	executor    *Executor
	synthesizer *Synthesizer
	tracer      ports.Tracer
	metrics     ports.Metrics
	logger      zerolog.Logger
	verbose     bool
}

// NewHarnessOrchestrator creates a new orchestrator with dependencies. Nil
// limiter, tracer and metrics are replaced by no-ops.
func NewHarnessOrchestrator(
	provider ports.Provider,
	registry *Registry,
	limiter ports.RateLimiter,
	tracer ports.Tracer,
	metrics ports.Metrics,
	logger zerolog.Logger,
	settings Settings,
) (*HarnessOrchestrator, error) {
	if provider == nil {
		return nil, errors.New("harness: provider is required")
	}
	if registry == nil {
		return nil, errors.New("harness: registry is required")
	}
	if limiter == nil {
		limiter = &noOpRateLimiter{}
	}
	if tracer == nil {
		tracer = &noOpTracer{}
	}
	if metrics == nil {
		metrics = &noOpMetrics{}
	}

	instrumented := &instrumentedProvider{next: provider, limiter: limiter, tracer: tracer, metrics: metrics}
	builder := NewPromptBuilder(registry)

	decider, err := NewDecider(instrumented, builder, settings.Options)
	if err != nil {
		return nil, err
	}

	return &HarnessOrchestrator{
		registry:    registry,
		decider:     decider,
		executor:    NewExecutor(registry, tracer, metrics, logger, settings.Verbose),
		synthesizer: NewSynthesizer(instrumented, builder, settings.Options),
		tracer:      tracer,
		metrics:     metrics,
		logger:      logger,
		verbose:     settings.Verbose,
	}, nil
}

// Registry returns the registry the orchestrator reads tools from.
func (o *HarnessOrchestrator) Registry() *Registry { return o.registry }

// Run answers query. Malformed decision output and model transport failures
// abort the run with a *RunError; tool failures do not.
func (o *HarnessOrchestrator) Run(ctx context.Context, query string) (*Response, error) {
	runID := uuid.NewString()
	started := time.Now()
	logger := o.logger.With().Str("run_id", runID).Logger()

	ctx, finish := o.tracer.StartSpan(ctx, "run", map[string]any{"run_id": runID})

	state := StateStart
	fail := func(err error) (*Response, error) {
		runErr := &RunError{State: state, Err: err}
		outcome := outcomeError
		if errors.Is(err, ErrMalformedDecision) {
			outcome = "malformed_decision"
		}
		o.metrics.ObserveRun(outcome, time.Since(started))
		finish(runErr)
		logger.Error().Err(err).Str("state", string(state)).Msg("Run failed")
		return nil, runErr
	}

	state = StateDecisionRequested
	decided, err := o.decider.Decide(ctx, query)
	if err != nil {
		return fail(err)
	}
	state = StateDecisionsParsed

	if o.verbose {
		raw, _ := json.MarshalIndent(ToolCalls{ToolCalls: decided.Decisions}, "", "  ")
		logger.Info().Msgf("LLM Reasoning:\n%s", raw)
	}

	results, echoed, err := o.executor.Execute(ctx, decided.Decisions)
	if err != nil {
		return fail(err)
	}
	state = StateToolsExecuted

	history := make([]ports.PromptMessage, 0, len(decided.Messages)+len(echoed))
	history = append(history, decided.Messages...)
	history = append(history, echoed...)

	state = StateSynthesisRequested
	answer, messages, err := o.synthesizer.Synthesize(ctx, query, history, results)
	if err != nil {
		return fail(err)
	}
	state = StateDone

	o.metrics.ObserveRun(outcomeOK, time.Since(started))
	finish(nil)
	logger.Debug().
		Int("decisions", len(decided.Decisions)).
		Int("tool_calls", len(results)).
		Dur("duration", time.Since(started)).
		Msg("Run completed")

	return &Response{
		RunID:     runID,
		Query:     query,
		Answer:    answer,
		Decisions: decided.Decisions,
		Results:   results,
		Messages:  messages,
	}, nil
}

// instrumentedProvider applies rate limiting, tracing and metrics to every
// model call, keyed by the phase recorded in the prompt metadata.
type instrumentedProvider struct {
	next    ports.Provider
	limiter ports.RateLimiter
	tracer  ports.Tracer
	metrics ports.Metrics
}

func (p *instrumentedProvider) Complete(ctx context.Context, in ports.PromptInput, opts ports.Options) (ports.Completion, error) {
	phase := in.Meta["phase"]

	release, err := p.limiter.Acquire(ctx, phase)
	if err != nil {
		return ports.Completion{}, fmt.Errorf("rate limit exceeded: %w", err)
	}
	defer release()

	ctx, finish := p.tracer.StartSpan(ctx, "model."+phase, map[string]any{
		"model":    opts.Model,
		"messages": len(in.Messages),
	})
	start := time.Now()

	completion, err := p.next.Complete(ctx, in, opts)
	p.metrics.ObserveModelCall(phase, time.Since(start), err)
	if err == nil && completion.Usage != nil {
		p.tracer.Event(ctx, "usage", map[string]any{
			"prompt_tokens":     completion.Usage.PromptTokens,
			"completion_tokens": completion.Usage.CompletionTokens,
		})
	}
	finish(err)

	return completion, err
}

var _ ports.Provider = (*instrumentedProvider)(nil)
