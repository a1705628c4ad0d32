package harness

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/ZanzyTHEbar/toolagent/toolagent/config"
	"github.com/ZanzyTHEbar/toolagent/toolagent/harness/adapters"
	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
)

// StubProvider implements Provider for testing.
type StubProvider struct {
	mu             sync.Mutex
	calls          []ports.PromptInput
	completionFunc func(ctx context.Context, in ports.PromptInput, opts ports.Options) (ports.Completion, error)
}

func (p *StubProvider) Complete(ctx context.Context, in ports.PromptInput, opts ports.Options) (ports.Completion, error) {
	p.mu.Lock()
	p.calls = append(p.calls, in)
	p.mu.Unlock()

	if p.completionFunc != nil {
		return p.completionFunc(ctx, in, opts)
	}
	return ports.Completion{
		Text: "stub completion",
		Usage: &ports.Usage{
			PromptTokens:     10,
			CompletionTokens: 5,
			TotalTokens:      15,
		},
	}, nil
}

// phasedProvider answers the decision phase with decision and every other
// phase with answer.
func phasedProvider(decision, answer string) *StubProvider {
	return &StubProvider{completionFunc: func(ctx context.Context, in ports.PromptInput, opts ports.Options) (ports.Completion, error) {
		if in.Meta["phase"] == "decision" {
			return ports.Completion{Text: decision}, nil
		}
		return ports.Completion{Text: answer}, nil
	}}
}

const weatherDecision = `{
  "tool_calls": [
    {
      "decision": "tool",
      "reason": "The user asked for weather.",
      "function": "get_weather",
      "parameters": {"latitude": 48.8566, "longitude": 2.3522}
    }
  ]
}`

type weatherCall struct {
	lat, lon any
}

func newTestRegistry(calls *[]weatherCall) *Registry {
	registry := NewRegistry()
	registry.Register("get_weather", func(ctx context.Context, args map[string]any) (any, error) {
		*calls = append(*calls, weatherCall{lat: args["latitude"], lon: args["longitude"]})
		return map[string]any{"temperature_2m": 11.2, "wind_speed_10m": 7.9}, nil
	}, "Get current temperature for provided coordinates in celsius.", ParameterSpec{
		"latitude":  "float - The latitude of the location.",
		"longitude": "float - The longitude of the location.",
	})
	registry.Register("get_time_now", func(ctx context.Context, args map[string]any) (any, error) {
		return map[string]string{"time": "2025-03-14 09:26:53"}, nil
	}, "Returns the current local date and time.", nil)
	return registry
}

func TestRegistry_Manifest(t *testing.T) {
	registry := newTestRegistry(new([]weatherCall))

	assert.Equal(t, 2, registry.Len())
	assert.Equal(t, []string{"get_time_now", "get_weather"}, registry.Names())

	manifest, err := NewPromptBuilder(registry).Manifest()
	require.NoError(t, err)

	expected := `{
  "get_time_now": {
    "description": "Returns the current local date and time.",
    "parameters": {}
  },
  "get_weather": {
    "description": "Get current temperature for provided coordinates in celsius.",
    "parameters": {
      "latitude": "float - The latitude of the location.",
      "longitude": "float - The longitude of the location."
    }
  }
}`
	assert.Equal(t, expected, manifest)

	// Every registered name appears in the manifest and nothing else does.
	summaries := registry.DescriptionForPrompt()
	assert.Len(t, summaries, registry.Len())
	for _, name := range registry.Names() {
		assert.Contains(t, summaries, name)
	}
}

func TestRegistry_LastWriteWins(t *testing.T) {
	registry := NewRegistry()
	registry.Register("echo", func(ctx context.Context, args map[string]any) (any, error) { return "v1", nil }, "first", nil)
	registry.Register("echo", func(ctx context.Context, args map[string]any) (any, error) { return "v2", nil }, "second", ParameterSpec{"text": "str"})

	assert.Equal(t, 1, registry.Len())

	desc, ok := registry.Lookup("echo")
	require.True(t, ok)
	assert.Equal(t, "second", desc.Description)
	assert.Equal(t, ParameterSpec{"text": "str"}, desc.Parameters)

	fn, ok := registry.Callable("echo")
	require.True(t, ok)
	out, err := fn(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "v2", out)

	_, ok = registry.Callable("missing")
	assert.False(t, ok)
}

func TestPromptBuilder_DecisionInstruction(t *testing.T) {
	builder := NewPromptBuilder(newTestRegistry(new([]weatherCall)))

	instruction, err := builder.DecisionInstruction()
	require.NoError(t, err)

	manifest, err := builder.Manifest()
	require.NoError(t, err)

	assert.Contains(t, instruction, "Available tools:\n"+manifest+"\n")
	assert.Contains(t, instruction, `If no tool is relevant, return an entry with decision = "no_tool".`)
	assert.Contains(t, instruction, `"function": "get_time_now"`)
}

func TestPromptBuilder_SynthesisMessages(t *testing.T) {
	builder := NewPromptBuilder(NewRegistry())

	messages, err := builder.SynthesisMessages("How's the weather in Paris?", []ToolResult{
		{ToolName: "get_weather", Value: map[string]any{"temperature_2m": 11.2}},
		{ToolName: "get_stock_price", Err: &ToolError{Kind: ToolNotFound}},
		{ToolName: "get_time_now", Err: &ToolError{Kind: ToolInvocation, Message: "clock <unavailable>"}},
	})
	require.NoError(t, err)
	require.Len(t, messages, 3)

	assert.Equal(t, ports.RoleSystem, messages[0].Role)
	assert.True(t, strings.HasPrefix(messages[0].Content, "You now have access to the results provided by the tools."))
	assert.Equal(t, ports.PromptMessage{Role: ports.RoleUser, Content: "User question: How's the weather in Paris?"}, messages[1])
	assert.Equal(t, ports.PromptMessage{Role: ports.RoleUser, Content: "Tool Results:\n" +
		"- Tool `get_weather` returned: {\"temperature_2m\":11.2}\n" +
		"- Tool `get_stock_price` returned: \"Function 'get_stock_price' not found.\"\n" +
		"- Tool `get_time_now` returned: \"Error: clock <unavailable>\""}, messages[2])

	empty, err := builder.SynthesisMessages("q", nil)
	require.NoError(t, err)
	assert.Equal(t, "Tool Results:\n", empty[2].Content)
}

func TestOutputParser_ParseDecisions(t *testing.T) {
	parser, err := NewOutputParser()
	require.NoError(t, err)

	tests := []struct {
		name      string
		input     string
		want      []ToolDecision
		malformed bool
	}{
		{
			name:  "single tool",
			input: `{"tool_calls":[{"decision":"tool","reason":"r","function":"get_time_now","parameters":{}}]}`,
			want:  []ToolDecision{{Decision: "tool", Reason: "r", Function: "get_time_now", Parameters: map[string]any{}}},
		},
		{
			name:  "numbers are kept exact",
			input: `{"tool_calls":[{"decision":"tool","reason":"r","function":"get_weather","parameters":{"latitude":-33.8688}}]}`,
			want: []ToolDecision{{Decision: "tool", Reason: "r", Function: "get_weather",
				Parameters: map[string]any{"latitude": json.Number("-33.8688")}}},
		},
		{
			name:  "no tool with surrounding whitespace",
			input: "\n  {\"tool_calls\":[{\"decision\":\"no_tool\",\"reason\":\"chit-chat\",\"function\":\"\",\"parameters\":{}}]}  \n",
			want:  []ToolDecision{{Decision: "no_tool", Reason: "chit-chat", Function: "", Parameters: map[string]any{}}},
		},
		{name: "empty list", input: `{"tool_calls":[]}`, want: []ToolDecision{}},
		{name: "empty", input: "   ", malformed: true},
		{name: "not json", input: "Sure! I will call the weather tool.", malformed: true},
		{name: "fenced", input: "```json\n{\"tool_calls\":[]}\n```", malformed: true},
		{name: "missing envelope", input: `{"calls":[]}`, malformed: true},
		{name: "missing function", input: `{"tool_calls":[{"decision":"tool","reason":"r","parameters":{}}]}`, malformed: true},
		{name: "parameters not object", input: `{"tool_calls":[{"decision":"tool","reason":"r","function":"f","parameters":[1]}]}`, malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.ParseDecisions(tt.input)
			if tt.malformed {
				assert.ErrorIs(t, err, ErrMalformedDecision)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGuardrails_Validate(t *testing.T) {
	schema, err := DecisionSchema()
	require.NoError(t, err)

	v := NewJSONValidator()
	assert.NoError(t, v.Validate(json.RawMessage(`{"tool_calls":[]}`), schema))
	assert.Error(t, v.Validate(json.RawMessage(`{"tool_calls":"none"}`), schema))
	assert.Error(t, v.Validate(json.RawMessage(`{`), schema))
}

func TestDecider_Idempotent(t *testing.T) {
	provider := phasedProvider(weatherDecision, "")
	decider, err := NewDecider(provider, NewPromptBuilder(newTestRegistry(new([]weatherCall))), ports.Options{Model: "gpt-4o"})
	require.NoError(t, err)

	first, err := decider.Decide(context.Background(), "How's the weather in Paris?")
	require.NoError(t, err)
	second, err := decider.Decide(context.Background(), "How's the weather in Paris?")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first.Decisions, 1)
	assert.Equal(t, "get_weather", first.Decisions[0].Function)

	require.Len(t, provider.calls, 2)
	call := provider.calls[0]
	require.NotNil(t, call.ResponseFormat)
	assert.Equal(t, "ToolCall", call.ResponseFormat.Name)
	assert.Equal(t, "Tool execution format", call.ResponseFormat.Description)
	assert.Equal(t, "decision", call.Meta["phase"])
	require.Len(t, call.Messages, 2)
	assert.Equal(t, ports.RoleSystem, call.Messages[0].Role)
	assert.Equal(t, ports.PromptMessage{Role: ports.RoleUser, Content: "How's the weather in Paris?"}, call.Messages[1])
}

func TestDecider_Failures(t *testing.T) {
	builder := NewPromptBuilder(NewRegistry())

	transport := &StubProvider{completionFunc: func(ctx context.Context, in ports.PromptInput, opts ports.Options) (ports.Completion, error) {
		return ports.Completion{}, errors.New("connection refused")
	}}
	decider, err := NewDecider(transport, builder, ports.Options{})
	require.NoError(t, err)
	_, err = decider.Decide(context.Background(), "q")
	assert.ErrorContains(t, err, "connection refused")
	assert.NotErrorIs(t, err, ErrMalformedDecision)

	decider, err = NewDecider(phasedProvider("not json", ""), builder, ports.Options{})
	require.NoError(t, err)
	_, err = decider.Decide(context.Background(), "q")
	assert.ErrorIs(t, err, ErrMalformedDecision)
}

type ExecutorTestSuite struct {
	suite.Suite
	registry *Registry
	invoked  []string
	executor *Executor
}

func (s *ExecutorTestSuite) SetupTest() {
	s.invoked = nil
	s.registry = NewRegistry()
	s.registry.Register("add", func(ctx context.Context, args map[string]any) (any, error) {
		s.invoked = append(s.invoked, "add")
		a, _ := args["a"].(json.Number).Float64()
		b, _ := args["b"].(json.Number).Float64()
		return a + b, nil
	}, "Adds two numbers.", ParameterSpec{"a": "float", "b": "float"})
	s.registry.Register("fail", func(ctx context.Context, args map[string]any) (any, error) {
		s.invoked = append(s.invoked, "fail")
		return nil, errors.New("upstream returned 503")
	}, "Always fails.", nil)
	s.registry.Register("explode", func(ctx context.Context, args map[string]any) (any, error) {
		s.invoked = append(s.invoked, "explode")
		panic("index out of range")
	}, "Always panics.", nil)
	s.executor = NewExecutor(s.registry, nil, nil, zerolog.Nop(), true)
}

func TestExecutorTestSuite(t *testing.T) {
	suite.Run(t, new(ExecutorTestSuite))
}

func (s *ExecutorTestSuite) TestNoToolIsEchoedButNotInvoked() {
	results, messages, err := s.executor.Execute(context.Background(), []ToolDecision{
		{Decision: DecisionNoTool, Reason: "greeting", Parameters: map[string]any{}},
	})
	s.Require().NoError(err)
	s.Empty(results)
	s.Empty(s.invoked)
	s.Require().Len(messages, 1)
	s.Equal(ports.RoleAssistant, messages[0].Role)
	s.JSONEq(`{"decision":"no_tool","reason":"greeting","function":"","parameters":{}}`, messages[0].Content)
}

func (s *ExecutorTestSuite) TestResultsFollowDecisionOrder() {
	results, messages, err := s.executor.Execute(context.Background(), []ToolDecision{
		{Decision: DecisionTool, Function: "fail", Parameters: map[string]any{}},
		{Decision: DecisionNoTool},
		{Decision: DecisionTool, Function: "add", Parameters: map[string]any{"a": json.Number("1.5"), "b": json.Number("2")}},
		{Decision: DecisionTool, Function: "get_stock_price", Parameters: map[string]any{"ticker": "SAP"}},
		{Decision: DecisionTool, Function: "explode", Parameters: map[string]any{}},
	})
	s.Require().NoError(err)
	s.Len(messages, 5)
	s.Equal([]string{"fail", "add", "explode"}, s.invoked)

	s.Require().Len(results, 4)
	s.Equal("Error: upstream returned 503", results[0].Output())
	s.Equal(3.5, results[1].Output())
	s.False(results[1].Failed())
	s.Equal("Function 'get_stock_price' not found.", results[2].Output())
	s.Equal(ToolNotFound, results[2].Err.Kind)
	s.Equal("Error: index out of range", results[3].Output())
	s.Equal(ToolInvocation, results[3].Err.Kind)
}

func (s *ExecutorTestSuite) TestArgumentMismatch() {
	results, _, err := s.executor.Execute(context.Background(), []ToolDecision{
		{Decision: DecisionTool, Function: "add", Parameters: map[string]any{"a": json.Number("1"), "c": json.Number("2")}},
		{Decision: DecisionTool, Function: "add", Parameters: map[string]any{"a": json.Number("1")}},
		{Decision: DecisionTool, Function: "add"},
	})
	s.Require().NoError(err)
	s.Empty(s.invoked)
	s.Require().Len(results, 3)
	s.Equal("Error: add() got an unexpected keyword argument 'c'", results[0].Output())
	s.Equal("Error: add() missing 1 required argument(s): 'b'", results[1].Output())
	s.Equal("Error: add() missing 2 required argument(s): 'a', 'b'", results[2].Output())
}

func (s *ExecutorTestSuite) TestNilCallableIsNotFound() {
	s.registry.Register("ghost", nil, "Registered without a callable.", nil)

	results, _, err := s.executor.Execute(context.Background(), []ToolDecision{
		{Decision: DecisionTool, Function: "ghost", Parameters: map[string]any{}},
	})
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal("Function 'ghost' not found.", results[0].Output())
}

type OrchestratorTestSuite struct {
	suite.Suite
	ctx      context.Context
	calls    []weatherCall
	registry *Registry
	reg      *prometheus.Registry
	metrics  ports.Metrics
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.calls = nil
	s.registry = newTestRegistry(&s.calls)
	s.reg = prometheus.NewRegistry()

	metrics, err := adapters.NewPrometheusMetrics(s.reg)
	s.Require().NoError(err)
	s.metrics = metrics
}

func (s *OrchestratorTestSuite) newOrchestrator(provider ports.Provider) *HarnessOrchestrator {
	o, err := NewHarnessOrchestrator(provider, s.registry, nil, adapters.NewZerologTracer(zerolog.Nop()), s.metrics, zerolog.Nop(), Settings{
		Options: ports.Options{Model: "gpt-4o", MaxNewTokens: 2000, Temperature: 0.2},
		Verbose: true,
	})
	s.Require().NoError(err)
	return o
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) TestWeatherQuery() {
	provider := phasedProvider(weatherDecision, "It is 11.2°C in Paris with a light breeze.")

	resp, err := s.newOrchestrator(provider).Run(s.ctx, "How's the weather in Paris?")
	s.Require().NoError(err)

	s.NotEmpty(resp.RunID)
	s.Equal("It is 11.2°C in Paris with a light breeze.", resp.Answer)
	s.Require().Len(s.calls, 1)
	s.Equal(json.Number("48.8566"), s.calls[0].lat)
	s.Equal(json.Number("2.3522"), s.calls[0].lon)

	s.Require().Len(provider.calls, 2)
	synthesis := provider.calls[1]
	s.Nil(synthesis.ResponseFormat)
	s.Equal("synthesis", synthesis.Meta["phase"])

	// system, user, echoed decision, synthesis instruction, question, results
	s.Require().Len(synthesis.Messages, 6)
	s.Equal(resp.Messages, synthesis.Messages)
	s.Equal(ports.RoleAssistant, synthesis.Messages[2].Role)
	s.JSONEq(`{"decision":"tool","reason":"The user asked for weather.","function":"get_weather","parameters":{"latitude":48.8566,"longitude":2.3522}}`,
		synthesis.Messages[2].Content)
	s.Equal("User question: How's the weather in Paris?", synthesis.Messages[4].Content)
	s.Equal("Tool Results:\n- Tool `get_weather` returned: {\"temperature_2m\":11.2,\"wind_speed_10m\":7.9}", synthesis.Messages[5].Content)

	n, err := testutil.GatherAndCount(s.reg, "toolagent_harness_tool_calls_total")
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *OrchestratorTestSuite) TestNoToolQuery() {
	decision := `{"tool_calls":[{"decision":"no_tool","reason":"Small talk.","function":"","parameters":{}}]}`
	provider := phasedProvider(decision, "Hello! How can I help?")

	resp, err := s.newOrchestrator(provider).Run(s.ctx, "Hi there")
	s.Require().NoError(err)

	s.Equal("Hello! How can I help?", resp.Answer)
	s.Empty(resp.Results)
	s.Empty(s.calls)
	s.Equal("Tool Results:\n", resp.Messages[len(resp.Messages)-1].Content)
}

func (s *OrchestratorTestSuite) TestUnknownToolAndMultipleCalls() {
	decision := `{"tool_calls":[
		{"decision":"tool","reason":"Stock price.","function":"get_stock_price","parameters":{"ticker":"SAP"}},
		{"decision":"tool","reason":"Time.","function":"get_time_now","parameters":{}}
	]}`
	provider := phasedProvider(decision, "I could not find the stock price, but it is 09:26.")

	resp, err := s.newOrchestrator(provider).Run(s.ctx, "What's SAP trading at and what time is it?")
	s.Require().NoError(err)

	s.Require().Len(resp.Results, 2)
	s.Equal("Tool Results:\n"+
		"- Tool `get_stock_price` returned: \"Function 'get_stock_price' not found.\"\n"+
		"- Tool `get_time_now` returned: {\"time\":\"2025-03-14 09:26:53\"}",
		resp.Messages[len(resp.Messages)-1].Content)
}

func (s *OrchestratorTestSuite) TestMalformedDecisionAbortsRun() {
	provider := phasedProvider("I think you should call get_weather.", "unused")

	resp, err := s.newOrchestrator(provider).Run(s.ctx, "How's the weather in Paris?")
	s.Nil(resp)
	s.ErrorIs(err, ErrMalformedDecision)

	var runErr *RunError
	s.Require().ErrorAs(err, &runErr)
	s.Equal(StateDecisionRequested, runErr.State)
	s.Len(provider.calls, 1)
	s.Empty(s.calls)
}

func (s *OrchestratorTestSuite) TestSynthesisFailure() {
	provider := &StubProvider{completionFunc: func(ctx context.Context, in ports.PromptInput, opts ports.Options) (ports.Completion, error) {
		if in.Meta["phase"] == "decision" {
			return ports.Completion{Text: weatherDecision}, nil
		}
		return ports.Completion{}, errors.New("context deadline exceeded")
	}}

	_, err := s.newOrchestrator(provider).Run(s.ctx, "How's the weather in Paris?")

	var runErr *RunError
	s.Require().ErrorAs(err, &runErr)
	s.Equal(StateSynthesisRequested, runErr.State)
	s.ErrorContains(err, "context deadline exceeded")
	s.Len(s.calls, 1)
}

func (s *OrchestratorTestSuite) TestRateLimitedModelCalls() {
	o, err := NewHarnessOrchestrator(phasedProvider(weatherDecision, "ok"), s.registry,
		rejectingLimiter{}, nil, nil, zerolog.Nop(), Settings{})
	s.Require().NoError(err)

	_, err = o.Run(s.ctx, "q")
	s.ErrorContains(err, "rate limit exceeded")
}

type rejectingLimiter struct{}

func (rejectingLimiter) Acquire(ctx context.Context, key string) (func(), error) {
	return nil, adapters.ErrRateLimitExceeded
}

func TestNewHarnessOrchestrator_RequiresDependencies(t *testing.T) {
	_, err := NewHarnessOrchestrator(nil, NewRegistry(), nil, nil, nil, zerolog.Nop(), Settings{})
	assert.Error(t, err)

	_, err = NewHarnessOrchestrator(&StubProvider{}, nil, nil, nil, nil, zerolog.Nop(), Settings{})
	assert.Error(t, err)
}

func testConfig() *config.Config {
	return &config.Config{
		Agent: config.AgentConfig{Model: "gpt-4o", MaxTokens: 2000, Temperature: 0.2, Verbose: true},
		Harness: config.HarnessConfig{
			CacheEnabled:    true,
			CacheBackend:    "memory",
			CacheCapacity:   8,
			CacheTTLSeconds: 0, // a positive TTL starts the LRU's expiry goroutine
			EnableTracing:   true,
			EnableMetrics:   true,
		},
	}
}

func TestFactory(t *testing.T) {
	reg := prometheus.NewRegistry()
	factory := NewFactory(testConfig(), reg, zerolog.Nop())

	settings := factory.Settings()
	assert.Equal(t, ports.Options{Model: "gpt-4o", MaxNewTokens: 2000, Temperature: 0.2}, settings.Options)
	assert.True(t, settings.Verbose)

	cache, err := factory.CreateCache(context.Background())
	require.NoError(t, err)
	require.IsType(t, &adapters.LRUCache{}, cache)
	require.NoError(t, cache.Set(context.Background(), "k", []byte("v"), 0))
	v, ok := cache.Get(context.Background(), "k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	assert.IsType(t, &adapters.ZerologTracer{}, factory.CreateTracer())

	first, err := factory.Metrics()
	require.NoError(t, err)
	second, err := factory.Metrics()
	require.NoError(t, err)
	assert.Same(t, first, second)

	o, err := factory.CreateOrchestrator(phasedProvider(weatherDecision, "Sunny."), newTestRegistry(new([]weatherCall)))
	require.NoError(t, err)
	resp, err := o.Run(context.Background(), "How's the weather in Paris?")
	require.NoError(t, err)
	assert.Equal(t, "Sunny.", resp.Answer)

	n, err := testutil.GatherAndCount(reg, "toolagent_harness_run_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFactory_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Harness = config.HarnessConfig{}
	factory := NewFactory(cfg, nil, zerolog.Nop())

	cache, err := factory.CreateCache(context.Background())
	require.NoError(t, err)
	_, ok := cache.Get(context.Background(), "k")
	assert.False(t, ok)

	assert.IsType(t, &noOpTracer{}, factory.CreateTracer())
	assert.IsType(t, &noOpRateLimiter{}, factory.createRateLimiter())

	metrics, err := factory.Metrics()
	require.NoError(t, err)
	assert.IsType(t, &noOpMetrics{}, metrics)
}

func BenchmarkPromptBuilder_DecisionInstruction(b *testing.B) {
	builder := NewPromptBuilder(newTestRegistry(new([]weatherCall)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = builder.DecisionInstruction()
	}
}
