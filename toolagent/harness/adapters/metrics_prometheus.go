package adapters

import (
	"errors"
	"time"

	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics exposes run, model call and tool call collectors.
type PrometheusMetrics struct {
	runDuration   *prometheus.HistogramVec
	modelDuration *prometheus.HistogramVec
	modelFailures *prometheus.CounterVec
	toolDuration  *prometheus.HistogramVec
	toolCalls     *prometheus.CounterVec
}

// NewPrometheusMetrics registers the collectors on reg. Collectors that are
// already registered are reused.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "toolagent",
			Subsystem: "harness",
			Name:      "run_duration_seconds",
			Help:      "Duration of complete agent runs.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		modelDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "toolagent",
			Subsystem: "harness",
			Name:      "model_call_duration_seconds",
			Help:      "Duration of model calls per phase.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"}),
		modelFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toolagent",
			Subsystem: "harness",
			Name:      "model_call_failures_total",
			Help:      "Model calls that returned an error.",
		}, []string{"phase"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "toolagent",
			Subsystem: "harness",
			Name:      "tool_call_duration_seconds",
			Help:      "Duration of tool invocations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toolagent",
			Subsystem: "harness",
			Name:      "tool_calls_total",
			Help:      "Tool invocations by outcome.",
		}, []string{"tool", "outcome"}),
	}

	var err error
	if m.runDuration, err = register(reg, m.runDuration); err != nil {
		return nil, err
	}
	if m.modelDuration, err = register(reg, m.modelDuration); err != nil {
		return nil, err
	}
	if m.modelFailures, err = register(reg, m.modelFailures); err != nil {
		return nil, err
	}
	if m.toolDuration, err = register(reg, m.toolDuration); err != nil {
		return nil, err
	}
	if m.toolCalls, err = register(reg, m.toolCalls); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *PrometheusMetrics) ObserveRun(outcome string, d time.Duration) {
	m.runDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *PrometheusMetrics) ObserveModelCall(phase string, d time.Duration, err error) {
	m.modelDuration.WithLabelValues(phase).Observe(d.Seconds())
	if err != nil {
		m.modelFailures.WithLabelValues(phase).Inc()
	}
}

func (m *PrometheusMetrics) ObserveToolCall(tool, outcome string, d time.Duration) {
	m.toolDuration.WithLabelValues(tool).Observe(d.Seconds())
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
}

var _ ports.Metrics = (*PrometheusMetrics)(nil)
