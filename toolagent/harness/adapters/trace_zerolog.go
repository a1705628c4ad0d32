package adapters

import (
	"context"
	"time"

	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
	"github.com/rs/zerolog"
)

type spanKey struct{}

// span is the tracing state carried in a context.
type span struct {
	name   string
	base   zerolog.Logger // logger with inherited attributes, without the span name
	logger zerolog.Logger
}

// ZerologTracer implements the Tracer interface using zerolog.
type ZerologTracer struct {
	logger zerolog.Logger
}

// NewZerologTracer creates a new zerolog tracer.
func NewZerologTracer(logger zerolog.Logger) *ZerologTracer {
	return &ZerologTracer{
		logger: logger,
	}
}

// StartSpan starts a new tracing span and returns the context and finish function.
// A child span inherits the attributes of its parent.
func (t *ZerologTracer) StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, func(err error)) {
	base := t.logger
	parentName := ""
	if parent, ok := ctx.Value(spanKey{}).(*span); ok {
		base = parent.base
		parentName = parent.name
	}

	lc := base.With()
	for k, v := range attrs {
		lc = lc.Interface(k, v)
	}
	base = lc.Logger()

	sc := base.With().Str("span", name)
	if parentName != "" {
		sc = sc.Str("parent_span", parentName)
	}
	s := &span{name: name, base: base, logger: sc.Logger()}

	ctx = context.WithValue(ctx, spanKey{}, s)
	startTime := time.Now()

	s.logger.Debug().Str("event", "span_start").Msg("Starting span")

	finish := func(err error) {
		event := s.logger.Debug()
		if err != nil {
			event = s.logger.Warn().Err(err)
		}

		event.
			Str("event", "span_end").
			Dur("duration", time.Since(startTime)).
			Msg("Ending span")
	}

	return ctx, finish
}

// Event logs a tracing event with the current span context.
func (t *ZerologTracer) Event(ctx context.Context, name string, attrs map[string]any) {
	logger := t.logger
	if s, ok := ctx.Value(spanKey{}).(*span); ok {
		logger = s.logger
	}

	event := logger.Debug()
	for k, v := range attrs {
		event = event.Interface(k, v)
	}
	event.Str("event", name).Msg("Tracing event")
}

// Ensure ZerologTracer implements the Tracer interface.
var _ ports.Tracer = (*ZerologTracer)(nil)
