// Package server exposes the agent over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/toolagent/toolagent/config"
	"github.com/ZanzyTHEbar/toolagent/toolagent/harness"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Agent answers queries with the tools in its registry.
type Agent interface {
	Run(ctx context.Context, query string) (*harness.Response, error)
	Registry() *harness.Registry
}

// AskRequest is the body of POST /v1/ask.
type AskRequest struct {
	Query string `json:"query"`
}

// AskResponse is the body returned by POST /v1/ask.
type AskResponse struct {
	RunID     string                 `json:"run_id"`
	Answer    string                 `json:"answer"`
	Decisions []harness.ToolDecision `json:"decisions"`
	Results   []ResultView           `json:"results"`
}

// ResultView is a tool result as rendered to API clients.
type ResultView struct {
	Tool       string `json:"tool"`
	Output     any    `json:"output"`
	Failed     bool   `json:"failed"`
	DurationMs int64  `json:"duration_ms"`
}

type errorResponse struct {
	Error string `json:"error"`
	State string `json:"state,omitempty"`
}

// Server serves the ask, tools, health and metrics endpoints.
type Server struct {
	agent    Agent
	gatherer prometheus.Gatherer
	logger   zerolog.Logger
}

// NewHandler creates the HTTP handler for agent. A nil gatherer leaves
// /metrics unmounted.
func NewHandler(agent Agent, gatherer prometheus.Gatherer, logger zerolog.Logger) http.Handler {
	s := &Server{agent: agent, gatherer: gatherer, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.Health)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/ask", s.Ask)
		r.Get("/tools", s.Tools)
	})
	return r
}

// Ask handles POST /v1/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var body AskRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(body.Query) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
		return
	}

	resp, err := s.agent.Run(r.Context(), body.Query)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, harness.ErrMalformedDecision) {
			status = http.StatusBadGateway
		}
		out := errorResponse{Error: err.Error()}
		var runErr *harness.RunError
		if errors.As(err, &runErr) {
			out.State = string(runErr.State)
		}
		writeJSON(w, status, out)
		return
	}

	results := make([]ResultView, 0, len(resp.Results))
	for _, res := range resp.Results {
		results = append(results, ResultView{
			Tool:       res.ToolName,
			Output:     res.Output(),
			Failed:     res.Failed(),
			DurationMs: res.Duration.Milliseconds(),
		})
	}

	decisions := resp.Decisions
	if decisions == nil {
		decisions = []harness.ToolDecision{}
	}

	writeJSON(w, http.StatusOK, AskResponse{
		RunID:     resp.RunID,
		Answer:    resp.Answer,
		Decisions: decisions,
		Results:   results,
	})
}

// Tools handles GET /v1/tools.
func (s *Server) Tools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.agent.Registry().DescriptionForPrompt())
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"tools":  s.agent.Registry().Len(),
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe serves handler on cfg.Addr until ctx is cancelled, then
// shuts down gracefully.
func ListenAndServe(ctx context.Context, cfg config.ServerConfig, handler http.Handler, logger zerolog.Logger) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info().Msg("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}
