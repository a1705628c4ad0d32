package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ZanzyTHEbar/toolagent/toolagent/config"
	"github.com/ZanzyTHEbar/toolagent/toolagent/db"
	"github.com/ZanzyTHEbar/toolagent/toolagent/harness"
	"github.com/ZanzyTHEbar/toolagent/toolagent/harness/adapters"
	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
	"github.com/ZanzyTHEbar/toolagent/toolagent/harness/tools"
	"github.com/ZanzyTHEbar/toolagent/toolagent/logging"
	"github.com/ZanzyTHEbar/toolagent/toolagent/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app holds the process-wide components shared by the subcommands. The
// document store connection is opened once and reused.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	factory  *harness.Factory
	provider ports.Provider
	embedder ports.Embedder
	store    *memory.Store
	registry *harness.Registry

	closers []io.Closer
}

// appOptions selects which optional components newApp builds.
type appOptions struct {
	registerer prometheus.Registerer
	needStore  bool
}

func newApp(cmd *cobra.Command, opts appOptions) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if override, _ := cmd.Flags().GetString("log-level"); override != "" {
		level = override
	}
	logger, err := logging.New(logging.Options{Level: level, Format: cfg.Logging.Format, Output: cmd.ErrOrStderr()})
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		factory:  harness.NewFactory(cfg, opts.registerer, logger),
		registry: harness.NewRegistry(),
	}

	if cfg.Provider.APIKey == "" {
		logger.Warn().Msg("No API key configured; set OPENAI_API_KEY or provider.api_key")
	}
	openai := adapters.OpenAIConfig{
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Timeout: cfg.Provider.Timeout,
	}
	a.provider = adapters.NewOpenAIProvider(openai)

	ctx := cmd.Context()
	if cfg.Retrieval.Enabled || opts.needStore {
		if err := a.openStore(ctx, openai); err != nil {
			a.Close()
			return nil, err
		}
	}

	deps := tools.Dependencies{
		WeatherBaseURL: cfg.Weather.BaseURL,
		WeatherTimeout: cfg.Weather.Timeout,
		Now:            time.Now,
	}
	if cfg.Retrieval.Enabled {
		deps.Retriever = tools.NewRetrieverTool(a.embedder, a.store, a.provider, tools.RetrieverConfig{
			TopK:             cfg.Retrieval.TopK,
			MaxContextTokens: cfg.Retrieval.MaxTokens,
			Options: ports.Options{
				Model:        cfg.Retrieval.Model,
				MaxNewTokens: cfg.Retrieval.MaxTokens,
				Temperature:  cfg.Retrieval.Temperature,
			},
		})
	}
	for _, tool := range tools.Builtin(deps) {
		a.registry.RegisterTool(tool)
	}

	logger.Debug().Strs("tools", a.registry.Names()).Msg("Registered tools")
	return a, nil
}

func (a *app) openStore(ctx context.Context, openai adapters.OpenAIConfig) error {
	cache, err := a.factory.CreateCache(ctx)
	if err != nil {
		return err
	}
	if c, ok := cache.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	model := a.cfg.Retrieval.EmbeddingModel
	a.embedder = adapters.NewCachedEmbedder(adapters.NewOpenAIEmbedder(openai, model), cache, model)

	conn, err := db.ConnectToDB(ctx, a.cfg.Retrieval.Database.DSN, a.logger)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}
	a.closers = append(a.closers, conn)
	a.store = memory.NewStore(conn)
	return nil
}

func (a *app) orchestrator() (*harness.HarnessOrchestrator, error) {
	return a.factory.CreateOrchestrator(a.provider, a.registry)
}

// Close releases the store connection and cache clients.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
