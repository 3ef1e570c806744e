package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/upb/hybrid-llm-gateway/config"
	"github.com/upb/hybrid-llm-gateway/internal/observability"
	"github.com/upb/hybrid-llm-gateway/services/generation"
	"github.com/upb/hybrid-llm-gateway/services/providers"
	"github.com/upb/hybrid-llm-gateway/services/providers/ollama"
	"github.com/upb/hybrid-llm-gateway/services/providers/vllm"
	"go.uber.org/zap"
)

// ServiceName and Version are reported by the status endpoint
const ServiceName = "Hybrid LLM Gateway"

// Version is overridden at build time with -ldflags "-X ...app.Version=..."
var Version = "0.1.0"

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	Logger  *zap.Logger
	Metrics observability.Metrics

	// MetricsHandler serves /metrics; nil when metrics are disabled
	MetricsHandler http.Handler

	// Engines
	Registry *providers.Registry

	// Services
	Generator *generation.Service
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initMetrics(cfg)

	if err := deps.initEngines(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize engines: %w", err)
	}

	deps.Generator = generation.NewService(deps.Registry, deps.Metrics, logger)

	logger.Info("all dependencies initialized successfully",
		zap.Strings("engines", deps.Registry.Names()))
	return deps, nil
}

// initMetrics sets up the Prometheus collectors, or a no-op when disabled
func (d *Dependencies) initMetrics(cfg *config.Config) {
	if !cfg.Observability.MetricsEnabled {
		d.Metrics = observability.NopMetrics{}
		d.Logger.Info("metrics disabled")
		return
	}

	m := observability.NewPrometheusMetrics()
	d.Metrics = m
	d.MetricsHandler = m.Handler()
}

// initEngines registers both backends with their default models
func (d *Dependencies) initEngines(cfg *config.Config) error {
	registry := providers.NewRegistry()

	ollamaAdapter := ollama.NewAdapter(providers.ProviderConfig{
		BaseURL: cfg.Engines.Ollama.BaseURL,
		Timeout: cfg.Engines.Ollama.Timeout,
	})
	if err := registry.Register(ollamaAdapter, cfg.Engines.Ollama.DefaultModel); err != nil {
		return err
	}
	d.Logger.Info("registered engine",
		zap.String("engine", ollamaAdapter.Name()),
		zap.String("base_url", cfg.Engines.Ollama.BaseURL),
		zap.String("default_model", cfg.Engines.Ollama.DefaultModel))

	vllmAdapter := vllm.NewAdapter(providers.ProviderConfig{
		BaseURL: cfg.Engines.VLLM.APIURL,
		APIKey:  cfg.Engines.VLLM.APIKey,
		Timeout: cfg.Engines.VLLM.Timeout,
	})
	if err := registry.Register(vllmAdapter, cfg.Engines.VLLM.DefaultModel); err != nil {
		return err
	}
	d.Logger.Info("registered engine",
		zap.String("engine", vllmAdapter.Name()),
		zap.String("api_url", cfg.Engines.VLLM.APIURL),
		zap.String("default_model", cfg.Engines.VLLM.DefaultModel),
		zap.Bool("api_key_set", cfg.Engines.VLLM.APIKey != ""))

	d.Logger.Info("engines ready", zap.Int("count", registry.Count()), zap.Strings("engines", registry.Names()))
	d.Registry = registry
	return nil
}

// Close releases idle backend connections and flushes the logger
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	if d.Registry != nil {
		d.Registry.CloseIdleConnections()
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	return nil
}
