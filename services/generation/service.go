package generation

import (
	"context"
	"time"

	"github.com/upb/hybrid-llm-gateway/internal/observability"
	"github.com/upb/hybrid-llm-gateway/services"
	"github.com/upb/hybrid-llm-gateway/services/providers"
	"go.uber.org/zap"
)

// overrideModelLabel stands in for client-chosen models in metric labels
const overrideModelLabel = "override"

// Service dispatches generation requests to the engine the caller selected
type Service struct {
	registry *providers.Registry
	metrics  observability.Metrics
	logger   *zap.Logger
}

// NewService creates a new generation service. A nil metrics collector
// disables metrics.
func NewService(registry *providers.Registry, metrics observability.Metrics, logger *zap.Logger) *Service {
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	return &Service{
		registry: registry,
		metrics:  metrics,
		logger:   logger,
	}
}

// Generate resolves the engine and model for req and performs exactly one
// backend call. An unknown engine fails before any backend is contacted.
// Engine errors are returned as-is.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	logger := observability.FromContext(ctx, s.logger)

	binding, err := s.registry.Lookup(req.Engine)
	if err != nil {
		logger.Warn("rejected generation for unknown engine", zap.String("engine", req.Engine))
		return nil, services.NewInvalidEngineError(req.Engine)
	}

	model := req.Model
	if model == "" {
		model = binding.DefaultModel
	}
	modelLabel := model
	if model != binding.DefaultModel {
		modelLabel = overrideModelLabel
	}

	logger.Info("dispatching generation",
		zap.String("engine", req.Engine),
		zap.String("model", model),
		zap.Int("max_tokens", req.MaxTokens),
		zap.Float64("temperature", req.Temperature))

	start := time.Now()
	text, err := binding.Engine.Generate(ctx, &providers.GenerateRequest{
		Prompt:      req.Prompt,
		Model:       model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	elapsed := time.Since(start)

	if err != nil {
		outcome := string(services.GetErrorKind(err))
		if outcome == "" {
			outcome = "internal"
		}
		s.metrics.RecordGeneration(req.Engine, modelLabel, outcome, elapsed)
		logger.Error("generation failed",
			zap.String("engine", req.Engine),
			zap.String("model", model),
			zap.Duration("latency", elapsed),
			zap.Error(err))
		return nil, err
	}

	s.metrics.RecordGeneration(req.Engine, modelLabel, observability.OutcomeSuccess, elapsed)
	logger.Info("generation completed",
		zap.String("engine", req.Engine),
		zap.String("model", model),
		zap.Duration("latency", elapsed),
		zap.Int("response_chars", len(text)))

	return &Result{
		Text:   text,
		Model:  model,
		Engine: req.Engine,
	}, nil
}

// Engines reports each registered engine with its default model
func (s *Service) Engines() map[string]string {
	return s.registry.DefaultModels()
}
