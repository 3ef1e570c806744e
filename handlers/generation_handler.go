package handlers

import (
	"context"
	"net/http"

	"github.com/upb/hybrid-llm-gateway/internal/observability"
	"github.com/upb/hybrid-llm-gateway/services/generation"
	"github.com/upb/hybrid-llm-gateway/utils"
	"go.uber.org/zap"
)

// Request defaults applied when a field is omitted
const (
	DefaultMaxTokens   = 150
	DefaultTemperature = 0.7
	DefaultEngine      = "ollama"
)

// GenerateRequest is the body of POST /api/v1/llm/generate. Pointer fields
// distinguish an omitted value from a zero value. Only model and engine
// accept null, which means the same as omitting them.
type GenerateRequest struct {
	Prompt      *string  `json:"prompt" validate:"required,min=1"`
	MaxTokens   *int     `json:"max_tokens,omitempty" validate:"omitempty,gt=0"`
	Temperature *float64 `json:"temperature,omitempty"`
	Model       *string  `json:"model,omitempty" nullable:"true"`
	Engine      *string  `json:"engine,omitempty" nullable:"true"`
}

// GenerateResponse is the unified reply for both engines
type GenerateResponse struct {
	GeneratedText string `json:"generated_text"`
	ModelUsed     string `json:"model_used"`
	EngineUsed    string `json:"engine_used"`
}

// GenerationService defines the interface for generation operations
type GenerationService interface {
	// Generate dispatches the request to the selected engine
	Generate(ctx context.Context, req generation.Request) (*generation.Result, error)
}

// GenerationHandler handles generation HTTP requests
type GenerationHandler struct {
	service GenerationService
	logger  *zap.Logger
}

// NewGenerationHandler creates a new GenerationHandler
func NewGenerationHandler(service GenerationService, logger *zap.Logger) *GenerationHandler {
	return &GenerationHandler{
		service: service,
		logger:  logger,
	}
}

// HandleGenerate handles POST /api/v1/llm/generate
func (h *GenerationHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx, h.logger)

	var req GenerateRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		logger.Debug("failed to decode request body", zap.Error(err))
		HandleValidationError(w, err, logger)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		logger.Debug("request validation failed", zap.Error(err))
		HandleValidationError(w, err, logger)
		return
	}

	result, err := h.service.Generate(ctx, req.toServiceRequest())
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	if err := utils.WriteOK(w, GenerateResponse{
		GeneratedText: result.Text,
		ModelUsed:     result.Model,
		EngineUsed:    result.Engine,
	}); err != nil {
		logger.Error("failed to write response", zap.Error(err))
	}
}

// toServiceRequest applies defaults for omitted fields. An empty model
// counts as omitted.
func (r *GenerateRequest) toServiceRequest() generation.Request {
	req := generation.Request{
		Prompt:      *r.Prompt,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		Engine:      DefaultEngine,
	}
	if r.MaxTokens != nil {
		req.MaxTokens = *r.MaxTokens
	}
	if r.Temperature != nil {
		req.Temperature = *r.Temperature
	}
	if r.Model != nil {
		req.Model = *r.Model
	}
	if r.Engine != nil {
		req.Engine = *r.Engine
	}
	return req
}
