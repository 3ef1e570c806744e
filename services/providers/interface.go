package providers

import (
	"context"
	"net/http"
	"time"
)

// Engine represents a backend text-generation service
type Engine interface {
	// Name returns the engine selector clients use (e.g., "ollama", "vllm")
	Name() string

	// Generate sends the request to the backend and returns the generated
	// text. Failures are always *services.EngineError values.
	Generate(ctx context.Context, req *GenerateRequest) (string, error)
}

// GenerateRequest is the engine-agnostic generation request. Model is
// already resolved by the caller and is sent to the backend verbatim.
type GenerateRequest struct {
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// ProviderConfig holds common configuration for engine adapters
type ProviderConfig struct {
	// BaseURL is the backend endpoint (root or full URL, adapter specific)
	BaseURL string

	// APIKey is sent as a bearer token when set
	APIKey string

	// Timeout bounds a whole backend call, including reading the body
	Timeout time.Duration

	// HTTPClient overrides the client built from Timeout (tests)
	HTTPClient *http.Client
}

// DefaultTimeout is used when ProviderConfig.Timeout is zero
const DefaultTimeout = 600 * time.Second

// NewHTTPClient returns the configured client or one bounded by Timeout
func (c ProviderConfig) NewHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// ApplyHeaders sets the JSON content type and bearer auth on req
func (c ProviderConfig) ApplyHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
}
