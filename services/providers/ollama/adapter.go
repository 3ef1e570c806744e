package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/upb/hybrid-llm-gateway/services"
	"github.com/upb/hybrid-llm-gateway/services/providers"
)

const (
	// EngineName is the selector clients use to pick this engine
	EngineName = "ollama"

	// serviceName is how the backend is named in error details
	serviceName = "Ollama"

	// maxErrorBody bounds how much of a failed response is echoed back
	maxErrorBody = 64 * 1024
)

// Adapter implements providers.Engine for an Ollama server
type Adapter struct {
	config     providers.ProviderConfig
	httpClient *http.Client
}

// NewAdapter creates a new Ollama adapter. config.BaseURL is the API root
// (e.g. http://localhost:11434/api).
func NewAdapter(config providers.ProviderConfig) *Adapter {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &Adapter{
		config:     config,
		httpClient: config.NewHTTPClient(),
	}
}

// Name returns the engine name
func (a *Adapter) Name() string {
	return EngineName
}

// CloseIdleConnections closes keep-alive connections to the backend
func (a *Adapter) CloseIdleConnections() {
	a.httpClient.CloseIdleConnections()
}

// Generate posts the prompt to {base}/generate and concatenates the
// streamed "response" fragments until the backend reports done.
func (a *Adapter) Generate(ctx context.Context, req *providers.GenerateRequest) (string, error) {
	reqBody, err := json.Marshal(a.buildRequest(req))
	if err != nil {
		return "", unexpected(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/generate", bytes.NewReader(reqBody))
	if err != nil {
		return "", unexpected(err)
	}
	a.config.ApplyHeaders(httpReq)

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", services.NewBackendUnavailableError(serviceName, err.Error(), err)
	}
	// Closing early also releases the connection when we stop at "done"
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusNotFound {
		return "", services.NewModelNotFoundError(req.Model, serviceName)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		return "", services.NewBackendUnavailableError(serviceName, string(body), nil)
	}

	var text strings.Builder
	for c, err := range decodeChunks(httpResp.Body) {
		if err != nil {
			if errors.Is(err, errMalformedChunk) {
				return "", unexpected(err)
			}
			return "", services.NewBackendUnavailableError(serviceName, err.Error(), err)
		}

		if c.HasError {
			if strings.Contains(strings.ToLower(c.Error), "model not found") {
				return "", services.NewModelNotFoundError(req.Model, serviceName)
			}
			return "", services.NewBackendUnavailableError(serviceName, c.Error, nil)
		}

		text.WriteString(c.Response)

		if c.Done {
			break
		}
	}

	return strings.TrimSpace(text.String()), nil
}

// buildRequest converts the engine-agnostic request to Ollama's payload
func (a *Adapter) buildRequest(req *providers.GenerateRequest) *GenerateRequest {
	return &GenerateRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		Options: Options{
			NumPredict:  req.MaxTokens,
			Temperature: req.Temperature,
		},
	}
}

func unexpected(err error) error {
	return services.NewBackendUnavailableError(serviceName, fmt.Sprintf("Unexpected error: %v", err), err)
}

// Ollama-specific request types

type GenerateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Options Options `json:"options"`
}

type Options struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
}
