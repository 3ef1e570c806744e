package vllm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/upb/hybrid-llm-gateway/services"
	"github.com/upb/hybrid-llm-gateway/services/providers"
)

const (
	// EngineName is the selector clients use to pick this engine
	EngineName = "vllm"

	// serviceName is how the backend is named in error details
	serviceName = "vLLM"

	// maxResponseBody bounds how much of a response is read
	maxResponseBody = 16 * 1024 * 1024
)

// apiStyle selects the request payload for the configured endpoint
type apiStyle int

const (
	styleNative apiStyle = iota // vLLM api_server /generate
	styleCompletions
	styleChat
)

// Adapter implements providers.Engine for a vLLM server. config.BaseURL is
// the full generation endpoint; its path decides the payload shape.
type Adapter struct {
	config     providers.ProviderConfig
	httpClient *http.Client
	style      apiStyle
}

// NewAdapter creates a new vLLM adapter
func NewAdapter(config providers.ProviderConfig) *Adapter {
	return &Adapter{
		config:     config,
		httpClient: config.NewHTTPClient(),
		style:      detectStyle(config.BaseURL),
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

// Generate performs one non-streaming generation call and flattens the
// backend's reply into plain text.
func (a *Adapter) Generate(ctx context.Context, req *providers.GenerateRequest) (string, error) {
	reqBody, err := json.Marshal(a.buildRequest(req))
	if err != nil {
		return "", unexpected(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", unexpected(err)
	}
	a.config.ApplyHeaders(httpReq)

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", services.NewBackendUnavailableError(serviceName, err.Error(), err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return "", services.NewBackendUnavailableError(serviceName, err.Error(), err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return "", mapHTTPError(httpResp.StatusCode, respBody, req.Model)
	}

	if msg, ok := inBandError(respBody); ok {
		if isModelNotFound(msg) {
			return "", services.NewModelNotFoundError(req.Model, serviceName)
		}
		return "", services.NewBackendUnavailableError(serviceName, msg, nil)
	}

	text, err := extractText(respBody, req.Prompt)
	if err != nil {
		return "", unexpected(err)
	}
	return strings.TrimSpace(text), nil
}

// buildRequest converts the engine-agnostic request to the endpoint's payload
func (a *Adapter) buildRequest(req *providers.GenerateRequest) interface{} {
	switch a.style {
	case styleChat:
		return &ChatRequest{
			Model:       req.Model,
			Messages:    []ChatMessage{{Role: "user", Content: req.Prompt}},
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
			Stream:      false,
		}
	default:
		return &GenerateRequest{
			Model:       req.Model,
			Prompt:      req.Prompt,
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
			Stream:      false,
		}
	}
}

func detectStyle(endpoint string) apiStyle {
	u, err := url.Parse(endpoint)
	if err != nil {
		return styleNative
	}
	path := strings.TrimRight(u.Path, "/")
	switch {
	case strings.HasSuffix(path, "/chat/completions"):
		return styleChat
	case strings.HasSuffix(path, "/completions"):
		return styleCompletions
	default:
		return styleNative
	}
}

func unexpected(err error) error {
	return services.NewBackendUnavailableError(serviceName, fmt.Sprintf("Unexpected error: %v", err), err)
}

// errUnrecognizedShape is returned when no known text field is present
var errUnrecognizedShape = errors.New("unrecognized response shape")

// vLLM-specific request types

// GenerateRequest serves both the native /generate and /v1/completions endpoints
type GenerateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Stream      bool    `json:"stream"`
}

type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
