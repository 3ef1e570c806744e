package vllm

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/upb/hybrid-llm-gateway/services"
)

// textPaths lists where known backends put the generated text, in order:
// native api_server, OpenAI completions, OpenAI chat, TGI-style.
var textPaths = []string{
	"text",
	"choices.0.text",
	"choices.0.message.content",
	"generated_text",
	"0.generated_text",
}

// extractText flattens a successful response body into plain text.
// The native /generate endpoint echoes the prompt ahead of the
// completion, so that prefix is removed.
func extractText(body []byte, prompt string) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: body is not JSON", errUnrecognizedShape)
	}

	doc := gjson.ParseBytes(body)
	for _, path := range textPaths {
		v := doc.Get(path)
		if path == "text" && v.IsArray() {
			v = v.Get("0")
		}
		if v.Type != gjson.String {
			continue
		}
		if path == "text" {
			return strings.TrimPrefix(v.Str, prompt), nil
		}
		return v.Str, nil
	}

	return "", fmt.Errorf("%w: %s", errUnrecognizedShape, truncate(string(body), 200))
}

// inBandError reports an error object carried by a 2xx response
func inBandError(body []byte) (string, bool) {
	if !gjson.ValidBytes(body) {
		return "", false
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return "", false
	}
	if doc.Get("object").String() == "error" {
		return errorMessage(doc, string(body)), true
	}
	if e := doc.Get("error"); e.Exists() && e.Type != gjson.Null {
		return errorMessage(doc, string(body)), true
	}
	return "", false
}

// errorMessage picks the most descriptive message from an error body,
// falling back to the raw body.
func errorMessage(doc gjson.Result, raw string) string {
	for _, path := range []string{"error.message", "message", "detail", "error"} {
		if v := doc.Get(path); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return raw
}

// mapHTTPError classifies a non-2xx response
func mapHTTPError(statusCode int, body []byte, model string) error {
	if statusCode == http.StatusNotFound {
		return services.NewModelNotFoundError(model, serviceName)
	}

	raw := string(body)
	if gjson.ValidBytes(body) && isModelNotFound(errorMessage(gjson.ParseBytes(body), "")) {
		return services.NewModelNotFoundError(model, serviceName)
	}
	if raw == "" {
		raw = fmt.Sprintf("HTTP %d", statusCode)
	}
	return services.NewBackendUnavailableError(serviceName, raw, nil)
}

// isModelNotFound matches the messages vLLM uses for unknown models,
// e.g. "The model `foo` does not exist."
func isModelNotFound(msg string) bool {
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "model not found") {
		return true
	}
	return strings.Contains(lower, "model") &&
		(strings.Contains(lower, "does not exist") || strings.Contains(lower, "not found"))
}

// truncate limits a string to maxLen characters for error output
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
