package services

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of an engine failure
type ErrorKind string

const (
	ErrorKindInvalidEngine      ErrorKind = "invalid_engine"
	ErrorKindBackendUnavailable ErrorKind = "backend_unavailable"
	ErrorKindModelNotFound      ErrorKind = "model_not_found"
)

// EngineError is the single failure type produced by the dispatcher and
// the engine adapters. Only the fields relevant to Kind are populated.
type EngineError struct {
	Kind ErrorKind

	// Engine is the requested engine name for InvalidEngine and the
	// engine display name (e.g. "Ollama") for ModelNotFound.
	Engine string

	// Model is the model name that was sent to the backend
	Model string

	// Service is the backend display name for BackendUnavailable
	Service string

	// Detail is the original failure description for BackendUnavailable
	Detail string

	// Err is the underlying cause, if any
	Err error
}

// Error returns the client-facing detail message
func (e *EngineError) Error() string {
	switch e.Kind {
	case ErrorKindInvalidEngine:
		return fmt.Sprintf("Invalid engine specified: '%s'. Choose 'ollama' or 'vllm'.", e.Engine)
	case ErrorKindBackendUnavailable:
		return fmt.Sprintf("Error interacting with %s service: %s", e.Service, e.Detail)
	case ErrorKindModelNotFound:
		return fmt.Sprintf("Model '%s' not found on %s.", e.Model, e.Engine)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
}

// Unwrap implements errors.Unwrap
func (e *EngineError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is by comparing kinds
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewInvalidEngineError reports an engine name that is not recognized
func NewInvalidEngineError(engine string) *EngineError {
	return &EngineError{Kind: ErrorKindInvalidEngine, Engine: engine}
}

// NewBackendUnavailableError reports a failed interaction with a backend service
func NewBackendUnavailableError(service, detail string, err error) *EngineError {
	return &EngineError{
		Kind:    ErrorKindBackendUnavailable,
		Service: service,
		Detail:  detail,
		Err:     err,
	}
}

// NewModelNotFoundError reports a model the backend does not know about
func NewModelNotFoundError(model, engine string) *EngineError {
	return &EngineError{Kind: ErrorKindModelNotFound, Model: model, Engine: engine}
}

// Sentinels for errors.Is checks
var (
	ErrInvalidEngine      = &EngineError{Kind: ErrorKindInvalidEngine}
	ErrBackendUnavailable = &EngineError{Kind: ErrorKindBackendUnavailable}
	ErrModelNotFound      = &EngineError{Kind: ErrorKindModelNotFound}
)

// IsInvalidEngineError checks if an error is an invalid engine error
func IsInvalidEngineError(err error) bool {
	return GetErrorKind(err) == ErrorKindInvalidEngine
}

// IsBackendUnavailableError checks if an error is a backend unavailable error
func IsBackendUnavailableError(err error) bool {
	return GetErrorKind(err) == ErrorKindBackendUnavailable
}

// IsModelNotFoundError checks if an error is a model not found error
func IsModelNotFoundError(err error) bool {
	return GetErrorKind(err) == ErrorKindModelNotFound
}

// GetErrorKind returns the ErrorKind of an engine error, or empty string otherwise
func GetErrorKind(err error) ErrorKind {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Kind
	}
	return ""
}
