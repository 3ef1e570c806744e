package handlers

import (
	"errors"
	"net/http"

	"github.com/upb/hybrid-llm-gateway/services"
	"github.com/upb/hybrid-llm-gateway/utils"
	"go.uber.org/zap"
)

// StatusForKind maps an engine error kind to its HTTP status
func StatusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.ErrorKindInvalidEngine:
		return http.StatusBadRequest
	case services.ErrorKindModelNotFound:
		return http.StatusNotFound
	case services.ErrorKindBackendUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HandleServiceError maps domain errors to HTTP responses. Engine errors
// are reported with their detail; anything else is logged and hidden
// behind a generic 500.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	var engineErr *services.EngineError
	if !errors.As(err, &engineErr) {
		logger.Error("unhandled error type", zap.Error(err))
		if err := utils.WriteInternalServerError(w); err != nil {
			logger.Error("failed to write internal error response", zap.Error(err))
		}
		return
	}

	status := StatusForKind(engineErr.Kind)
	if status == http.StatusInternalServerError {
		logger.Error("unknown engine error kind",
			zap.String("kind", string(engineErr.Kind)),
			zap.Error(err))
		if err := utils.WriteInternalServerError(w); err != nil {
			logger.Error("failed to write internal error response", zap.Error(err))
		}
		return
	}

	logger.Warn("generation request failed",
		zap.String("kind", string(engineErr.Kind)),
		zap.Int("status", status),
		zap.Error(err))

	var writeErr error
	switch status {
	case http.StatusBadRequest:
		writeErr = utils.WriteBadRequest(w, engineErr.Error())
	case http.StatusNotFound:
		writeErr = utils.WriteNotFound(w, engineErr.Error())
	default:
		writeErr = utils.WriteServiceUnavailable(w, engineErr.Error())
	}
	if writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	fields := utils.GetValidationErrors(err)
	if fields == nil {
		fields = []utils.FieldError{{
			Loc:  []interface{}{"body"},
			Msg:  err.Error(),
			Type: "value_error",
		}}
	}

	if err := utils.WriteUnprocessableEntity(w, fields); err != nil {
		logger.Error("failed to write validation error response", zap.Error(err))
	}
}
