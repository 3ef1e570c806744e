package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the error body for every non-validation failure
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ValidationErrorResponse is the 422 body listing each offending field
type ValidationErrorResponse struct {
	Detail []FieldError `json:"detail"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteOK writes a 200 OK response with data as the body
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteDetail writes {"detail": detail} with the given status code
func WriteDetail(w http.ResponseWriter, status int, detail string) error {
	return WriteJSON(w, status, ErrorResponse{Detail: detail})
}

// WriteBadRequest writes a 400 Bad Request response
func WriteBadRequest(w http.ResponseWriter, detail string) error {
	return WriteDetail(w, http.StatusBadRequest, detail)
}

// WriteNotFound writes a 404 Not Found response
func WriteNotFound(w http.ResponseWriter, detail string) error {
	if detail == "" {
		detail = "Not Found"
	}
	return WriteDetail(w, http.StatusNotFound, detail)
}

// WriteMethodNotAllowed writes a 405 Method Not Allowed response
func WriteMethodNotAllowed(w http.ResponseWriter) error {
	return WriteDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}

// WriteUnprocessableEntity writes a 422 response listing field errors
func WriteUnprocessableEntity(w http.ResponseWriter, errs []FieldError) error {
	return WriteJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{Detail: errs})
}

// WriteServiceUnavailable writes a 503 Service Unavailable response
func WriteServiceUnavailable(w http.ResponseWriter, detail string) error {
	return WriteDetail(w, http.StatusServiceUnavailable, detail)
}

// WriteInternalServerError writes a 500 response that reveals nothing about the cause
func WriteInternalServerError(w http.ResponseWriter) error {
	return WriteDetail(w, http.StatusInternalServerError, "Internal Server Error")
}
