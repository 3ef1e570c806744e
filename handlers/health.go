package handlers

import (
	"net/http"

	"github.com/upb/hybrid-llm-gateway/app"
	"github.com/upb/hybrid-llm-gateway/utils"
)

// WelcomeMessage is returned by the root endpoint
const WelcomeMessage = "Welcome! Use /api/v1/llm/generate to start."

// StatusResponse describes the running gateway
type StatusResponse struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Environment string            `json:"environment"`
	Engines     map[string]string `json:"engines"`
}

// Root returns the welcome message
func Root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteOK(w, map[string]string{"message": WelcomeMessage})
	}
}

// HealthCheck returns a simple health check handler
func HealthCheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteOK(w, map[string]string{"status": "ok"})
	}
}

// StatusHandler returns application status information, including each
// engine's default model
func StatusHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteOK(w, StatusResponse{
			Name:        app.ServiceName,
			Version:     app.Version,
			Environment: deps.Config.Environment,
			Engines:     deps.Registry.DefaultModels(),
		})
	}
}
