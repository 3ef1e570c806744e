package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Engines       EnginesConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration // must outlive the slowest engine timeout
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// EnginesConfig holds the backend inference engine configurations
type EnginesConfig struct {
	Ollama OllamaConfig
	VLLM   VLLMConfig
}

// OllamaConfig holds Ollama engine configuration.
// BaseURL is the API root; the adapter appends /generate.
type OllamaConfig struct {
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
}

// VLLMConfig holds vLLM engine configuration.
// APIURL is the full generation endpoint.
type VLLMConfig struct {
	APIURL       string
	APIKey       string // Optional bearer token
	DefaultModel string
	Timeout      time.Duration
}

// ObservabilityConfig holds monitoring and logging configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string // json or console
	MetricsEnabled bool
}

const (
	DefaultOllamaBaseURL      = "http://localhost:11434/api"
	DefaultVLLMAPIURL         = "http://localhost:8000/generate"
	DefaultOllamaDefaultModel = "llama2"
	DefaultVLLMDefaultModel   = "mistralai/Mistral-7B-Instruct-v0.2"

	// DefaultEngineTimeout leaves room for long-running generations.
	DefaultEngineTimeout = 600 * time.Second
)

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	// Values already present in the environment win over .env entries
	_ = godotenv.Load(".env")

	env := &envReader{}
	cfg := &Config{
		Environment: env.get("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            env.get("SERVER_HOST", "0.0.0.0"),
			Port:            env.port(),
			ReadTimeout:     env.duration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    env.duration("SERVER_WRITE_TIMEOUT", 11*time.Minute),
			ShutdownTimeout: env.duration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Engines: EnginesConfig{
			Ollama: OllamaConfig{
				BaseURL:      strings.TrimRight(env.get("OLLAMA_BASE_URL", DefaultOllamaBaseURL), "/"),
				DefaultModel: env.get("OLLAMA_DEFAULT_MODEL", DefaultOllamaDefaultModel),
				Timeout:      env.duration("OLLAMA_TIMEOUT", DefaultEngineTimeout),
			},
			VLLM: VLLMConfig{
				APIURL:       env.get("VLLM_API_URL", DefaultVLLMAPIURL),
				APIKey:       env.get("VLLM_API_KEY", ""),
				DefaultModel: env.get("VLLM_DEFAULT_MODEL", DefaultVLLMDefaultModel),
				Timeout:      env.duration("VLLM_TIMEOUT", DefaultEngineTimeout),
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:       env.get("LOG_LEVEL", "info"),
			LogFormat:      env.get("LOG_FORMAT", "json"),
			MetricsEnabled: env.boolean("METRICS_ENABLED", true),
		},
	}

	if err := errors.Join(env.errs...); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if err := validateURL("OLLAMA_BASE_URL", c.Engines.Ollama.BaseURL); err != nil {
		return err
	}
	if err := validateURL("VLLM_API_URL", c.Engines.VLLM.APIURL); err != nil {
		return err
	}

	if c.Engines.Ollama.DefaultModel == "" {
		return fmt.Errorf("ollama default model is required")
	}
	if c.Engines.VLLM.DefaultModel == "" {
		return fmt.Errorf("vllm default model is required")
	}

	if c.Engines.Ollama.Timeout <= 0 {
		return fmt.Errorf("ollama timeout must be positive")
	}
	if c.Engines.VLLM.Timeout <= 0 {
		return fmt.Errorf("vllm timeout must be positive")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.WriteTimeout <= c.Engines.Ollama.Timeout || c.Server.WriteTimeout <= c.Engines.VLLM.Timeout {
		return fmt.Errorf("server write timeout %s must exceed the engine timeouts (ollama %s, vllm %s)",
			c.Server.WriteTimeout, c.Engines.Ollama.Timeout, c.Engines.VLLM.Timeout)
	}

	// Observability validation
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}
	if _, err := zapcore.ParseLevel(c.Observability.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %q", c.Observability.LogLevel)
	}
	switch strings.ToLower(c.Observability.LogFormat) {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid log format: %q", c.Observability.LogFormat)
	}

	return nil
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", key, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", key, raw)
	}
	return nil
}

// Helper functions

// envReader reads typed values from the environment and remembers every
// value that could not be parsed
type envReader struct {
	errs []error
}

func (e *envReader) get(key, defaultValue string) string {
	return getEnv(key, defaultValue)
}

func (e *envReader) boolean(key string, defaultValue bool) bool {
	value, err := getEnvAsBool(key, defaultValue)
	if err != nil {
		e.errs = append(e.errs, err)
	}
	return value
}

func (e *envReader) duration(key string, defaultValue time.Duration) time.Duration {
	value, err := getEnvAsDuration(key, defaultValue)
	if err != nil {
		e.errs = append(e.errs, err)
	}
	return value
}

// port returns the server port from PORT or SERVER_PORT (default: 8000)
func (e *envReader) port() int {
	for _, key := range []string{"PORT", "SERVER_PORT"} {
		value := os.Getenv(key)
		if value == "" {
			continue
		}
		p, err := strconv.Atoi(value)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s must be an integer, got %q", key, value))
		}
		return p
	}
	return 8000
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue, fmt.Errorf("%s must be a boolean, got %q", key, valueStr)
	}
	return value, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue, fmt.Errorf("%s must be a duration such as 600s, got %q", key, valueStr)
	}
	return value, nil
}

// getEnvAsList splits a comma-separated value, dropping empty entries
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
