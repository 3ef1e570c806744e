package providers

import (
	"errors"
	"reflect"
	"testing"
)

func TestRegistry_Register(t *testing.T) {
	tests := []struct {
		name         string
		engine       Engine
		defaultModel string
		wantErr      bool
	}{
		{"valid engine", NewMockEngine("ollama", ""), "llama2", false},
		{"nil engine", nil, "llama2", true},
		{"empty name", NewMockEngine("", ""), "llama2", true},
		{"empty default model", NewMockEngine("vllm", ""), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry()
			err := registry.Register(tt.engine, tt.defaultModel)
			if (err != nil) != tt.wantErr {
				t.Errorf("Register() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(NewMockEngine("ollama", ""), "llama2"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	err := registry.Register(NewMockEngine("ollama", ""), "tinyllama")
	if !errors.Is(err, ErrEngineAlreadyRegistered) {
		t.Errorf("expected ErrEngineAlreadyRegistered, got %v", err)
	}

	binding, _ := registry.Lookup("ollama")
	if binding.DefaultModel != "llama2" {
		t.Errorf("duplicate registration replaced default model: %q", binding.DefaultModel)
	}
}

func TestRegistry_Lookup(t *testing.T) {
	registry := NewRegistry()
	ollama := NewMockEngine("ollama", "")
	_ = registry.Register(ollama, "llama2")

	binding, err := registry.Lookup("ollama")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if binding.Engine != Engine(ollama) || binding.DefaultModel != "llama2" {
		t.Errorf("unexpected binding %+v", binding)
	}

	for _, name := range []string{"Ollama", "OLLAMA", " ollama", "vllm", ""} {
		if _, err := registry.Lookup(name); !errors.Is(err, ErrEngineNotFound) {
			t.Errorf("Lookup(%q) error = %v, want ErrEngineNotFound", name, err)
		}
	}
}

func TestRegistry_NamesAndDefaults(t *testing.T) {
	registry := NewRegistry()
	_ = registry.Register(NewMockEngine("vllm", ""), "mistralai/Mistral-7B-Instruct-v0.2")
	_ = registry.Register(NewMockEngine("ollama", ""), "llama2")

	if got := registry.Names(); !reflect.DeepEqual(got, []string{"ollama", "vllm"}) {
		t.Errorf("Names() = %v", got)
	}
	if registry.Count() != 2 {
		t.Errorf("Count() = %d, want 2", registry.Count())
	}

	want := map[string]string{
		"ollama": "llama2",
		"vllm":   "mistralai/Mistral-7B-Instruct-v0.2",
	}
	if got := registry.DefaultModels(); !reflect.DeepEqual(got, want) {
		t.Errorf("DefaultModels() = %v, want %v", got, want)
	}
}

type closingEngine struct {
	*MockEngine
	closed int
}

func (c *closingEngine) CloseIdleConnections() {
	c.closed++
}

func TestRegistry_CloseIdleConnections(t *testing.T) {
	registry := NewRegistry()
	closer := &closingEngine{MockEngine: NewMockEngine("ollama", "")}
	_ = registry.Register(closer, "llama2")
	_ = registry.Register(NewMockEngine("vllm", ""), "opt")

	registry.CloseIdleConnections()

	if closer.closed != 1 {
		t.Errorf("closed = %d, want 1", closer.closed)
	}
}
