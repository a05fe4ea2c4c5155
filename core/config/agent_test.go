package config_test

import (
	"errors"
	"testing"

	"github.com/tailored-agentic-units/chat/core/config"
	"github.com/tailored-agentic-units/chat/core/endpoint"
)

func TestDefaultAgentConfig(t *testing.T) {
	cfg := config.DefaultAgentConfig()

	if cfg.Backend.Name != "unify" {
		t.Errorf("got backend %q, want %q", cfg.Backend.Name, "unify")
	}
	if cfg.Backend.BaseURL != "https://api.unify.ai/v0/" {
		t.Errorf("got base URL %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.APIKeyEnv != "UNIFY_KEY" {
		t.Errorf("got api key env %q, want %q", cfg.Backend.APIKeyEnv, "UNIFY_KEY")
	}
	if cfg.Endpoint != "" {
		t.Errorf("got endpoint %q, want empty", cfg.Endpoint)
	}
}

func TestAgentConfig_Merge(t *testing.T) {
	cfg := config.DefaultAgentConfig()
	temp := 0.2
	source := &config.AgentConfig{
		Backend: config.BackendConfig{
			Name:   "gemini",
			APIKey: "secret",
			DotEnv: []string{".env.local"},
		},
		Endpoint:    "gpt-4@openai",
		MaxTokens:   256,
		Temperature: &temp,
	}

	cfg.Merge(source)

	if cfg.Backend.Name != "gemini" {
		t.Errorf("got backend %q, want %q", cfg.Backend.Name, "gemini")
	}
	if cfg.Backend.APIKeyEnv != "UNIFY_KEY" {
		t.Errorf("api key env default lost: got %q", cfg.Backend.APIKeyEnv)
	}
	if cfg.Backend.APIKey != "secret" {
		t.Errorf("got api key %q, want %q", cfg.Backend.APIKey, "secret")
	}
	if len(cfg.Backend.DotEnv) != 1 || cfg.Backend.DotEnv[0] != ".env.local" {
		t.Errorf("got dotenv %v", cfg.Backend.DotEnv)
	}
	if cfg.Endpoint != "gpt-4@openai" {
		t.Errorf("got endpoint %q, want %q", cfg.Endpoint, "gpt-4@openai")
	}
	if cfg.MaxTokens != 256 {
		t.Errorf("got max tokens %d, want 256", cfg.MaxTokens)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.2 {
		t.Errorf("got temperature %v, want 0.2", cfg.Temperature)
	}

	temp = 0.9
	if *cfg.Temperature != 0.2 {
		t.Error("merged temperature aliases the source value")
	}
}

func TestAgentConfig_Merge_ZeroValuesPreserveDefaults(t *testing.T) {
	cfg := config.DefaultAgentConfig()
	cfg.Endpoint = "a@b"

	cfg.Merge(&config.AgentConfig{})

	if cfg.Endpoint != "a@b" {
		t.Errorf("got endpoint %q, want %q", cfg.Endpoint, "a@b")
	}
	if cfg.Backend.Name != "unify" {
		t.Errorf("got backend %q, want %q", cfg.Backend.Name, "unify")
	}
}

func TestAgentConfig_Selector(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.AgentConfig
		want    string
		wantErr error
	}{
		{name: "compound", cfg: config.AgentConfig{Endpoint: "llama-2-13b-chat@lowest-input-cost"}, want: "llama-2-13b-chat@lowest-input-cost"},
		{name: "parts", cfg: config.AgentConfig{Model: "gpt-4", Provider: "openai"}, want: "gpt-4@openai"},
		{name: "endpoint wins", cfg: config.AgentConfig{Endpoint: "a@b", Model: "c", Provider: "d"}, want: "a@b"},
		{name: "model only", cfg: config.AgentConfig{Model: "gpt-4"}, want: "gpt-4@"},
		{name: "malformed", cfg: config.AgentConfig{Endpoint: "gpt-4"}, wantErr: endpoint.ErrMalformed},
		{name: "nothing", cfg: config.AgentConfig{}, wantErr: config.ErrNoEndpoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := tt.cfg.Selector()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Selector() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Selector() failed: %v", err)
			}
			if sel.String() != tt.want {
				t.Errorf("got %q, want %q", sel.String(), tt.want)
			}
		})
	}
}
