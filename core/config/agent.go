// Package config holds the agent configuration sections shared by the chat
// manager and the inference backends. Sections follow the
// DefaultX/Merge convention: defaults first, then non-zero overrides.
package config

import (
	"errors"
	"fmt"

	"github.com/tailored-agentic-units/chat/core/endpoint"
)

const (
	DefaultBackend   = "unify"
	DefaultBaseURL   = "https://api.unify.ai/v0/"
	DefaultAPIKeyEnv = "UNIFY_KEY"
)

// ErrNoEndpoint is returned by AgentConfig.Selector when neither a compound
// endpoint nor a model is configured.
var ErrNoEndpoint = errors.New("no endpoint configured")

// BackendConfig selects and authenticates the inference backend.
type BackendConfig struct {
	Name      string   `json:"name,omitempty" yaml:"name,omitempty"`
	BaseURL   string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey    string   `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	APIKeyEnv string   `json:"api_key_env,omitempty" yaml:"api_key_env,omitempty"`
	DotEnv    []string `json:"dotenv,omitempty" yaml:"dotenv,omitempty"` // .env files consulted after the environment.
}

// DefaultBackendConfig targets the Unify router and reads the key from
// UNIFY_KEY.
func DefaultBackendConfig() BackendConfig {
	return BackendConfig{
		Name:      DefaultBackend,
		BaseURL:   DefaultBaseURL,
		APIKeyEnv: DefaultAPIKeyEnv,
	}
}

// Merge applies non-zero values from source into c.
func (c *BackendConfig) Merge(source *BackendConfig) {
	if source.Name != "" {
		c.Name = source.Name
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if source.APIKeyEnv != "" {
		c.APIKeyEnv = source.APIKeyEnv
	}
	if len(source.DotEnv) > 0 {
		c.DotEnv = source.DotEnv
	}
}

// AgentConfig describes which endpoint to talk to and how. Endpoint takes
// precedence over Model/Provider when both are set.
type AgentConfig struct {
	Backend     BackendConfig `json:"backend" yaml:"backend"`
	Endpoint    string        `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Model       string        `json:"model,omitempty" yaml:"model,omitempty"`
	Provider    string        `json:"provider,omitempty" yaml:"provider,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty" yaml:"temperature,omitempty"`
}

// DefaultAgentConfig returns an AgentConfig with the default backend and no
// endpoint.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Backend: DefaultBackendConfig(),
	}
}

// Merge applies non-zero values from source into c.
func (c *AgentConfig) Merge(source *AgentConfig) {
	c.Backend.Merge(&source.Backend)

	if source.Endpoint != "" {
		c.Endpoint = source.Endpoint
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.Provider != "" {
		c.Provider = source.Provider
	}
	if source.MaxTokens > 0 {
		c.MaxTokens = source.MaxTokens
	}
	if source.Temperature != nil {
		t := *source.Temperature
		c.Temperature = &t
	}
}

// Selector resolves the configured endpoint. A compound Endpoint must parse;
// otherwise Model and Provider are taken as-is and the result may be
// incomplete.
func (c *AgentConfig) Selector() (endpoint.Selector, error) {
	if c.Endpoint != "" {
		sel, err := endpoint.Parse(c.Endpoint)
		if err != nil {
			return endpoint.Selector{}, fmt.Errorf("invalid endpoint: %w", err)
		}
		return sel, nil
	}
	if c.Model == "" && c.Provider == "" {
		return endpoint.Selector{}, ErrNoEndpoint
	}
	return endpoint.New(c.Model, c.Provider), nil
}
