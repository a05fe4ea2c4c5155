package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/chat/core/config"
)

const defaultObserver = "slog"

// Config holds initialization parameters for a Manager and its interactive
// loop.
type Config struct {
	Agent        config.AgentConfig `json:"agent" yaml:"agent"`
	SystemPrompt string             `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
	PromptDir    string             `json:"prompt_dir,omitempty" yaml:"prompt_dir,omitempty"` // fragments placed before SystemPrompt
	Observer     string             `json:"observer,omitempty" yaml:"observer,omitempty"`
	ShowCost     bool               `json:"show_cost,omitempty" yaml:"show_cost,omitempty"`
	ShowProvider bool               `json:"show_provider,omitempty" yaml:"show_provider,omitempty"`
}

// DefaultConfig returns a Config targeting the default backend with slog
// observability and no endpoint.
func DefaultConfig() Config {
	return Config{
		Agent:    config.DefaultAgentConfig(),
		Observer: defaultObserver,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	c.Agent.Merge(&source.Agent)
	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}
	if source.PromptDir != "" {
		c.PromptDir = source.PromptDir
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
	if source.ShowCost {
		c.ShowCost = true
	}
	if source.ShowProvider {
		c.ShowProvider = true
	}
}

// LoopOptions returns the loop options carried by the config.
func (c *Config) LoopOptions() LoopOptions {
	return LoopOptions{ShowCost: c.ShowCost, ShowProvider: c.ShowProvider}
}

// LoadConfig reads a JSON or YAML (.yaml, .yml) config file, merges it with
// defaults, and returns the result.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
