package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tailored-agentic-units/chat/core/config"
)

// Factory builds an Agent from configuration and a resolved API key.
type Factory func(ctx context.Context, cfg *config.AgentConfig, apiKey string) (Agent, error)

var (
	factories = make(map[string]Factory)
	mu        sync.RWMutex
)

// Register adds a backend factory under name. Backends call this from init.
func Register(name string, factory Factory) error {
	if name == "" {
		return ErrEmptyBackendName
	}

	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[name]; exists {
		return fmt.Errorf("%w: %s", ErrBackendExists, name)
	}

	factories[name] = factory
	return nil
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the agent for cfg.Backend.Name. An empty name selects
// config.DefaultBackend.
func New(ctx context.Context, cfg *config.AgentConfig, apiKey string) (Agent, error) {
	name := cfg.Backend.Name
	if name == "" {
		name = config.DefaultBackend
	}

	mu.RLock()
	factory, exists := factories[name]
	mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}

	a, err := factory(ctx, cfg, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s agent: %w", name, err)
	}
	return a, nil
}
