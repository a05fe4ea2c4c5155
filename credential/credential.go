// Package credential resolves the API key used to authenticate against the
// inference backend. Each strategy is a Resolver; Chain tries them in order.
package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/tailored-agentic-units/chat/core/config"
)

// ErrNotFound is returned when a strategy has no credential to offer.
// Chain moves on to the next strategy only for this error.
var ErrNotFound = errors.New("credential not found")

// Resolver produces an API key.
type Resolver interface {
	Resolve(ctx context.Context) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context) (string, error) {
	return f(ctx)
}

// Static resolves to a fixed key. An empty Static resolves to ErrNotFound.
type Static string

func (s Static) Resolve(_ context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("%w: no explicit key", ErrNotFound)
	}
	return string(s), nil
}

// Chain tries each resolver in order and returns the first key found.
// Errors other than ErrNotFound stop the chain.
type Chain []Resolver

func (c Chain) Resolve(ctx context.Context) (string, error) {
	var misses []error
	for _, r := range c {
		if r == nil {
			continue
		}
		key, err := r.Resolve(ctx)
		if err == nil {
			return key, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
		misses = append(misses, err)
	}
	if len(misses) == 0 {
		return "", ErrNotFound
	}
	return "", errors.Join(misses...)
}

// FromConfig builds the default strategy for a backend: the explicit key,
// then the environment variable, then any configured .env files.
func FromConfig(cfg *config.BackendConfig) Resolver {
	chain := Chain{Static(cfg.APIKey)}
	if cfg.APIKeyEnv != "" {
		chain = append(chain, NewEnv(cfg.APIKeyEnv, cfg.DotEnv...))
	}
	return chain
}
