// Package agent defines the inference collaborator the chat manager talks
// to. Backends (agent/unify, agent/gemini) register a Factory under their
// name; New builds the backend selected by configuration.
package agent

import (
	"context"
	"errors"

	"github.com/tailored-agentic-units/chat/core/endpoint"
	"github.com/tailored-agentic-units/chat/core/protocol"
)

// Sentinel errors shared by all backends.
var (
	ErrCreditsUnsupported = errors.New("credit balance not supported by backend")
	ErrUnknownBackend     = errors.New("unknown backend")
	ErrBackendExists      = errors.New("backend already registered")
	ErrEmptyBackendName   = errors.New("backend name is empty")
	ErrMissingKey         = errors.New("api key is required")
)

// Stream is a finite, ordered, non-restartable sequence of response
// fragments. Next advances; once it returns false, Err reports why.
// Close releases the underlying connection and may be called at any time.
type Stream interface {
	Next() bool
	Current() protocol.Chunk
	Err() error
	Close() error
}

// Agent is a stateless inference backend. The endpoint is supplied on every
// call; semantic validation of the model and provider happens remotely and
// surfaces as an error from Generate or from the returned Stream.
type Agent interface {
	// ID returns a unique identifier for this agent instance.
	ID() string
	// Name returns the backend name the agent was registered under.
	Name() string
	// Generate opens a streamed completion for messages on sel.
	Generate(ctx context.Context, sel endpoint.Selector, messages []protocol.Message) (Stream, error)
	// CreditBalance returns the account's remaining credits.
	CreditBalance(ctx context.Context) (float64, error)
}
