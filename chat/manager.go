// Package chat implements the session manager behind an interactive chat:
// it owns the transcript and the endpoint selection, forwards the whole
// transcript to an inference agent on every turn, and streams the reply back.
//
// A Manager is built from configuration via New. Functional options replace
// any config-created collaborator, which is how tests inject a mock agent.
//
//	m, err := chat.New(&cfg)
//	reply, err := m.SubmitTurn(ctx, "hello")
//	for fragment, err := range reply.Fragments() { ... }
//
// A Manager serves one conversation from one goroutine. Overlapping turns are
// rejected with ErrTurnInFlight rather than serialized.
package chat

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/tailored-agentic-units/chat/agent"
	"github.com/tailored-agentic-units/chat/core/endpoint"
	"github.com/tailored-agentic-units/chat/core/protocol"
	"github.com/tailored-agentic-units/chat/credential"
	"github.com/tailored-agentic-units/chat/observability"
	"github.com/tailored-agentic-units/chat/prompt"
	"github.com/tailored-agentic-units/chat/session"

	_ "github.com/tailored-agentic-units/chat/agent/gemini"
	_ "github.com/tailored-agentic-units/chat/agent/unify"
)

// Option configures a Manager during New.
type Option func(*Manager)

// WithAgent supplies the inference agent. Credential resolution and backend
// construction are skipped.
func WithAgent(a agent.Agent) Option {
	return func(m *Manager) { m.agent = a }
}

// WithSession overrides the in-memory transcript store.
func WithSession(s session.Session) Option {
	return func(m *Manager) { m.session = s }
}

// WithObserver overrides the config-selected observer. Given more than once,
// events go to every observer in order.
func WithObserver(o observability.Observer) Option {
	return func(m *Manager) { m.observers = append(m.observers, o) }
}

// WithCredentialResolver replaces the config-derived credential strategy.
func WithCredentialResolver(r credential.Resolver) Option {
	return func(m *Manager) { m.resolver = r }
}

// WithInput sets the line source for Run. Defaults to os.Stdin.
func WithInput(r io.Reader) Option {
	return func(m *Manager) { m.input = r }
}

// WithOutput sets where Run writes banners, prompts and replies. Defaults to
// os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(m *Manager) { m.out = w }
}

// WithErrorOutput sets where Run reports per-turn failures. Defaults to
// os.Stderr.
func WithErrorOutput(w io.Writer) Option {
	return func(m *Manager) { m.errOut = w }
}

// Manager owns one conversation.
type Manager struct {
	agent        agent.Agent
	session      session.Session
	observer     observability.Observer
	observers    []observability.Observer
	resolver     credential.Resolver
	systemPrompt string

	input   io.Reader
	out     io.Writer
	errOut  io.Writer
	lines   *bufio.Reader
	console *console

	mu       sync.Mutex
	endpoint endpoint.Selector
	state    State
	inFlight *Reply
	epoch    uint64 // bumped on reset so stale replies never commit
}

// New creates a Manager from configuration. The endpoint comes from
// cfg.Agent and the system prompt from cfg.PromptDir plus cfg.SystemPrompt.
// The API key is resolved from the explicit key, the environment
// and .env files, in that order, unless WithAgent or WithCredentialResolver
// is given. Any failure is returned as a *ConfigurationError.
func New(cfg *Config, opts ...Option) (*Manager, error) {
	sel, err := cfg.Agent.Selector()
	if err != nil {
		return nil, &ConfigurationError{Field: "endpoint", Err: err}
	}

	systemPrompt := cfg.SystemPrompt
	if cfg.PromptDir != "" {
		systemPrompt, err = prompt.Compose(context.Background(), prompt.NewDirSource(cfg.PromptDir), cfg.SystemPrompt)
		if err != nil {
			return nil, &ConfigurationError{Field: "prompt", Err: err}
		}
	}

	m := &Manager{
		endpoint:     sel,
		state:        StateActive,
		systemPrompt: systemPrompt,
		input:        os.Stdin,
		out:          os.Stdout,
		errOut:       os.Stderr,
	}

	for _, opt := range opts {
		opt(m)
	}

	switch len(m.observers) {
	case 0:
		name := cfg.Observer
		if name == "" {
			name = defaultObserver
		}
		obs, err := observability.GetObserver(name)
		if err != nil {
			return nil, &ConfigurationError{Field: "observer", Err: err}
		}
		m.observer = obs
	case 1:
		m.observer = m.observers[0]
	default:
		m.observer = observability.NewMultiObserver(m.observers...)
	}

	if m.session == nil {
		m.session = session.NewMemorySession()
	}

	if m.agent == nil {
		ctx := context.Background()

		resolver := m.resolver
		if resolver == nil {
			resolver = credential.FromConfig(&cfg.Agent.Backend)
		}
		key, err := resolver.Resolve(ctx)
		if err != nil {
			return nil, &ConfigurationError{Field: "credential", Err: err}
		}

		a, err := agent.New(ctx, &cfg.Agent, key)
		if err != nil {
			return nil, &ConfigurationError{Field: "backend", Err: err}
		}
		m.agent = a
	}

	m.lines = bufio.NewReader(m.input)
	m.console = newConsole(m.out, m.errOut)

	return m, nil
}

// ID returns the conversation's session identifier.
func (m *Manager) ID() string {
	return m.session.ID()
}

// Agent returns the inference agent in use.
func (m *Manager) Agent() agent.Agent {
	return m.agent
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Endpoint returns the current endpoint selection.
func (m *Manager) Endpoint() endpoint.Selector {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.endpoint
}

func (m *Manager) Model() string    { return m.Endpoint().Model() }
func (m *Manager) Provider() string { return m.Endpoint().Provider() }

// SetEndpoint switches to a "<model>@<provider>" endpoint for subsequent
// turns. Only the structure is checked; on error the endpoint is unchanged.
func (m *Manager) SetEndpoint(s string) error {
	sel, err := endpoint.Parse(s)
	if err != nil {
		return err
	}
	m.swapEndpoint(sel, "chat.SetEndpoint")
	return nil
}

// SetModel keeps the current provider and switches the model. Fails with
// *endpoint.IncompleteError when no provider is set.
func (m *Manager) SetModel(name string) error {
	m.mu.Lock()
	sel, err := m.endpoint.WithModel(name)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.swapEndpoint(sel, "chat.SetModel")
	return nil
}

// SetProvider keeps the current model and switches the provider. Fails with
// *endpoint.IncompleteError when no model is set.
func (m *Manager) SetProvider(name string) error {
	m.mu.Lock()
	sel, err := m.endpoint.WithProvider(name)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.swapEndpoint(sel, "chat.SetProvider")
	return nil
}

func (m *Manager) swapEndpoint(sel endpoint.Selector, source string) {
	m.mu.Lock()
	prev := m.endpoint
	m.endpoint = sel
	m.mu.Unlock()

	m.emit(context.Background(), EventEndpointChange, observability.LevelVerbose, source, map[string]any{
		"from": prev.String(),
		"to":   sel.String(),
	})
}

// Transcript returns a copy of the conversation so far.
func (m *Manager) Transcript() []protocol.Message {
	return m.session.Messages()
}

// ResetTranscript clears the conversation. Safe to call repeatedly. A reply
// still streaming when the transcript is reset will not be recorded.
func (m *Manager) ResetTranscript() {
	m.mu.Lock()
	m.resetLocked()
	m.mu.Unlock()

	m.emit(context.Background(), EventTranscriptReset, observability.LevelVerbose, "chat.ResetTranscript", nil)
}

func (m *Manager) resetLocked() {
	m.session.Clear()
	m.epoch++
}

// Credits returns the agent's current credit balance.
func (m *Manager) Credits(ctx context.Context) (float64, error) {
	balance, err := m.agent.CreditBalance(ctx)
	if err != nil {
		return 0, err
	}
	m.emit(ctx, EventCredits, observability.LevelVerbose, "chat.Credits", map[string]any{
		"balance": balance,
	})
	return balance, nil
}

func (m *Manager) setState(ctx context.Context, next State) {
	m.mu.Lock()
	prev := m.state
	m.state = next
	if next == StateTerminated {
		m.resetLocked()
	}
	m.mu.Unlock()

	if prev == next {
		return
	}
	m.emit(ctx, EventStateChange, observability.LevelVerbose, "chat.Run", map[string]any{
		"from": prev.String(),
		"to":   next.String(),
	})
}

func (m *Manager) emit(ctx context.Context, typ observability.EventType, level observability.Level, source string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["session"] = m.session.ID()

	m.observer.OnEvent(ctx, observability.Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	})
}

