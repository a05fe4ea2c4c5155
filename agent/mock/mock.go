// Package mock provides a scripted agent.Agent for tests.
package mock

import (
	"context"
	"slices"
	"sync"

	"github.com/tailored-agentic-units/chat/agent"
	"github.com/tailored-agentic-units/chat/core/endpoint"
	"github.com/tailored-agentic-units/chat/core/protocol"
)

// Reply scripts one Generate call. When Err is set, the stream delivers
// FailAfter fragments and then fails with Err. OpenErr makes Generate itself
// fail.
type Reply struct {
	Fragments []string
	Model     string
	FailAfter int
	Err       error
	OpenErr   error
}

// Call records the arguments of one Generate invocation.
type Call struct {
	Endpoint endpoint.Selector
	Messages []protocol.Message
}

// Option configures a MockAgent.
type Option func(*MockAgent)

func WithID(id string) Option     { return func(m *MockAgent) { m.id = id } }
func WithName(name string) Option { return func(m *MockAgent) { m.name = name } }

// WithReplies queues scripted replies, consumed one per Generate call. Once
// the queue is empty, Generate echoes the last user message.
func WithReplies(replies ...Reply) Option {
	return func(m *MockAgent) { m.replies = append(m.replies, replies...) }
}

// WithBalances scripts successive CreditBalance results. The last value
// repeats once the list is exhausted.
func WithBalances(balances ...float64) Option {
	return func(m *MockAgent) { m.balances = append(m.balances, balances...) }
}

// WithBalanceError makes CreditBalance fail.
func WithBalanceError(err error) Option {
	return func(m *MockAgent) { m.balanceErr = err }
}

// MockAgent implements agent.Agent with scripted behavior.
type MockAgent struct {
	id         string
	name       string
	replies    []Reply
	balances   []float64
	balanceErr error

	mu           sync.Mutex
	calls        []Call
	streams      []*Stream
	balanceCalls int
}

// NewMockAgent creates a MockAgent.
func NewMockAgent(opts ...Option) *MockAgent {
	m := &MockAgent{id: "mock-agent", name: "mock"}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ agent.Agent = (*MockAgent)(nil)

func (m *MockAgent) ID() string   { return m.id }
func (m *MockAgent) Name() string { return m.name }

func (m *MockAgent) Generate(ctx context.Context, sel endpoint.Selector, messages []protocol.Message) (agent.Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Endpoint: sel, Messages: slices.Clone(messages)})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var reply Reply
	if len(m.replies) > 0 {
		reply = m.replies[0]
		m.replies = m.replies[1:]
	} else {
		reply = echo(messages)
	}

	if reply.OpenErr != nil {
		return nil, reply.OpenErr
	}

	s := &Stream{
		fragments: slices.Clone(reply.Fragments),
		model:     reply.Model,
		failAfter: reply.FailAfter,
		err:       reply.Err,
	}
	m.streams = append(m.streams, s)
	return s, nil
}

func (m *MockAgent) CreditBalance(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.balanceErr != nil {
		return 0, m.balanceErr
	}
	if len(m.balances) == 0 {
		return 0, nil
	}

	i := min(m.balanceCalls, len(m.balances)-1)
	m.balanceCalls++
	return m.balances[i], nil
}

// Calls returns a copy of the recorded Generate invocations.
func (m *MockAgent) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// Streams returns the streams handed out so far.
func (m *MockAgent) Streams() []*Stream {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.streams)
}

func echo(messages []protocol.Message) Reply {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == protocol.RoleUser {
			return Reply{Fragments: []string{messages[i].Content}}
		}
	}
	return Reply{}
}

// Stream is the agent.Stream returned by MockAgent.
type Stream struct {
	fragments []string
	model     string
	failAfter int
	err       error

	idx    int
	cur    protocol.Chunk
	failed error
	closed bool
}

func (s *Stream) Next() bool {
	if s.closed || s.failed != nil {
		return false
	}
	if s.err != nil && s.idx >= s.failAfter {
		s.failed = s.err
		return false
	}
	if s.idx >= len(s.fragments) {
		return false
	}
	s.cur = protocol.Chunk{Content: s.fragments[s.idx], Model: s.model}
	s.idx++
	return true
}

func (s *Stream) Current() protocol.Chunk { return s.cur }
func (s *Stream) Err() error              { return s.failed }

func (s *Stream) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *Stream) Closed() bool { return s.closed }

// Delivered returns the number of fragments handed out.
func (s *Stream) Delivered() int { return s.idx }
