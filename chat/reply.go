package chat

import (
	"context"
	"errors"
	"iter"
	"strings"
	"time"

	"github.com/tailored-agentic-units/chat/agent"
	"github.com/tailored-agentic-units/chat/core/endpoint"
	"github.com/tailored-agentic-units/chat/core/protocol"
	"github.com/tailored-agentic-units/chat/core/tokens"
	"github.com/tailored-agentic-units/chat/observability"
)

// SubmitTurn appends input to the transcript as a user message and opens a
// streamed reply over the whole transcript. The assistant message is recorded
// only once the returned Reply has been drained without error.
//
// An incomplete endpoint fails with *endpoint.IncompleteError before the
// transcript is touched. A failure to open the stream returns a
// *GenerationError; the user message stays recorded.
func (m *Manager) SubmitTurn(ctx context.Context, input string) (*Reply, error) {
	m.mu.Lock()
	switch {
	case m.state == StateTerminated:
		m.mu.Unlock()
		return nil, ErrTerminated
	case m.inFlight != nil:
		m.mu.Unlock()
		return nil, ErrTurnInFlight
	}

	sel := m.endpoint
	if err := sel.Validate(); err != nil {
		m.mu.Unlock()
		return nil, err
	}

	m.session.AddMessage(protocol.NewMessage(protocol.RoleUser, input))
	messages := m.outgoing()

	r := &Reply{
		ctx:      ctx,
		manager:  m,
		endpoint: sel,
		epoch:    m.epoch,
		started:  time.Now(),
	}
	m.inFlight = r
	m.mu.Unlock()

	m.emit(ctx, EventTurnStart, observability.LevelInfo, "chat.SubmitTurn", map[string]any{
		"endpoint":        sel.String(),
		"messages":        len(messages),
		"prompt_tokens":   tokens.CountMessages(messages),
		"input_len_bytes": len(input),
	})

	stream, err := m.agent.Generate(ctx, sel, messages)
	if err != nil {
		gerr := &GenerationError{Endpoint: sel.String(), Err: err}
		r.finish(gerr)
		return nil, gerr
	}
	r.stream = stream

	return r, nil
}

// outgoing builds the request messages. The system prompt is sent with every
// request but never stored in the transcript. Callers hold m.mu.
func (m *Manager) outgoing() []protocol.Message {
	transcript := m.session.Messages()
	if m.systemPrompt == "" {
		return transcript
	}
	messages := make([]protocol.Message, 0, len(transcript)+1)
	messages = append(messages, protocol.NewMessage(protocol.RoleSystem, m.systemPrompt))
	return append(messages, transcript...)
}

// complete releases the in-flight slot held by r and records the assistant
// message when cause is nil and no reset happened since r was created.
func (m *Manager) complete(r *Reply, cause error) {
	m.mu.Lock()
	if m.inFlight == r {
		m.inFlight = nil
	}
	stale := m.epoch != r.epoch
	committed := cause == nil && !stale
	if committed {
		m.session.AddMessage(protocol.NewMessage(protocol.RoleAssistant, r.text.String()))
	}
	m.mu.Unlock()

	data := map[string]any{
		"endpoint":    r.endpoint.String(),
		"provider":    r.Provider(),
		"fragments":   r.fragments,
		"duration_ms": time.Since(r.started).Milliseconds(),
	}

	switch {
	case committed:
		data["completion_tokens"] = tokens.Count(r.text.String())
		m.emit(r.ctx, EventTurnComplete, observability.LevelInfo, "chat.Reply", data)
	case cause == nil, errors.Is(cause, errAbandoned), errors.Is(cause, context.Canceled):
		data["stale"] = stale
		m.emit(r.ctx, EventTurnAbandoned, observability.LevelWarning, "chat.Reply", data)
	default:
		data["error"] = cause.Error()
		m.emit(r.ctx, EventTurnError, observability.LevelError, "chat.Reply", data)
	}
}

// Reply is the streamed answer to one submitted turn.
type Reply struct {
	ctx      context.Context
	manager  *Manager
	stream   agent.Stream
	endpoint endpoint.Selector
	epoch    uint64
	started  time.Time

	text      strings.Builder
	served    string
	fragments int
	consumed  bool
	done      bool
	err       error
}

// Endpoint returns the endpoint the turn was requested from.
func (r *Reply) Endpoint() endpoint.Selector {
	return r.endpoint
}

// Provider returns the provider that served the reply. Routing meta-providers
// such as "lowest-input-cost" resolve to a concrete provider once the first
// fragment arrives; before that the requested provider is reported.
func (r *Reply) Provider() string {
	if r.served != "" {
		return r.served
	}
	return r.endpoint.Provider()
}

// Fragments yields the reply text fragment by fragment. The sequence can be
// ranged over once. Stopping early, context cancellation and stream errors
// abandon the reply; a stream error is yielded as a *GenerationError.
// The assistant message is recorded when the range completes normally.
func (r *Reply) Fragments() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if r.consumed {
			yield("", ErrReplyConsumed)
			return
		}
		r.consumed = true

		for {
			if err := r.ctx.Err(); err != nil {
				r.finish(err)
				yield("", err)
				return
			}
			if !r.stream.Next() {
				break
			}

			chunk := r.stream.Current()
			r.observe(chunk)
			if chunk.Content == "" {
				continue
			}

			r.text.WriteString(chunk.Content)
			r.fragments++
			if !yield(chunk.Content, nil) {
				r.finish(errAbandoned)
				return
			}
		}

		if err := r.stream.Err(); err != nil {
			gerr := &GenerationError{Endpoint: r.endpoint.String(), Err: err}
			r.finish(gerr)
			yield("", gerr)
			return
		}

		r.finish(nil)
	}
}

// Text drains the reply and returns the full text.
func (r *Reply) Text() (string, error) {
	for _, err := range r.Fragments() {
		if err != nil {
			return "", err
		}
	}
	return r.text.String(), nil
}

// Close abandons the reply if it has not been fully read. It is safe to call
// after the reply completed.
func (r *Reply) Close() error {
	r.consumed = true
	r.finish(errAbandoned)
	return r.Err()
}

// Err returns the error that ended the reply, if any.
func (r *Reply) Err() error {
	if errors.Is(r.err, errAbandoned) {
		return nil
	}
	return r.err
}

func (r *Reply) observe(chunk protocol.Chunk) {
	if r.served != "" || chunk.Model == "" {
		return
	}
	if sel, err := endpoint.Parse(chunk.Model); err == nil {
		r.served = sel.Provider()
	}
}

func (r *Reply) finish(cause error) {
	if r.done {
		return
	}
	r.done = true
	r.err = cause

	var closeErr error
	if r.stream != nil {
		closeErr = r.stream.Close()
	}
	if cause == nil && closeErr != nil {
		r.manager.emit(r.ctx, EventTurnError, observability.LevelWarning, "chat.Reply", map[string]any{
			"error": closeErr.Error(),
		})
	}

	r.manager.complete(r, cause)
}
