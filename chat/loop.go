package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// LoopOptions controls what Run prints after each reply.
type LoopOptions struct {
	// ShowCost prints the credits consumed by each turn.
	ShowCost bool
	// ShowProvider prints the provider that served each turn.
	ShowProvider bool
	// StopOnError makes Run return the first turn failure instead of
	// reporting it and reading the next line.
	StopOnError bool
}

// Run drives the interactive loop: read a line, stream the reply, repeat.
//
// A fresh run clears the transcript and greets the user. Re-entering Run
// after "pause" keeps the transcript and greets with a welcome back. "quit"
// or end of input terminates the session and clears the transcript; the
// Manager cannot be used afterwards. Cancelling ctx pauses the session and
// returns ctx.Err().
func (m *Manager) Run(ctx context.Context, opts LoopOptions) error {
	state := m.State()
	if state == StateTerminated {
		return ErrTerminated
	}

	resumed := state == StatePaused
	if !resumed {
		m.ResetTranscript()
	}
	m.setState(ctx, StateActive)
	m.console.greet(resumed)

	for {
		if err := ctx.Err(); err != nil {
			m.setState(ctx, StatePaused)
			return err
		}

		m.console.prompt()
		line, err := m.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				m.setState(ctx, StateTerminated)
				return nil
			}
			m.setState(ctx, StatePaused)
			return fmt.Errorf("failed to read input: %w", err)
		}

		switch line {
		case commandQuit:
			m.setState(ctx, StateTerminated)
			return nil
		case commandPause:
			m.setState(ctx, StatePaused)
			return nil
		}

		if err := m.turn(ctx, line, opts); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				m.setState(ctx, StatePaused)
				return ctxErr
			}
			if opts.StopOnError {
				return err
			}
			m.console.failure(err)
		}
	}
}

// turn submits one line and writes the streamed reply and its trailers.
func (m *Manager) turn(ctx context.Context, input string, opts LoopOptions) error {
	var before float64
	metered := false
	if opts.ShowCost {
		balance, err := m.Credits(ctx)
		if err != nil {
			m.console.warn("credit balance unavailable: %v", err)
		} else {
			before, metered = balance, true
		}
	}

	reply, err := m.SubmitTurn(ctx, input)
	if err != nil {
		return err
	}

	streamed := false
	for fragment, err := range reply.Fragments() {
		if err != nil {
			if streamed {
				m.console.endTurn()
			}
			return err
		}
		m.console.fragment(fragment)
		streamed = true
	}

	if metered {
		after, err := m.Credits(ctx)
		if err != nil {
			m.console.warn("credit balance unavailable: %v", err)
		} else {
			m.console.cost(before - after)
		}
	}
	if opts.ShowProvider {
		m.console.provider(reply.Provider())
	}
	m.console.endTurn()

	return nil
}

// readLine returns the next input line without its terminator. A final line
// without a newline is returned before io.EOF.
func (m *Manager) readLine() (string, error) {
	line, err := m.lines.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// WaitForResume blocks a paused session until the user enters a line, so a
// front end can call Run again. End of input terminates the session and
// returns ErrTerminated.
func (m *Manager) WaitForResume(ctx context.Context) error {
	switch m.State() {
	case StateTerminated:
		return ErrTerminated
	case StateActive:
		return nil
	}

	m.console.pausedHint()
	if _, err := m.readLine(); err != nil {
		if errors.Is(err, io.EOF) {
			m.setState(ctx, StateTerminated)
			return ErrTerminated
		}
		return fmt.Errorf("failed to read input: %w", err)
	}
	return ctx.Err()
}
