package chat

import (
	"errors"
	"fmt"
)

// Sentinel errors for manager operations.
var (
	ErrTurnInFlight  = errors.New("previous reply is still streaming")
	ErrTerminated    = errors.New("session terminated")
	ErrReplyConsumed = errors.New("reply already consumed")
)

// errAbandoned marks a reply the caller stopped reading before the end.
var errAbandoned = errors.New("reply abandoned")

// ConfigurationError reports a failure to build a Manager. No Manager is
// returned alongside it.
type ConfigurationError struct {
	Field string // "endpoint", "prompt", "observer", "credential" or "backend"
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// GenerationError reports a collaborator failure during a turn. The user's
// message stays in the transcript; no assistant message is recorded.
type GenerationError struct {
	Endpoint string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed on %s: %v", e.Endpoint, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
