// Package session stores the conversation transcript for the chat manager.
package session

import (
	"github.com/tailored-agentic-units/chat/core/protocol"
)

// Session holds an ordered, append-only sequence of conversation messages.
// Implementations must be safe for concurrent use.
type Session interface {
	// ID returns the unique session identifier.
	ID() string
	// AddMessage appends a message to the transcript.
	AddMessage(msg protocol.Message)
	// Messages returns a copy of the transcript in insertion order.
	Messages() []protocol.Message
	// Len returns the number of messages in the transcript.
	Len() int
	// Clear empties the transcript. Clearing an empty transcript is a no-op.
	Clear()
}
