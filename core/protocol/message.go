// Package protocol defines the wire-neutral conversation types shared by the
// session manager, the transcript store, and the inference agents.
package protocol

// Role identifies the sender of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Message is a single turn in a conversation. Messages are values; once a
// message is appended to a transcript it is never modified in place.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewMessage creates a Message with the given role and content.
//
// Example:
//
//	msg := protocol.NewMessage(protocol.RoleUser, "Hello, world!")
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// Chunk is one incremental fragment of a streamed generation. Model carries
// the endpoint the backend reports as having served the request, when known.
type Chunk struct {
	Content string
	Model   string
}
