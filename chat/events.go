package chat

import "github.com/tailored-agentic-units/chat/observability"

// Manager event types.
const (
	EventTurnStart       observability.EventType = "chat.turn.start"
	EventTurnComplete    observability.EventType = "chat.turn.complete"
	EventTurnAbandoned   observability.EventType = "chat.turn.abandoned"
	EventTurnError       observability.EventType = "chat.turn.error"
	EventEndpointChange  observability.EventType = "chat.endpoint.change"
	EventTranscriptReset observability.EventType = "chat.transcript.reset"
	EventStateChange     observability.EventType = "chat.state.change"
	EventCredits         observability.EventType = "chat.credits"
)
