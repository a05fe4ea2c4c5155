package chat

// State is the lifecycle position of a Manager.
//
//	Active ⇆ Paused    via the pause command and re-entering Run
//	Active → Terminated via quit (transcript cleared, final)
type State int

const (
	StateActive State = iota
	StatePaused
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
