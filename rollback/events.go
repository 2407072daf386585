package rollback

import "fmt"

// State is the scheduler state.
type State int

const (
	StateRunning State = iota
	StateRollingBack
	StateDesynced
)

var stateNames = map[State]string{
	StateRunning:     "Running",
	StateRollingBack: "RollingBack",
	StateDesynced:    "Desynced",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

type EventKind int

const (
	EventRollback EventKind = iota
	EventDesync
	EventNetworkInterrupted
	EventNetworkResumed
	EventDisconnected
	EventStallStarted
	EventStallEnded
)

var eventNames = map[EventKind]string{
	EventRollback:           "rollback",
	EventDesync:             "desync",
	EventNetworkInterrupted: "network-interrupted",
	EventNetworkResumed:     "network-resumed",
	EventDisconnected:       "disconnected",
	EventStallStarted:       "stall-started",
	EventStallEnded:         "stall-ended",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is something the session wants its owner to know about. Only the
// fields relevant to Kind are set.
type Event struct {
	Kind   EventKind
	Frame  Frame
	Handle int

	// rollback
	From, To Frame

	// desync
	LocalChecksum  uint64
	RemoteChecksum uint64
}

func (e Event) String() string {
	switch e.Kind {
	case EventRollback:
		return fmt.Sprintf("rollback %d -> %d (%d frames)", e.From, e.To, e.To-e.From)
	case EventDesync:
		return fmt.Sprintf("Desync on frame %d. Local checksum: %X, remote checksum: %X", e.Frame, e.LocalChecksum, e.RemoteChecksum)
	case EventNetworkInterrupted, EventNetworkResumed, EventDisconnected:
		return fmt.Sprintf("%s: player %d at frame %d", e.Kind, e.Handle, e.Frame)
	}
	return fmt.Sprintf("%s at frame %d", e.Kind, e.Frame)
}

// Stats are cumulative counters for one session.
type Stats struct {
	Frame            Frame
	ConfirmedFrame   Frame
	Rollbacks        int
	RolledBackFrames int
	Stalls           int
	Conflicts        int
	Desyncs          int
	// FrameAdvantage is how many frames the local simulation runs ahead of
	// the confirmed remote input.
	FrameAdvantage int
}
