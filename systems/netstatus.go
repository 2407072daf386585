package systems

import (
	"slices"

	"github.com/automoto/dagknights/components"
	"github.com/automoto/dagknights/rollback"
	"github.com/automoto/dagknights/systems/factory"
	"github.com/yohamta/donburi/ecs"
)

// StatsSource exposes the counters a session keeps.
type StatsSource interface {
	Stats() rollback.Stats
	State() rollback.State
}

// NewNetStatusSystem returns an ECS system that refreshes the NetStatus
// singleton from the session counters.
func NewNetStatusSystem(source StatsSource) func(*ecs.ECS) {
	return func(e *ecs.ECS) {
		status := GetOrCreateNetStatus(e)
		st := source.Stats()
		status.State = source.State().String()
		status.Frame = int(st.Frame)
		status.ConfirmedFrame = int(st.ConfirmedFrame)
		status.FrameAdvantage = st.FrameAdvantage
		status.Rollbacks = st.Rollbacks
		status.RolledBackFrames = st.RolledBackFrames
		status.Stalls = st.Stalls
		status.Desyncs = st.Desyncs
	}
}

// ApplyNetEvents folds connection events into the NetStatus singleton.
func ApplyNetEvents(e *ecs.ECS, events []rollback.Event) {
	if len(events) == 0 {
		return
	}
	status := GetOrCreateNetStatus(e)
	for _, ev := range events {
		switch ev.Kind {
		case rollback.EventNetworkInterrupted:
			status.Interrupted = true
		case rollback.EventNetworkResumed:
			status.Interrupted = false
		case rollback.EventDisconnected:
			if !slices.Contains(status.Disconnected, ev.Handle) {
				status.Disconnected = append(status.Disconnected, ev.Handle)
			}
		}
	}
}

func GetOrCreateNetStatus(e *ecs.ECS) *components.NetStatusData {
	entry, ok := components.NetStatus.First(e.World)
	if !ok {
		entry = factory.CreateNetStatus(e)
	}
	return components.NetStatus.Get(entry)
}
