package scenes

import (
	"errors"
	"log"
	"slices"
	"time"

	cfg "github.com/automoto/dagknights/config"
	"github.com/automoto/dagknights/rollback"
	"github.com/automoto/dagknights/shared/netconfig"
	"github.com/automoto/dagknights/shared/sim"
	"github.com/automoto/dagknights/systems"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// InGameScene drives one rollback session per update and mirrors its view
// into a donburi world for presentation.
type InGameScene struct {
	ecs          *ecs.ECS
	sceneChanger SceneChanger
	match        *Match
	persistence  *systems.Persistence
	handles      []int
	inputs       map[int]InputSource
	lastStats    time.Time
	ended        bool
}

func NewInGameScene(sc SceneChanger, match *Match, persistence *systems.Persistence) *InGameScene {
	world := donburi.NewWorld()
	s := &InGameScene{
		ecs:          ecs.NewECS(world),
		sceneChanger: sc,
		match:        match,
		persistence:  persistence,
		handles:      slices.Sorted(slices.Values(match.LocalHandles)),
		inputs:       make(map[int]InputSource, len(match.LocalHandles)),
		lastStats:    time.Now(),
	}
	for _, h := range s.handles {
		var src InputSource
		if match.Inputs != nil {
			src = match.Inputs(h, world)
		}
		if src == nil {
			src = systems.NewScriptedInput()
		}
		s.inputs[h] = src
	}

	s.ecs.AddSystem(systems.NewViewMirror(match.Session, s.handles...))
	s.ecs.AddSystem(systems.NewNetStatusSystem(match.Session))
	return s
}

func (s *InGameScene) Phase() netconfig.GamePhase { return netconfig.PhaseInGame }

// ECS exposes the mirrored world, read-only for callers.
func (s *InGameScene) ECS() *ecs.ECS { return s.ecs }

func (s *InGameScene) Update() error {
	if s.ended {
		return nil
	}
	session := s.match.Session

	for _, h := range s.handles {
		if err := session.AddLocalInput(h, s.inputs[h].Next()); err != nil {
			return err
		}
	}

	err := session.AdvanceFrame()
	events := session.Events()
	s.handleEvents(events)
	systems.ApplyNetEvents(s.ecs, events)
	s.ecs.Update()
	s.logStats()

	switch {
	case err == nil, errors.Is(err, rollback.ErrPredictionThreshold):
	case rollback.IsFatal(err):
		s.end(err)
		return nil
	default:
		return err
	}

	// Predicted frames can be rolled back, so only a confirmed match end counts.
	if v, err := session.ConfirmedView(); err == nil && v.MatchOver {
		s.end(nil)
	}
	return nil
}

func (s *InGameScene) handleEvents(events []rollback.Event) {
	for _, ev := range events {
		if cfg.Debug.LogEvents {
			log.Printf("[scene] %v", ev)
		}
		if ev.Kind == rollback.EventDesync {
			s.saveDesync(ev)
		}
	}
}

func (s *InGameScene) saveDesync(ev rollback.Event) {
	if s.persistence == nil {
		return
	}
	w := s.match.Session.World()
	snapshot, err := w.Encode()
	if err != nil {
		log.Printf("[scene] encode desync snapshot: %v", err)
	}
	local := -1
	if len(s.handles) > 0 {
		local = s.handles[0]
	}
	report := systems.DesyncReport{
		Time:           time.Now(),
		Room:           s.match.Room,
		Handle:         local,
		Frame:          int(ev.Frame),
		LocalChecksum:  ev.LocalChecksum,
		RemoteChecksum: ev.RemoteChecksum,
		Snapshot:       snapshot,
	}
	if err := s.persistence.SaveDesyncReport(report); err != nil {
		log.Printf("[scene] save desync report: %v", err)
	}
}

func (s *InGameScene) logStats() {
	if cfg.Debug.LogStats <= 0 || time.Since(s.lastStats) < cfg.Debug.LogStats {
		return
	}
	s.lastStats = time.Now()
	st := s.match.Session.Stats()
	log.Printf("[scene] frame %d confirmed %d advantage %d rollbacks %d (%d frames) stalls %d desyncs %d",
		st.Frame, st.ConfirmedFrame, st.FrameAdvantage, st.Rollbacks, st.RolledBackFrames, st.Stalls, st.Desyncs)
}

func (s *InGameScene) end(err error) {
	s.ended = true
	session := s.match.Session
	v, verr := session.ConfirmedView()
	if verr != nil {
		log.Printf("[scene] confirmed view: %v", verr)
		v = session.View()
		v.MatchOver = false
	}
	res := Result{
		Room:      s.match.Room,
		Frame:     v.Frame,
		Scores:    v.Scores,
		MatchOver: v.MatchOver,
		Winner:    v.Winner,
		Stats:     session.Stats(),
		Err:       err,
	}
	if !v.MatchOver {
		res.Winner = sim.NoWinner
	}

	if cerr := session.Close(); cerr != nil {
		log.Printf("[scene] close session: %v", cerr)
	}
	for _, c := range s.match.Closers {
		if cerr := c(); cerr != nil {
			log.Printf("[scene] close: %v", cerr)
		}
	}
	s.sceneChanger.ChangeScene(NewGameEndScene(res))
}
