package rollback

import (
	"fmt"
	"log"

	"github.com/automoto/dagknights/shared/netconfig"
	"github.com/automoto/dagknights/shared/sim"
)

// SyncTestSession runs every player locally and, each tick, rolls back
// CheckDistance frames and resimulates them. Any checksum that differs from
// the first simulation exposes non-determinism in the step function.
type SyncTestSession struct {
	cfg       Config
	log       *log.Logger
	world     *sim.World
	snapshots *SnapshotStore
	inputs    [inputQueueSize][]uint8
	fatal     error
	checked   int
}

func NewSyncTestSession(cfg Config, world *sim.World) (*SyncTestSession, error) {
	cfg.LocalHandles = nil
	for h := 0; h < cfg.NumPlayers; h++ {
		cfg.LocalHandles = append(cfg.LocalHandles, h)
	}
	cfg, err := cfg.normalized()
	if err != nil {
		return nil, err
	}
	if len(world.Players) != cfg.NumPlayers {
		return nil, fmt.Errorf("%w: world has %d players", ErrInvalidConfig, len(world.Players))
	}
	w := world.Clone()
	return &SyncTestSession{
		cfg:       cfg,
		log:       cfg.Logger,
		world:     &w,
		snapshots: NewSnapshotStore(cfg.SnapshotCapacity),
	}, nil
}

// AdvanceFrame steps one frame with one input per player, then verifies
// the last CheckDistance frames by resimulation.
func (s *SyncTestSession) AdvanceFrame(inputs []uint8) error {
	if s.fatal != nil {
		return s.fatal
	}
	if len(inputs) != s.cfg.NumPlayers {
		return fmt.Errorf("%w: got %d inputs for %d players", ErrInvalidHandle, len(inputs), s.cfg.NumPlayers)
	}

	frame := Frame(s.world.Frame)
	recorded := make([]uint8, len(inputs))
	for i, bits := range inputs {
		recorded[i] = bits & netconfig.InputKnownMask
	}
	s.inputs[index(frame)] = recorded

	if err := s.step(frame); err != nil {
		return s.fail(frame, err)
	}

	if d := Frame(s.cfg.CheckDistance); d > 0 && s.world.Frame >= uint64(d) {
		if err := s.verify(Frame(s.world.Frame) - d); err != nil {
			return s.fail(frame, err)
		}
	}
	return nil
}

func (s *SyncTestSession) step(frame Frame) error {
	if err := s.snapshots.Save(s.world); err != nil {
		return err
	}
	s.world.Advance(s.inputs[index(frame)])
	if err := s.world.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrNonFiniteState, err)
	}
	return nil
}

// verify rolls back to from and resimulates to the current frame, checking
// each replayed frame against the checksum recorded the first time.
func (s *SyncTestSession) verify(from Frame) error {
	current := Frame(s.world.Frame)
	want := sim.Checksum(s.world)

	w, err := s.snapshots.Load(from)
	if err != nil {
		return err
	}
	for f := from; f < current; f++ {
		recorded, ok := s.snapshots.Checksum(f)
		if !ok {
			return fmt.Errorf("%w: frame %d", ErrMissingSnapshot, f)
		}
		if got := sim.Checksum(&w); got != recorded {
			return fmt.Errorf("%w: frame %d: %X != %X", ErrMismatchedChecksum, f, got, recorded)
		}
		w.Advance(s.inputs[index(f)])
	}
	if got := sim.Checksum(&w); got != want {
		return fmt.Errorf("%w: frame %d: %X != %X", ErrMismatchedChecksum, current, got, want)
	}
	s.world = &w
	s.checked += int(current - from)
	return nil
}

func (s *SyncTestSession) fail(frame Frame, err error) error {
	s.fatal = &FatalError{Frame: frame, Err: err}
	s.log.Printf("[synctest] %v", s.fatal)
	return s.fatal
}

func (s *SyncTestSession) Frame() Frame { return Frame(s.world.Frame) }

// CheckedFrames counts resimulated frames that matched.
func (s *SyncTestSession) CheckedFrames() int { return s.checked }

func (s *SyncTestSession) Checksum() uint64 { return sim.Checksum(s.world) }

func (s *SyncTestSession) View() sim.FrameView { return s.world.View() }

func (s *SyncTestSession) Err() error { return s.fatal }
