package rollback

import (
	"fmt"

	"github.com/automoto/dagknights/shared/sim"
)

// Frame numbers count simulated steps from the start of the match.
type Frame int

// NullFrame marks an empty slot or an unknown frame.
const NullFrame Frame = -1

type snapshot struct {
	frame    Frame
	data     []byte
	checksum uint64
}

// SnapshotStore is a fixed ring of encoded worlds keyed by frame mod
// capacity. Saving a frame overwrites whatever was stored capacity frames
// earlier.
type SnapshotStore struct {
	slots []snapshot
}

func NewSnapshotStore(capacity int) *SnapshotStore {
	s := &SnapshotStore{slots: make([]snapshot, capacity)}
	for i := range s.slots {
		s.slots[i].frame = NullFrame
	}
	return s
}

// Save stores w under its own frame number along with its checksum.
func (s *SnapshotStore) Save(w *sim.World) error {
	if err := w.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrNonFiniteState, err)
	}
	data, err := w.Encode()
	if err != nil {
		return err
	}
	f := Frame(w.Frame)
	s.slots[s.index(f)] = snapshot{frame: f, data: data, checksum: sim.Checksum(w)}
	return nil
}

// Load decodes the world saved for frame.
func (s *SnapshotStore) Load(frame Frame) (sim.World, error) {
	snap, ok := s.get(frame)
	if !ok {
		return sim.World{}, fmt.Errorf("%w: frame %d", ErrMissingSnapshot, frame)
	}
	return sim.Decode(snap.data)
}

// Checksum returns the checksum recorded when frame was saved.
func (s *SnapshotStore) Checksum(frame Frame) (uint64, bool) {
	snap, ok := s.get(frame)
	return snap.checksum, ok
}

func (s *SnapshotStore) Capacity() int { return len(s.slots) }

func (s *SnapshotStore) get(frame Frame) (snapshot, bool) {
	if frame < 0 {
		return snapshot{}, false
	}
	snap := s.slots[s.index(frame)]
	if snap.frame != frame {
		return snapshot{}, false
	}
	return snap, true
}

func (s *SnapshotStore) index(f Frame) int {
	return int(f) % len(s.slots)
}
