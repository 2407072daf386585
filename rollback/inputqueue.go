package rollback

const inputQueueSize = 128

// inputRecord is one slot of an input ring. A slot answers for a frame only
// when its stored frame matches.
type inputRecord struct {
	frame Frame
	bits  uint8
}

// InputQueue tracks one player's inputs: the confirmed values received so
// far, the value each simulated frame actually used, and the earliest frame
// whose used value turned out wrong.
type InputQueue struct {
	confirmed [inputQueueSize]inputRecord
	used      [inputQueueSize]inputRecord

	lastConfirmed  Frame // every frame up to here is confirmed
	firstIncorrect Frame
	conflicts      int
}

func NewInputQueue() *InputQueue {
	q := &InputQueue{lastConfirmed: NullFrame, firstIncorrect: NullFrame}
	for i := range q.confirmed {
		q.confirmed[i].frame = NullFrame
		q.used[i].frame = NullFrame
	}
	return q
}

// Confirm records the real input for frame. It reports whether the value
// was new. Duplicates are ignored; a duplicate that disagrees with the
// value already confirmed is counted as a conflict and otherwise ignored.
func (q *InputQueue) Confirm(frame Frame, bits uint8) bool {
	if frame < 0 {
		return false
	}
	if known, ok := q.Get(frame); ok {
		if known != bits {
			q.conflicts++
		}
		return false
	}
	if frame <= q.lastConfirmed || frame >= q.lastConfirmed+inputQueueSize {
		return false
	}

	idx := index(frame)
	q.confirmed[idx] = inputRecord{frame: frame, bits: bits}

	if u := q.used[idx]; u.frame == frame && u.bits != bits {
		if q.firstIncorrect == NullFrame || frame < q.firstIncorrect {
			q.firstIncorrect = frame
		}
	}

	for {
		next := q.lastConfirmed + 1
		if q.confirmed[index(next)].frame != next {
			break
		}
		q.lastConfirmed = next
	}
	return true
}

// Get returns the confirmed input for frame, if known.
func (q *InputQueue) Get(frame Frame) (uint8, bool) {
	if frame < 0 {
		return 0, false
	}
	r := q.confirmed[index(frame)]
	if r.frame != frame {
		return 0, false
	}
	return r.bits, true
}

// Use returns the input the simulation should apply for frame and remembers
// it so that a later confirmation can be checked against it. An unconfirmed
// frame repeats the last contiguously confirmed input.
func (q *InputQueue) Use(frame Frame) (bits uint8, confirmed bool) {
	bits, confirmed = q.Get(frame)
	if !confirmed {
		bits = q.prediction()
	}
	q.used[index(frame)] = inputRecord{frame: frame, bits: bits}
	return bits, confirmed
}

func (q *InputQueue) prediction() uint8 {
	bits, _ := q.Get(q.lastConfirmed)
	return bits
}

// LastConfirmed is the highest frame below which nothing is missing.
func (q *InputQueue) LastConfirmed() Frame { return q.lastConfirmed }

// TakeFirstIncorrect returns and clears the earliest mispredicted frame.
func (q *InputQueue) TakeFirstIncorrect() Frame {
	f := q.firstIncorrect
	q.firstIncorrect = NullFrame
	return f
}

// Range returns the confirmed inputs for [from, to]. It stops early at the
// first gap.
func (q *InputQueue) Range(from, to Frame) []uint8 {
	var out []uint8
	for f := from; f <= to; f++ {
		bits, ok := q.Get(f)
		if !ok {
			break
		}
		out = append(out, bits)
	}
	return out
}

func (q *InputQueue) Conflicts() int { return q.conflicts }

func index(f Frame) int {
	return int(f) % inputQueueSize
}
