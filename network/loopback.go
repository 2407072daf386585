package network

import (
	"fmt"
	"sort"
	"sync"

	"github.com/automoto/dagknights/shared/gamemath"
	"github.com/automoto/dagknights/shared/messages"
	"github.com/vmihailenco/msgpack/v5"
)

// FaultConfig describes how a loopback link misbehaves. Delays are counted
// in Poll calls on the receiving side. The same seed always produces the
// same faults for the same traffic.
type FaultConfig struct {
	Seed          uint64
	MinDelay      int
	MaxDelay      int
	DropRate      float64
	DuplicateRate float64
}

type queued struct {
	due  int
	seq  int
	data []byte
}

// Loopback is one end of an in-memory link. Envelopes are copied through
// msgpack on the way so the two ends never share memory.
type Loopback struct {
	mu     sync.Mutex
	handle int
	faults FaultConfig
	rng    *gamemath.Xoshiro
	inbox  []queued
	polls  int
	seq    int
	closed bool
	peer   *Loopback

	dropped    int
	duplicated int
}

// NewLoopbackPair connects handle a to handle b. Each direction draws its
// own faults from the seed.
func NewLoopbackPair(faults FaultConfig, a, b int) (*Loopback, *Loopback) {
	if faults.MaxDelay < faults.MinDelay {
		faults.MaxDelay = faults.MinDelay
	}
	la := &Loopback{handle: a, faults: faults, rng: gamemath.NewXoshiro(faults.Seed)}
	lb := &Loopback{handle: b, faults: faults, rng: gamemath.NewXoshiro(faults.Seed ^ 0x5bd1e995)}
	la.peer, lb.peer = lb, la
	return la, lb
}

// Send schedules env for delivery to the other end.
func (l *Loopback) Send(env messages.Envelope) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	drop := env.Disconnected == nil && l.rng.Float64() < l.faults.DropRate
	copies := 1
	if !drop && l.rng.Float64() < l.faults.DuplicateRate {
		copies = 2
	}
	delays := make([]int, copies)
	for i := range delays {
		delays[i] = l.faults.MinDelay + l.rng.IntN(l.faults.MaxDelay-l.faults.MinDelay+1)
	}
	if drop {
		l.dropped++
	}
	if copies == 2 {
		l.duplicated++
	}
	l.mu.Unlock()

	if drop {
		return nil
	}
	data, err := msgpack.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	for _, d := range delays {
		l.peer.enqueue(data, d)
	}
	return nil
}

func (l *Loopback) enqueue(data []byte, delay int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	l.inbox = append(l.inbox, queued{due: l.polls + delay, seq: l.seq, data: data})
}

// Poll returns every envelope that is due, in due order.
func (l *Loopback) Poll() []messages.Envelope {
	l.mu.Lock()
	l.polls++
	var due []queued
	kept := l.inbox[:0]
	for _, q := range l.inbox {
		if q.due < l.polls {
			due = append(due, q)
		} else {
			kept = append(kept, q)
		}
	}
	l.inbox = kept
	l.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})

	out := make([]messages.Envelope, 0, len(due))
	for _, q := range due {
		var env messages.Envelope
		if err := msgpack.Unmarshal(q.data, &env); err != nil {
			continue
		}
		out = append(out, env)
	}
	return out
}

// Close tells the other end this handle is gone.
func (l *Loopback) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	data, err := msgpack.Marshal(messages.Envelope{Disconnected: &messages.PeerDisconnected{Handle: l.handle}})
	if err != nil {
		return err
	}
	l.peer.enqueue(data, 0)
	return nil
}

// Faults reports how many envelopes this end dropped and duplicated.
func (l *Loopback) Faults() (dropped, duplicated int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped, l.duplicated
}
