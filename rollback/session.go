// Package rollback schedules the deterministic simulation across peers: it
// predicts missing remote inputs, snapshots every frame, rolls back and
// resimulates when a prediction proves wrong, and compares confirmed
// checksums to detect desyncs.
package rollback

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/automoto/dagknights/shared/messages"
	"github.com/automoto/dagknights/shared/netconfig"
	"github.com/automoto/dagknights/shared/sim"
)

// checksumRetention bounds how long unmatched checksums are kept.
const checksumRetention = 2 * inputQueueSize

type peer struct {
	handle         int
	lastRecv       time.Time
	interrupted    bool
	disconnected   bool
	disconnectedAt time.Time
	ack            Frame // highest of our frames the peer has confirmed
}

// Session is a peer-to-peer rollback session. It owns its World and
// snapshot store; nothing else may mutate them. All methods must be called
// from the simulation goroutine.
type Session struct {
	cfg       Config
	log       *log.Logger
	transport Transport

	world     *sim.World
	snapshots *SnapshotStore
	queues    []*InputQueue
	local     []bool
	staged    []uint8
	peers     []*peer

	state    State
	desynced bool
	stalled  bool

	lastReported Frame
	localSums    map[Frame]uint64
	remoteSums   map[Frame]uint64

	events []Event
	stats  Stats
	fatal  error
}

// NewSession starts a session at frame 0 of world. The session keeps its
// own copy of world.
func NewSession(cfg Config, world *sim.World, transport Transport) (*Session, error) {
	cfg, err := cfg.normalized()
	if err != nil {
		return nil, err
	}
	if world.Frame != 0 {
		return nil, fmt.Errorf("%w: world starts at frame %d", ErrInvalidConfig, world.Frame)
	}
	if len(world.Players) != cfg.NumPlayers {
		return nil, fmt.Errorf("%w: world has %d players", ErrInvalidConfig, len(world.Players))
	}

	w := world.Clone()
	s := &Session{
		cfg:          cfg,
		log:          cfg.Logger,
		transport:    transport,
		world:        &w,
		snapshots:    NewSnapshotStore(cfg.SnapshotCapacity),
		queues:       make([]*InputQueue, cfg.NumPlayers),
		local:        make([]bool, cfg.NumPlayers),
		staged:       make([]uint8, cfg.NumPlayers),
		peers:        make([]*peer, cfg.NumPlayers),
		lastReported: NullFrame,
		localSums:    make(map[Frame]uint64),
		remoteSums:   make(map[Frame]uint64),
	}

	for _, h := range cfg.LocalHandles {
		s.local[h] = true
	}
	now := cfg.Clock()
	for h := range s.queues {
		s.queues[h] = NewInputQueue()
		if s.local[h] {
			for f := 0; f < cfg.InputDelay; f++ {
				s.queues[h].Confirm(Frame(f), 0)
			}
			continue
		}
		s.peers[h] = &peer{handle: h, lastRecv: now, ack: NullFrame}
	}
	return s, nil
}

// AddLocalInput stages the input of a local player for the next
// AdvanceFrame. Staging twice keeps the latest value.
func (s *Session) AddLocalInput(handle int, bits uint8) error {
	if handle < 0 || handle >= len(s.local) || !s.local[handle] {
		return fmt.Errorf("%w: %d is not a local player", ErrInvalidHandle, handle)
	}
	s.staged[handle] = bits & netconfig.InputKnownMask
	return nil
}

// AdvanceFrame runs one scheduler tick. It returns ErrPredictionThreshold
// while too far ahead of the confirmed inputs; the staged local input is
// kept for the next attempt. A *FatalError ends the session.
func (s *Session) AdvanceFrame() error {
	if s.fatal != nil {
		return s.fatal
	}
	now := s.cfg.Clock()

	s.poll(now)
	if err := s.checkPeers(now); err != nil {
		return s.fail(err)
	}
	if err := s.rollbackIfNeeded(); err != nil {
		return s.fail(err)
	}

	frame := s.currentFrame()
	if int(frame-s.confirmedFrame()) > s.cfg.MaxPrediction {
		s.enterStall(frame)
		s.sendInputs()
		return ErrPredictionThreshold
	}
	s.leaveStall(frame)

	for _, h := range s.cfg.LocalHandles {
		s.queues[h].Confirm(frame+Frame(s.cfg.InputDelay), s.staged[h])
		s.staged[h] = 0
	}
	if err := s.simulate(frame); err != nil {
		return s.fail(err)
	}

	s.sendInputs()
	s.reportChecksums()
	s.compareChecksums()
	return nil
}

// simulate saves the snapshot for frame and steps the world past it.
func (s *Session) simulate(frame Frame) error {
	if err := s.snapshots.Save(s.world); err != nil {
		return err
	}
	inputs := make([]uint8, len(s.queues))
	for h, q := range s.queues {
		inputs[h], _ = q.Use(frame)
	}
	s.world.Advance(inputs)
	if err := s.world.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrNonFiniteState, err)
	}
	return nil
}

func (s *Session) poll(now time.Time) {
	for _, env := range s.transport.Poll() {
		h := env.Handle()
		if h < 0 || h >= len(s.peers) || s.peers[h] == nil {
			continue
		}
		p := s.peers[h]

		switch {
		case env.Input != nil:
			s.touch(p, now)
			start := Frame(env.Input.StartFrame)
			for i, bits := range env.Input.Bits {
				s.queues[h].Confirm(start+Frame(i), bits&netconfig.InputKnownMask)
			}
			if ack := Frame(env.Input.Ack); ack > p.ack {
				p.ack = ack
			}
		case env.Checksum != nil:
			s.touch(p, now)
			s.remoteSums[Frame(env.Checksum.Frame)] = env.Checksum.Checksum
		case env.Disconnected != nil:
			s.markDisconnected(p, now)
		}
	}
}

func (s *Session) touch(p *peer, now time.Time) {
	p.lastRecv = now
	if p.interrupted || p.disconnected {
		p.interrupted = false
		p.disconnected = false
		s.emit(Event{Kind: EventNetworkResumed, Frame: s.currentFrame(), Handle: p.handle})
		s.log.Printf("[session] player %d resumed at frame %d", p.handle, s.currentFrame())
	}
}

func (s *Session) markDisconnected(p *peer, now time.Time) {
	if p.disconnected {
		return
	}
	p.disconnected = true
	p.disconnectedAt = now
	s.emit(Event{Kind: EventDisconnected, Frame: s.currentFrame(), Handle: p.handle})
	s.log.Printf("[session] player %d disconnected at frame %d (policy %s)", p.handle, s.currentFrame(), s.cfg.DisconnectPolicy)
}

// checkPeers applies timeouts and the disconnect policy, in handle order.
func (s *Session) checkPeers(now time.Time) error {
	for _, p := range s.peers {
		if p == nil {
			continue
		}
		silent := now.Sub(p.lastRecv)
		if !p.disconnected {
			if !p.interrupted && silent >= s.cfg.InterruptTimeout {
				p.interrupted = true
				s.emit(Event{Kind: EventNetworkInterrupted, Frame: s.currentFrame(), Handle: p.handle})
				s.log.Printf("[session] player %d silent for %v", p.handle, silent)
			}
			if silent >= s.cfg.DisconnectTimeout {
				s.markDisconnected(p, now)
			}
		}
		if !p.disconnected {
			continue
		}
		switch s.cfg.DisconnectPolicy {
		case PolicyAbort:
			return fmt.Errorf("%w: player %d", ErrPeerDisconnected, p.handle)
		case PolicyWait:
			if now.Sub(p.disconnectedAt) >= s.cfg.WaitLimit {
				return fmt.Errorf("%w: player %d did not return within %v", ErrPeerDisconnected, p.handle, s.cfg.WaitLimit)
			}
		}
	}
	return nil
}

func (s *Session) rollbackIfNeeded() error {
	first := NullFrame
	for h, q := range s.queues {
		if s.local[h] {
			continue
		}
		if f := q.TakeFirstIncorrect(); f != NullFrame && (first == NullFrame || f < first) {
			first = f
		}
	}
	if first == NullFrame || first >= s.currentFrame() {
		return nil
	}
	return s.rollback(first)
}

// rollback restores the snapshot of first and resimulates up to the current
// frame in increasing order.
func (s *Session) rollback(first Frame) error {
	current := s.currentFrame()
	if int(current-first) > s.snapshots.Capacity() {
		return fmt.Errorf("%w: frame %d from %d", ErrSnapshotHorizon, first, current)
	}

	s.state = StateRollingBack
	w, err := s.snapshots.Load(first)
	if err != nil {
		return err
	}
	s.world = &w
	for f := first; f < current; f++ {
		if err := s.simulate(f); err != nil {
			return err
		}
	}
	s.state = StateRunning
	if s.desynced {
		s.state = StateDesynced
	}

	n := int(current - first)
	s.stats.Rollbacks++
	s.stats.RolledBackFrames += n
	s.emit(Event{Kind: EventRollback, Frame: current, From: first, To: current})
	s.log.Printf("[session] rolled back %d frames to %d", n, first)
	return nil
}

func (s *Session) enterStall(frame Frame) {
	if s.stalled {
		return
	}
	s.stalled = true
	s.stats.Stalls++
	s.emit(Event{Kind: EventStallStarted, Frame: frame})
	s.log.Printf("[session] waiting for remote input at frame %d", frame)
}

func (s *Session) leaveStall(frame Frame) {
	if !s.stalled {
		return
	}
	s.stalled = false
	s.emit(Event{Kind: EventStallEnded, Frame: frame})
}

// sendInputs sends every local input the peers have not acknowledged. An
// empty range still carries the ack and keeps the peer's timeout fresh.
func (s *Session) sendInputs() {
	from := s.minPeerAck() + 1
	ack := s.remoteConfirmed()
	for _, h := range s.cfg.LocalHandles {
		q := s.queues[h]
		last := q.LastConfirmed()
		start := from
		if oldest := last - inputQueueSize + 1; start < oldest {
			start = oldest
		}
		msg := &messages.InputMessage{
			Handle:     h,
			StartFrame: int64(start),
			Bits:       q.Range(start, last),
			Ack:        int64(ack),
		}
		if err := s.transport.Send(messages.Envelope{Input: msg}); err != nil {
			s.log.Printf("[session] send input: %v", err)
		}
	}
}

// reportChecksums publishes the checksum of every newly confirmed frame.
// The checksum of frame F is taken from the state after F steps, once all
// inputs below F are confirmed.
func (s *Session) reportChecksums() {
	if s.cfg.DesyncInterval == 0 || len(s.cfg.LocalHandles) == 0 {
		return
	}
	current := s.currentFrame()
	limit := min(s.confirmedFrame()+1, current)
	for f := s.lastReported + 1; f <= limit; f++ {
		s.lastReported = f
		if int(f)%s.cfg.DesyncInterval != 0 {
			continue
		}
		var sum uint64
		if f == current {
			sum = sim.Checksum(s.world)
		} else {
			var ok bool
			if sum, ok = s.snapshots.Checksum(f); !ok {
				continue
			}
		}
		s.localSums[f] = sum
		report := &messages.ChecksumReport{Handle: s.cfg.LocalHandles[0], Frame: int64(f), Checksum: sum}
		if err := s.transport.Send(messages.Envelope{Checksum: report}); err != nil {
			s.log.Printf("[session] send checksum: %v", err)
		}
	}
}

func (s *Session) compareChecksums() {
	var frames []Frame
	for f := range s.localSums {
		if _, ok := s.remoteSums[f]; ok {
			frames = append(frames, f)
		}
	}
	slices.Sort(frames)

	for _, f := range frames {
		local, remote := s.localSums[f], s.remoteSums[f]
		delete(s.localSums, f)
		delete(s.remoteSums, f)
		if local == remote {
			continue
		}
		s.desynced = true
		s.state = StateDesynced
		s.stats.Desyncs++
		ev := Event{Kind: EventDesync, Frame: f, LocalChecksum: local, RemoteChecksum: remote}
		s.emit(ev)
		s.log.Printf("[session] %s", ev)
	}

	horizon := s.lastReported - checksumRetention
	for f := range s.localSums {
		if f < horizon {
			delete(s.localSums, f)
		}
	}
	for f := range s.remoteSums {
		if f < horizon {
			delete(s.remoteSums, f)
		}
	}
}

func (s *Session) fail(err error) error {
	var fe *FatalError
	if !errors.As(err, &fe) {
		fe = &FatalError{Frame: s.currentFrame(), Err: err}
	}
	s.fatal = fe
	s.log.Printf("[session] %v", fe)
	return fe
}

func (s *Session) emit(ev Event) {
	s.events = append(s.events, ev)
}

func (s *Session) currentFrame() Frame {
	return Frame(s.world.Frame)
}

// confirmedFrame is the highest frame whose inputs are confirmed for every
// player.
func (s *Session) confirmedFrame() Frame {
	c := s.queues[0].LastConfirmed()
	for _, q := range s.queues[1:] {
		c = min(c, q.LastConfirmed())
	}
	return c
}

func (s *Session) remoteConfirmed() Frame {
	c := NullFrame
	first := true
	for h, q := range s.queues {
		if s.local[h] {
			continue
		}
		if first || q.LastConfirmed() < c {
			c = q.LastConfirmed()
		}
		first = false
	}
	return c
}

func (s *Session) minPeerAck() Frame {
	a := NullFrame
	first := true
	for _, p := range s.peers {
		if p == nil {
			continue
		}
		if first || p.ack < a {
			a = p.ack
		}
		first = false
	}
	return a
}

// Events drains the queued events.
func (s *Session) Events() []Event {
	out := s.events
	s.events = nil
	return out
}

// Frame is the next frame to be simulated.
func (s *Session) Frame() Frame { return s.currentFrame() }

func (s *Session) State() State { return s.state }

// Err returns the fatal error that ended the session, if any.
func (s *Session) Err() error { return s.fatal }

// Checksum of the current, possibly predicted, world.
func (s *Session) Checksum() uint64 { return sim.Checksum(s.world) }

// World returns a copy of the current world.
func (s *Session) World() sim.World { return s.world.Clone() }

// View is the current frame for rendering. It may include predicted input.
func (s *Session) View() sim.FrameView { return s.world.View() }

// ConfirmedView is the latest frame computed only from confirmed inputs.
func (s *Session) ConfirmedView() (sim.FrameView, error) {
	current := s.currentFrame()
	f := min(s.confirmedFrame()+1, current)
	if f == current {
		return s.world.View(), nil
	}
	w, err := s.snapshots.Load(f)
	if err != nil {
		return sim.FrameView{}, err
	}
	return w.View(), nil
}

func (s *Session) Stats() Stats {
	st := s.stats
	st.Frame = s.currentFrame()
	st.ConfirmedFrame = s.confirmedFrame()
	st.FrameAdvantage = int(st.Frame - s.remoteConfirmed() - 1)
	for _, q := range s.queues {
		st.Conflicts += q.Conflicts()
	}
	return st
}

// Close releases the transport.
func (s *Session) Close() error {
	return s.transport.Close()
}
