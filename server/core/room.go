package core

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/automoto/dagknights/shared/messages"
	"github.com/automoto/dagknights/shared/protocol"
	"github.com/google/uuid"
)

var (
	ErrVersionMismatch = errors.New("version mismatch")
	ErrRoomFull        = errors.New("room full")
	ErrTooManyRooms    = errors.New("too many rooms")
	ErrAlreadyJoined   = errors.New("already joined")
	ErrNotInRoom       = errors.New("not in a started room")
)

// Peer is one connected client as far as rooms are concerned.
type Peer interface {
	Send(msg any) error
}

type member struct {
	peer   Peer
	peerID string
	name   string
	handle int
}

// Room groups the peers of one match. Handles are assigned in join order.
type Room struct {
	Name       string
	members    []*member
	started    bool
	lastActive time.Time
	forwarded  uint64
}

// RoomsConfig sizes the room table.
type RoomsConfig struct {
	Size     int // peers per match
	MaxRooms int
	TickRate int
	Version  string // empty accepts any client
	Clock    func() time.Time
}

// Rooms is the relay's room table. Methods are safe for concurrent use from
// router goroutines.
type Rooms struct {
	mu     sync.Mutex
	cfg    RoomsConfig
	rooms  map[string]*Room
	byPeer map[Peer]*Room

	forwarded uint64
	dropped   uint64
}

func NewRooms(cfg RoomsConfig) *Rooms {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Size <= 0 {
		cfg.Size = 2
	}
	return &Rooms{
		cfg:    cfg,
		rooms:  make(map[string]*Room),
		byPeer: make(map[Peer]*Room),
	}
}

// Join seats p in the requested room. When the room fills every member is
// sent JoinAccepted with the handle-ordered peer IDs. A refused join is
// answered with JoinRejected and returned as an error.
func (r *Rooms) Join(p Peer, req messages.JoinRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.admit(p, req); err != nil {
		log.Printf("[relay] rejected %q for room %q: %v", req.PlayerName, req.Room, err)
		if serr := p.Send(messages.JoinRejected{Reason: err.Error()}); serr != nil {
			log.Printf("[relay] send rejection: %v", serr)
		}
		return err
	}

	room := r.rooms[req.Room]
	if room == nil {
		room = &Room{Name: req.Room}
		r.rooms[req.Room] = room
	}

	peerID := req.PeerID
	if _, err := uuid.Parse(peerID); err != nil {
		peerID = uuid.NewString()
	}
	m := &member{peer: p, peerID: peerID, name: req.PlayerName, handle: len(room.members)}
	room.members = append(room.members, m)
	room.lastActive = r.cfg.Clock()
	r.byPeer[p] = room
	log.Printf("[relay] %q joined room %q as player %d (%d/%d)",
		m.name, room.Name, m.handle, len(room.members), r.cfg.Size)

	if len(room.members) == r.cfg.Size {
		r.start(room)
	}
	return nil
}

func (r *Rooms) admit(p Peer, req messages.JoinRequest) error {
	if r.cfg.Version != "" && req.Version != r.cfg.Version {
		return ErrVersionMismatch
	}
	if _, ok := r.byPeer[p]; ok {
		return ErrAlreadyJoined
	}
	room, ok := r.rooms[req.Room]
	if !ok {
		if r.cfg.MaxRooms > 0 && len(r.rooms) >= r.cfg.MaxRooms {
			return ErrTooManyRooms
		}
		return nil
	}
	if room.started || len(room.members) >= r.cfg.Size {
		return ErrRoomFull
	}
	return nil
}

func (r *Rooms) start(room *Room) {
	room.started = true
	ids := make([]string, len(room.members))
	for i, m := range room.members {
		ids[i] = m.peerID
	}
	for _, m := range room.members {
		msg := messages.JoinAccepted{
			Handle:   m.handle,
			PeerIDs:  ids,
			Room:     room.Name,
			TickRate: r.cfg.TickRate,
		}
		if err := m.peer.Send(msg); err != nil {
			log.Printf("[relay] send join accepted to player %d: %v", m.handle, err)
		}
	}
	log.Printf("[relay] room %q started", room.Name)
}

// Forward relays an input range or checksum report from p to the rest of
// its room. Envelopes claiming another member's handle are dropped.
func (r *Rooms) Forward(p Peer, env messages.Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.byPeer[p]
	if !ok || !room.started {
		r.dropped++
		return ErrNotInRoom
	}
	sender := room.member(p)
	if env.Handle() != sender.handle {
		r.dropped++
		log.Printf("[relay] player %d in %q sent a message for handle %d", sender.handle, room.Name, env.Handle())
		return nil
	}

	var msg any
	switch {
	case env.Input != nil:
		msg = *env.Input
	case env.Checksum != nil:
		msg = *env.Checksum
	default:
		r.dropped++
		return nil
	}

	room.lastActive = r.cfg.Clock()
	for _, m := range room.members {
		if m == sender {
			continue
		}
		if err := m.peer.Send(msg); err != nil {
			r.dropped++
			continue
		}
		room.forwarded++
		r.forwarded++
	}
	return nil
}

// Leave removes p from its room and tells the remaining members.
func (r *Rooms) Leave(p Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.byPeer[p]
	if !ok {
		return
	}
	delete(r.byPeer, p)
	gone := room.member(p)
	room.members = removeMember(room.members, gone)
	log.Printf("[relay] player %d left room %q", gone.handle, room.Name)

	if room.started {
		for _, m := range room.members {
			if err := m.peer.Send(messages.PeerDisconnected{Handle: gone.handle}); err != nil {
				log.Printf("[relay] send disconnect notice: %v", err)
			}
		}
	} else {
		// Waiting rooms renumber so handles stay dense.
		for i, m := range room.members {
			m.handle = i
		}
	}
	if len(room.members) == 0 {
		delete(r.rooms, room.Name)
	}
}

// Sweep closes rooms without traffic for longer than idle and returns how
// many it closed. Members of a swept room are forgotten; their connections
// stay open until the peers leave.
func (r *Rooms) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.cfg.Clock()
	closed := 0
	for name, room := range r.rooms {
		if now.Sub(room.lastActive) < idle {
			continue
		}
		for _, m := range room.members {
			delete(r.byPeer, m.peer)
		}
		delete(r.rooms, name)
		closed++
		log.Printf("[relay] closed idle room %q (%d forwarded)", name, room.forwarded)
	}
	return closed
}

// PlayerCount returns the number of seated peers.
func (r *Rooms) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byPeer)
}

func (r *Rooms) RoomCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// Traffic returns the forwarded and dropped message counters.
func (r *Rooms) Traffic() (forwarded, dropped uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.forwarded, r.dropped
}

func (room *Room) member(p Peer) *member {
	for _, m := range room.members {
		if m.peer == p {
			return m
		}
	}
	return nil
}

func removeMember(ms []*member, gone *member) []*member {
	out := ms[:0]
	for _, m := range ms {
		if m != gone {
			out = append(out, m)
		}
	}
	return out
}

// defaultRoomsConfig builds the table configuration of a relay.
func defaultRoomsConfig(size, maxRooms, tickRate int) RoomsConfig {
	return RoomsConfig{
		Size:     size,
		MaxRooms: maxRooms,
		TickRate: tickRate,
		Version:  protocol.Version,
	}
}
