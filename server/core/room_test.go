package core

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/automoto/dagknights/shared/messages"
	"github.com/automoto/dagknights/shared/protocol"
	"github.com/google/uuid"
)

type fakePeer struct {
	name string
	sent []any
}

func (p *fakePeer) Send(msg any) error {
	p.sent = append(p.sent, msg)
	return nil
}

func (p *fakePeer) last() any {
	if len(p.sent) == 0 {
		return nil
	}
	return p.sent[len(p.sent)-1]
}

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func newTestRooms(clock *testClock) *Rooms {
	return NewRooms(RoomsConfig{Size: 2, MaxRooms: 2, TickRate: 60, Version: protocol.Version, Clock: clock.Now})
}

func join(room string, id string) messages.JoinRequest {
	return messages.JoinRequest{Version: protocol.Version, PlayerName: "p", Room: room, PeerID: id}
}

func TestRoomStartsWhenFull(t *testing.T) {
	rooms := newTestRooms(&testClock{now: time.Unix(0, 0)})
	a, b := &fakePeer{name: "a"}, &fakePeer{name: "b"}
	idA, idB := uuid.NewString(), uuid.NewString()

	if err := rooms.Join(a, join("r", idA)); err != nil {
		t.Fatal(err)
	}
	if len(a.sent) != 0 {
		t.Fatalf("accepted before the room filled: %v", a.sent)
	}
	if err := rooms.Join(b, join("r", idB)); err != nil {
		t.Fatal(err)
	}

	for h, p := range []*fakePeer{a, b} {
		acc, ok := p.last().(messages.JoinAccepted)
		if !ok {
			t.Fatalf("peer %s got %T", p.name, p.last())
		}
		if acc.Handle != h || !reflect.DeepEqual(acc.PeerIDs, []string{idA, idB}) || acc.TickRate != 60 {
			t.Fatalf("peer %s accepted = %+v", p.name, acc)
		}
	}
	if rooms.PlayerCount() != 2 || rooms.RoomCount() != 1 {
		t.Fatalf("players %d rooms %d", rooms.PlayerCount(), rooms.RoomCount())
	}
}

func TestJoinRejections(t *testing.T) {
	rooms := newTestRooms(&testClock{})
	a, b, c := &fakePeer{}, &fakePeer{}, &fakePeer{}
	_ = rooms.Join(a, join("r", ""))
	_ = rooms.Join(b, join("r", ""))

	tests := []struct {
		name string
		peer *fakePeer
		req  messages.JoinRequest
		want error
	}{
		{"full room", c, join("r", ""), ErrRoomFull},
		{"old client", c, messages.JoinRequest{Version: "dagknights/0", Room: "s"}, ErrVersionMismatch},
		{"double join", a, join("s", ""), ErrAlreadyJoined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rooms.Join(tt.peer, tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if _, ok := tt.peer.last().(messages.JoinRejected); !ok {
				t.Fatalf("no rejection sent: %v", tt.peer.last())
			}
		})
	}

	_ = rooms.Join(&fakePeer{}, join("s", ""))
	if err := rooms.Join(&fakePeer{}, join("t", "")); !errors.Is(err, ErrTooManyRooms) {
		t.Fatalf("third room: %v", err)
	}
}

func TestRelayAssignsPeerIDs(t *testing.T) {
	rooms := newTestRooms(&testClock{})
	a, b := &fakePeer{}, &fakePeer{}
	_ = rooms.Join(a, join("r", "not-a-uuid"))
	_ = rooms.Join(b, join("r", ""))
	acc := a.last().(messages.JoinAccepted)
	if _, err := protocol.SeedFromStrings(acc.PeerIDs); err != nil {
		t.Fatalf("relay handed out unusable ids %v: %v", acc.PeerIDs, err)
	}
}

func TestForwardToOthers(t *testing.T) {
	rooms := newTestRooms(&testClock{})
	a, b := &fakePeer{}, &fakePeer{}

	input := messages.InputMessage{Handle: 0, StartFrame: 3, Bits: []uint8{1, 2}, Ack: 1}
	if err := rooms.Forward(a, messages.Envelope{Input: &input}); !errors.Is(err, ErrNotInRoom) {
		t.Fatalf("forward before join: %v", err)
	}

	_ = rooms.Join(a, join("r", ""))
	_ = rooms.Join(b, join("r", ""))
	a.sent, b.sent = nil, nil

	if err := rooms.Forward(a, messages.Envelope{Input: &input}); err != nil {
		t.Fatal(err)
	}
	if got, ok := b.last().(messages.InputMessage); !ok || !reflect.DeepEqual(got, input) {
		t.Fatalf("b got %+v", b.last())
	}
	if len(a.sent) != 0 {
		t.Fatal("sender got its own input")
	}

	report := messages.ChecksumReport{Handle: 1, Frame: 9, Checksum: 0xFEED}
	_ = rooms.Forward(b, messages.Envelope{Checksum: &report})
	if got, ok := a.last().(messages.ChecksumReport); !ok || got != report {
		t.Fatalf("a got %+v", a.last())
	}

	// b may not speak for a.
	spoofed := messages.InputMessage{Handle: 0, StartFrame: 4, Bits: []uint8{8}}
	_ = rooms.Forward(b, messages.Envelope{Input: &spoofed})
	if len(a.sent) != 1 {
		t.Fatalf("spoofed input forwarded: %v", a.sent)
	}
	if fwd, dropped := rooms.Traffic(); fwd != 2 || dropped != 2 {
		t.Fatalf("traffic = %d forwarded, %d dropped", fwd, dropped)
	}
}

func TestLeaveNotifiesRoom(t *testing.T) {
	rooms := newTestRooms(&testClock{})
	a, b := &fakePeer{}, &fakePeer{}
	_ = rooms.Join(a, join("r", ""))
	_ = rooms.Join(b, join("r", ""))

	rooms.Leave(a)
	if got, ok := b.last().(messages.PeerDisconnected); !ok || got.Handle != 0 {
		t.Fatalf("b got %+v", b.last())
	}
	rooms.Leave(b)
	if rooms.RoomCount() != 0 || rooms.PlayerCount() != 0 {
		t.Fatal("empty room kept")
	}
	rooms.Leave(b)
}

func TestLeaveWaitingRoomRenumbers(t *testing.T) {
	rooms := newTestRooms(&testClock{})
	a, b, c := &fakePeer{}, &fakePeer{}, &fakePeer{}
	_ = rooms.Join(a, join("r", ""))
	rooms.Leave(a)
	if rooms.RoomCount() != 0 {
		t.Fatal("empty waiting room kept")
	}
	_ = rooms.Join(b, join("r", ""))
	_ = rooms.Join(c, join("r", ""))
	if acc := b.last().(messages.JoinAccepted); acc.Handle != 0 {
		t.Fatalf("b handle = %d", acc.Handle)
	}
}

func TestSweepIdleRooms(t *testing.T) {
	clock := &testClock{now: time.Unix(100, 0)}
	rooms := newTestRooms(clock)
	a, b, c := &fakePeer{}, &fakePeer{}, &fakePeer{}
	_ = rooms.Join(a, join("busy", ""))
	_ = rooms.Join(b, join("busy", ""))
	_ = rooms.Join(c, join("stale", ""))

	clock.now = clock.now.Add(50 * time.Second)
	input := messages.InputMessage{Handle: 0, Bits: []uint8{0}}
	_ = rooms.Forward(a, messages.Envelope{Input: &input})

	clock.now = clock.now.Add(20 * time.Second)
	if n := rooms.Sweep(time.Minute); n != 1 {
		t.Fatalf("swept %d rooms", n)
	}
	if rooms.RoomCount() != 1 || rooms.PlayerCount() != 2 {
		t.Fatalf("rooms %d players %d", rooms.RoomCount(), rooms.PlayerCount())
	}
}
