package main

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/automoto/dagknights/shared/messages"
	"github.com/automoto/dagknights/shared/netconfig"
	"github.com/automoto/dagknights/shared/protocol"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const maxRoomSize = 8

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow connections from any origin
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type waiter struct {
	id      uuid.UUID
	conn    *websocket.Conn
	matched chan struct{}
}

// Lobby pairs peers that ask for the same room name and size. Once enough
// are waiting each one is told the ordered peer list and which relay to
// use, and its socket is closed.
type Lobby struct {
	mu       sync.Mutex
	waiting  map[string][]*waiter
	registry *Registry
	timeout  time.Duration
	// fallbackRelay is offered when no relay is registered.
	fallbackRelay string
}

func NewLobby(registry *Registry, timeout time.Duration, fallbackRelay string) *Lobby {
	return &Lobby{
		waiting:       make(map[string][]*waiter),
		registry:      registry,
		timeout:       timeout,
		fallbackRelay: fallbackRelay,
	}
}

// Handler serves GET /room/{name}?next=N.
func (l *Lobby) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		if name == "" {
			http.Error(w, `{"error":"room name required"}`, http.StatusBadRequest)
			return
		}
		size := netconfig.NumPlayers
		if next := r.URL.Query().Get("next"); next != "" {
			n, err := strconv.Atoi(next)
			if err != nil || n < 2 || n > maxRoomSize {
				http.Error(w, `{"error":"next must be between 2 and 8"}`, http.StatusBadRequest)
				return
			}
			size = n
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[master] lobby upgrade error: %v", err)
			return
		}
		defer conn.Close()

		me := &waiter{id: uuid.New(), conn: conn, matched: make(chan struct{})}
		key := fmt.Sprintf("%s/%d", name, size)
		l.enqueue(key, name, size, me)

		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		var timeout <-chan time.Time
		if l.timeout > 0 {
			t := time.NewTimer(l.timeout)
			defer t.Stop()
			timeout = t.C
		}

		select {
		case <-me.matched:
		case <-gone:
			l.remove(key, me)
		case <-timeout:
			if l.remove(key, me) {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "no match"),
					time.Now().Add(time.Second))
			}
		}
	}
}

func (l *Lobby) enqueue(key, name string, size int, me *waiter) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.waiting[key] = append(l.waiting[key], me)
	log.Printf("[master] peer %s waiting in room %q (%d/%d)", me.id, name, len(l.waiting[key]), size)
	if len(l.waiting[key]) < size {
		return
	}

	group := l.waiting[key][:size]
	l.waiting[key] = l.waiting[key][size:]
	if len(l.waiting[key]) == 0 {
		delete(l.waiting, key)
	}

	relay := l.fallbackRelay
	if info, ok := l.registry.LeastLoaded(protocol.Version); ok {
		relay = info.Address
	}
	ids := make([]string, len(group))
	for i, wt := range group {
		ids[i] = wt.id.String()
	}
	room := fmt.Sprintf("%s-%s", name, uuid.NewString()[:8])
	for i, wt := range group {
		msg := messages.LobbyMatch{Room: room, PeerIDs: ids, Index: i, RelayAddress: relay}
		_ = wt.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := wt.conn.WriteJSON(msg); err != nil {
			log.Printf("[master] send match to %s: %v", wt.id, err)
		}
		close(wt.matched)
	}
	log.Printf("[master] matched %d peers in room %q on relay %q", size, room, relay)
}

// remove takes me out of the queue, reporting whether it was still there.
func (l *Lobby) remove(key string, me *waiter) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	queue := l.waiting[key]
	for i, wt := range queue {
		if wt == me {
			l.waiting[key] = append(queue[:i], queue[i+1:]...)
			if len(l.waiting[key]) == 0 {
				delete(l.waiting, key)
			}
			return true
		}
	}
	return false
}

// Waiting returns the number of queued peers across all rooms.
func (l *Lobby) Waiting() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, q := range l.waiting {
		n += len(q)
	}
	return n
}
