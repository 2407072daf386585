package core

import (
	"log"
	"sync"
	"time"

	"github.com/automoto/dagknights/shared/messages"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
)

// ServerConfig configures a relay.
type ServerConfig struct {
	Name            string
	Players         int // per room
	MaxRooms        int
	TickRate        int
	RoomIdleTimeout time.Duration
}

// Server relays inputs and checksum reports between the members of each
// room. It never runs the simulation.
type Server struct {
	cfg       ServerConfig
	rooms     *Rooms
	loop      *GameLoop
	transport *transports.WsServerTransport

	mu    sync.RWMutex
	peers map[*router.NetworkClient]netPeer
}

// netPeer adapts a necs client to the room table.
type netPeer struct {
	client *router.NetworkClient
}

func (p netPeer) Send(msg any) error {
	return p.client.SendMessage(msg)
}

func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		cfg:   cfg,
		rooms: NewRooms(defaultRoomsConfig(cfg.Players, cfg.MaxRooms, cfg.TickRate)),
		peers: make(map[*router.NetworkClient]netPeer),
	}
	s.loop = NewGameLoop(s, cfg.TickRate)

	// Register router callbacks
	s.setupRouterCallbacks()

	return s
}

// Start begins the server on the given port
func (s *Server) Start(port uint) error {
	go s.loop.Run()

	s.transport = transports.NewWsServerTransport(port, "", nil)
	return s.transport.Start()
}

// Stop gracefully shuts down the server
func (s *Server) Stop() {
	s.loop.Stop()
}

func (s *Server) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		s.onConnect(client)
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		s.onDisconnect(client, err)
	})

	router.On(func(client *router.NetworkClient, req messages.JoinRequest) {
		_ = s.rooms.Join(s.peer(client), req)
	})

	router.On(func(client *router.NetworkClient, msg messages.InputMessage) {
		_ = s.rooms.Forward(s.peer(client), messages.Envelope{Input: &msg})
	})

	router.On(func(client *router.NetworkClient, msg messages.ChecksumReport) {
		_ = s.rooms.Forward(s.peer(client), messages.Envelope{Checksum: &msg})
	})

	// A peer announcing its own departure is treated like a disconnect.
	router.On(func(client *router.NetworkClient, _ messages.PeerDisconnected) {
		s.rooms.Leave(s.peer(client))
	})

	router.OnError(func(client *router.NetworkClient, err error) {
		log.Printf("[relay] client error: %v", err)
	})
}

func (s *Server) onConnect(client *router.NetworkClient) {
	log.Printf("[relay] client connected: %s", client.Id())
	s.mu.Lock()
	s.peers[client] = netPeer{client: client}
	s.mu.Unlock()
}

func (s *Server) onDisconnect(client *router.NetworkClient, err error) {
	if err != nil {
		log.Printf("[relay] client %s disconnected with error: %v", client.Id(), err)
	} else {
		log.Printf("[relay] client %s disconnected", client.Id())
	}

	s.mu.Lock()
	p, ok := s.peers[client]
	delete(s.peers, client)
	s.mu.Unlock()

	if ok {
		s.rooms.Leave(p)
	}
}

func (s *Server) peer(client *router.NetworkClient) netPeer {
	s.mu.RLock()
	p, ok := s.peers[client]
	s.mu.RUnlock()
	if !ok {
		p = netPeer{client: client}
	}
	return p
}

// tick runs once per loop iteration.
func (s *Server) tick() {
	if s.cfg.RoomIdleTimeout > 0 {
		s.rooms.Sweep(s.cfg.RoomIdleTimeout)
	}
}

func (s *Server) Rooms() *Rooms { return s.rooms }

// PlayerCount returns the number of seated players
func (s *Server) PlayerCount() int {
	return s.rooms.PlayerCount()
}

// MaxPlayers is the seat capacity advertised to the master.
func (s *Server) MaxPlayers() int {
	return s.cfg.MaxRooms * s.cfg.Players
}
