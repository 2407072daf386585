package network

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/automoto/dagknights/shared/messages"
	"github.com/coder/websocket"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
)

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateJoined
	StateError
)

var clientStateNames = map[ClientState]string{
	StateDisconnected: "disconnected",
	StateConnecting:   "connecting",
	StateConnected:    "connected",
	StateJoined:       "joined",
	StateError:        "error",
}

func (s ClientState) String() string {
	if name, ok := clientStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// inboxSize bounds envelopes buffered between router goroutines and Poll.
const inboxSize = 1024

// Client is the relay connection of one peer. Router callbacks run on necs
// goroutines and hand envelopes to the simulation goroutine through a
// buffered channel drained by Poll. All other shared fields are protected
// by mu.
type Client struct {
	mu sync.RWMutex

	state     ClientState
	lastError error
	handle    int
	peerIDs   []string
	room      string
	tickRate  int
	conn      *websocket.Conn
	dropped   int

	joined   chan struct{}
	joinOnce sync.Once
	failed   chan struct{}
	failOnce sync.Once

	inbox chan messages.Envelope
}

func NewClient() *Client {
	return &Client{
		state:  StateDisconnected,
		handle: -1,
		joined: make(chan struct{}),
		failed: make(chan struct{}),
		inbox:  make(chan messages.Envelope, inboxSize),
	}
}

// Connect dials the relay in a background goroutine and sends req once the
// socket is up. Use WaitJoined to block until the room is complete.
func (c *Client) Connect(address string, req messages.JoinRequest) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	router.OnConnect(func(_ *router.NetworkClient) {
		log.Println("[client] connected to relay")
		c.mu.Lock()
		c.state = StateConnected
		c.mu.Unlock()

		if err := c.write(req); err != nil {
			c.setError(fmt.Errorf("send join request: %w", err))
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinAccepted) {
		log.Printf("[client] joined room %s as player %d of %d", msg.Room, msg.Handle, len(msg.PeerIDs))
		c.mu.Lock()
		c.handle = msg.Handle
		c.peerIDs = append([]string(nil), msg.PeerIDs...)
		c.room = msg.Room
		c.tickRate = msg.TickRate
		c.state = StateJoined
		c.mu.Unlock()
		c.joinOnce.Do(func() { close(c.joined) })
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinRejected) {
		log.Printf("[client] join rejected: %s", msg.Reason)
		c.setError(fmt.Errorf("join rejected: %s", msg.Reason))
	})

	router.On(func(_ *router.NetworkClient, msg messages.InputMessage) {
		c.push(messages.Envelope{Input: &msg})
	})

	router.On(func(_ *router.NetworkClient, msg messages.ChecksumReport) {
		c.push(messages.Envelope{Checksum: &msg})
	})

	router.On(func(_ *router.NetworkClient, msg messages.PeerDisconnected) {
		c.push(messages.Envelope{Disconnected: &msg})
	})

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] disconnected: %v", err)
		c.mu.Lock()
		if c.state != StateError {
			c.state = StateDisconnected
		}
		c.conn = nil
		c.mu.Unlock()
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] error: %v", err)
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.setError(fmt.Errorf("connection failed: %w", err))
		}
	}()
}

// WaitJoined blocks until the relay seats this client, the join fails, or
// ctx ends.
func (c *Client) WaitJoined(ctx context.Context) error {
	select {
	case <-c.joined:
		return nil
	case <-c.failed:
		return c.LastError()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send writes the populated field of env to the relay.
func (c *Client) Send(env messages.Envelope) error {
	switch {
	case env.Input != nil:
		return c.write(*env.Input)
	case env.Checksum != nil:
		return c.write(*env.Checksum)
	case env.Disconnected != nil:
		return c.write(*env.Disconnected)
	}
	return errors.New("empty envelope")
}

// Poll drains the envelopes received since the last call. Non-blocking.
func (c *Client) Poll() []messages.Envelope {
	return drainChan(c.inbox)
}

// Close drops the connection and resets the router callbacks.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	router.ResetRouter()
	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "bye")
	}
	return nil
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// Handle is the player handle assigned by the relay, or -1 before joining.
func (c *Client) Handle() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.handle
}

// PeerIDs are the room members ordered by handle.
func (c *Client) PeerIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.peerIDs...)
}

func (c *Client) TickRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tickRate
}

// Dropped counts envelopes lost because Poll fell behind.
func (c *Client) Dropped() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dropped
}

func (c *Client) write(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return ErrClosed
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}
	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

func (c *Client) push(env messages.Envelope) {
	select {
	case c.inbox <- env:
	default:
		c.mu.Lock()
		c.dropped++
		c.mu.Unlock()
	}
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
	c.failOnce.Do(func() { close(c.failed) })
}

func drainChan[T any](ch chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}
