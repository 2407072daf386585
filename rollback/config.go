package rollback

import (
	"fmt"
	"log"
	"time"

	"github.com/automoto/dagknights/shared/netconfig"
)

// DisconnectPolicy decides what a session does once a peer is lost.
type DisconnectPolicy int

const (
	// PolicyAbort ends the match as soon as a peer disconnects.
	PolicyAbort DisconnectPolicy = iota
	// PolicyWait keeps the session alive, frozen at the prediction window,
	// until the peer returns or WaitLimit elapses.
	PolicyWait
)

func (p DisconnectPolicy) String() string {
	switch p {
	case PolicyAbort:
		return "abort"
	case PolicyWait:
		return "wait"
	}
	return "unknown"
}

// Config tunes a session. Start from DefaultConfig and override fields.
type Config struct {
	NumPlayers   int
	LocalHandles []int

	InputDelay       int
	MaxPrediction    int
	SnapshotCapacity int

	// DesyncInterval is how often, in frames, confirmed checksums are
	// exchanged. Zero disables desync detection.
	DesyncInterval int

	InterruptTimeout  time.Duration
	DisconnectTimeout time.Duration
	DisconnectPolicy  DisconnectPolicy
	WaitLimit         time.Duration

	// CheckDistance is how many frames a sync test rolls back every tick.
	CheckDistance int

	Clock  func() time.Time
	Logger *log.Logger
}

// DefaultConfig returns the settings used by the headless peer.
func DefaultConfig() Config {
	return Config{
		NumPlayers:        netconfig.NumPlayers,
		LocalHandles:      []int{0},
		InputDelay:        2,
		MaxPrediction:     8,
		DesyncInterval:    1,
		InterruptTimeout:  500 * time.Millisecond,
		DisconnectTimeout: 5 * time.Second,
		DisconnectPolicy:  PolicyAbort,
		WaitLimit:         30 * time.Second,
		CheckDistance:     2,
	}
}

// normalized fills derived defaults and validates the result.
func (c Config) normalized() (Config, error) {
	if c.SnapshotCapacity == 0 {
		c.SnapshotCapacity = c.MaxPrediction + 2
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}

	switch {
	case c.NumPlayers != netconfig.NumPlayers:
		return c, fmt.Errorf("%w: %d players, the simulation supports %d", ErrInvalidConfig, c.NumPlayers, netconfig.NumPlayers)
	case c.InputDelay < 0:
		return c, fmt.Errorf("%w: negative input delay", ErrInvalidConfig)
	case c.MaxPrediction < 1:
		return c, fmt.Errorf("%w: max prediction must be at least 1", ErrInvalidConfig)
	case c.SnapshotCapacity < c.MaxPrediction+1:
		return c, fmt.Errorf("%w: snapshot capacity %d below max prediction %d + 1", ErrInvalidConfig, c.SnapshotCapacity, c.MaxPrediction)
	case c.InputDelay+c.MaxPrediction >= inputQueueSize:
		return c, fmt.Errorf("%w: input delay plus prediction exceeds queue size %d", ErrInvalidConfig, inputQueueSize)
	case c.DesyncInterval < 0:
		return c, fmt.Errorf("%w: negative desync interval", ErrInvalidConfig)
	case c.CheckDistance < 0 || c.CheckDistance >= c.SnapshotCapacity:
		return c, fmt.Errorf("%w: check distance %d outside [0, %d)", ErrInvalidConfig, c.CheckDistance, c.SnapshotCapacity)
	}

	seen := make(map[int]bool, len(c.LocalHandles))
	for _, h := range c.LocalHandles {
		if h < 0 || h >= c.NumPlayers {
			return c, fmt.Errorf("%w: local handle %d", ErrInvalidHandle, h)
		}
		if seen[h] {
			return c, fmt.Errorf("%w: duplicate local handle %d", ErrInvalidConfig, h)
		}
		seen[h] = true
	}
	return c, nil
}
