// Package scenes holds the phases of a peer's life: matchmaking, the match
// itself and the result screen.
package scenes

import (
	"errors"

	"github.com/automoto/dagknights/rollback"
	"github.com/automoto/dagknights/shared/netconfig"
	"github.com/automoto/dagknights/shared/sim"
	"github.com/yohamta/donburi"
)

// ErrQuit is returned by the last scene once there is nothing left to run.
var ErrQuit = errors.New("quit")

// Scene is one fixed-rate update target.
type Scene interface {
	Update() error
	Phase() netconfig.GamePhase
}

// SceneChanger allows scenes to trigger transitions
type SceneChanger interface {
	ChangeScene(scene interface{})
}

// InputSource supplies one local player's input per frame.
type InputSource interface {
	Next() uint8
}

// InputFactory builds the input source of a local handle. world is the
// donburi world the match mirrors its views into.
type InputFactory func(handle int, world donburi.World) InputSource

// GameSession is what the match scene needs from a rollback session.
type GameSession interface {
	AddLocalInput(handle int, bits uint8) error
	AdvanceFrame() error
	Events() []rollback.Event
	View() sim.FrameView
	ConfirmedView() (sim.FrameView, error)
	World() sim.World
	Stats() rollback.Stats
	State() rollback.State
	Close() error
}

// Match is a session ready to play.
type Match struct {
	Session      GameSession
	LocalHandles []int
	Room         string
	Inputs       InputFactory
	// Closers are released with the session when the match ends.
	Closers []func() error
}

// Result is how a match finished.
type Result struct {
	Room      string
	Frame     uint64
	Scores    [netconfig.NumPlayers]uint32
	MatchOver bool
	Winner    int
	Stats     rollback.Stats
	Err       error
}
