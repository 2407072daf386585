// Package sim is the deterministic simulation of one match. A World at frame
// N+1 is fully determined by the World at frame N and the inputs for frame
// N. Nothing in this package reads the clock, logs, or iterates a map.
package sim

import (
	"errors"
	"fmt"

	"github.com/automoto/dagknights/shared/gamemath"
	"github.com/automoto/dagknights/shared/netconfig"
)

// ErrNonFiniteTransform reports a NaN or infinite position or rotation.
var ErrNonFiniteTransform = errors.New("sim: non-finite transform")

// NoWinner is stored in World.Winner while the match is running or drawn.
const NoWinner = -1

// Player is one participant. The index in World.Players equals Handle and is
// stable for the match.
type Player struct {
	Handle           int           `msgpack:"handle"`
	Position         gamemath.Vec3 `msgpack:"pos"`
	Rotation         gamemath.Quat `msgpack:"rot"`
	MoveDir          gamemath.Vec2 `msgpack:"dir"`
	BulletReady      bool          `msgpack:"ready"`
	DistanceTraveled float64       `msgpack:"dist"`
	Alive            bool          `msgpack:"alive"`
}

// Bullet is owned exclusively by the World that spawned it.
type Bullet struct {
	ID         uint32        `msgpack:"id"`
	Position   gamemath.Vec3 `msgpack:"pos"`
	Rotation   gamemath.Quat `msgpack:"rot"`
	Direction  gamemath.Vec2 `msgpack:"dir"`
	Owner      int           `msgpack:"owner"`
	SpawnFrame uint64        `msgpack:"spawn"`
}

// Wall is an axis-aligned static obstacle, immutable for its round.
type Wall struct {
	Center gamemath.Vec3 `msgpack:"center"`
	Size   gamemath.Vec3 `msgpack:"size"`
}

// World is the complete simulation state. Every field takes part in the
// snapshot; a field left out of the encoding would be a rollback bug.
type World struct {
	Frame       uint64 `msgpack:"frame"`
	SessionSeed uint64 `msgpack:"seed"`

	Players []Player `msgpack:"players"`
	Bullets []Bullet `msgpack:"bullets"`
	Walls   []Wall   `msgpack:"walls"`

	Scores [netconfig.NumPlayers]uint32 `msgpack:"scores"`

	Round         netconfig.RoundState `msgpack:"round"`
	PendingRound  netconfig.RoundState `msgpack:"pending"`
	RoundEndTimer int                  `msgpack:"round_timer"`
	RoundCount    uint32               `msgpack:"round_count"`

	NextBulletID uint32 `msgpack:"next_bullet"`

	MatchOver bool `msgpack:"match_over"`
	Winner    int  `msgpack:"winner"`
}

// NewWorld builds frame 0 of a match: the first map is generated and both
// players are spawned from the session seed.
func NewWorld(sessionSeed uint64) *World {
	w := &World{
		SessionSeed:  sessionSeed,
		Round:        netconfig.RoundInProgress,
		PendingRound: netconfig.RoundInProgress,
		Winner:       NoWinner,
	}
	w.startRound()
	return w
}

// Clone returns a deep copy that shares no memory with w.
func (w *World) Clone() World {
	c := *w
	c.Players = append([]Player(nil), w.Players...)
	c.Bullets = append([]Bullet(nil), w.Bullets...)
	c.Walls = append([]Wall(nil), w.Walls...)
	c.normalize()
	return c
}

// Player returns the player with the given handle.
func (w *World) Player(handle int) (*Player, bool) {
	if handle < 0 || handle >= len(w.Players) {
		return nil, false
	}
	return &w.Players[handle], true
}

// Validate reports the first non-finite transform in the world.
func (w *World) Validate() error {
	for _, p := range w.Players {
		if !p.Position.IsFinite() || !p.Rotation.IsFinite() {
			return fmt.Errorf("%w: player %d at frame %d", ErrNonFiniteTransform, p.Handle, w.Frame)
		}
	}
	for _, b := range w.Bullets {
		if !b.Position.IsFinite() || !b.Rotation.IsFinite() {
			return fmt.Errorf("%w: bullet %d at frame %d", ErrNonFiniteTransform, b.ID, w.Frame)
		}
	}
	return nil
}

// normalize keeps empty collections nil so that copies taken through Clone
// and through the snapshot codec compare equal.
func (w *World) normalize() {
	if len(w.Bullets) == 0 {
		w.Bullets = nil
	}
	if len(w.Walls) == 0 {
		w.Walls = nil
	}
	if len(w.Players) == 0 {
		w.Players = nil
	}
}
