package sim

import (
	"github.com/automoto/dagknights/shared/gamemath"
	"github.com/automoto/dagknights/shared/netconfig"
)

// PlayerView is the render-facing part of a Player.
type PlayerView struct {
	Handle   int
	Position gamemath.Vec3
	Rotation gamemath.Quat
	Alive    bool
}

// BulletView is the render-facing part of a Bullet.
type BulletView struct {
	ID       uint32
	Owner    int
	Position gamemath.Vec3
	Rotation gamemath.Quat
}

// FrameView is a read-only copy of the world for presentation. It never
// aliases the world it was taken from.
type FrameView struct {
	Frame     uint64
	Round     netconfig.RoundState
	Scores    [netconfig.NumPlayers]uint32
	Players   []PlayerView
	Bullets   []BulletView
	Walls     []Wall
	MatchOver bool
	Winner    int
}

// View copies out what a renderer needs.
func (w *World) View() FrameView {
	v := FrameView{
		Frame:     w.Frame,
		Round:     w.Round,
		Scores:    w.Scores,
		Players:   make([]PlayerView, 0, len(w.Players)),
		Bullets:   make([]BulletView, 0, len(w.Bullets)),
		Walls:     append([]Wall(nil), w.Walls...),
		MatchOver: w.MatchOver,
		Winner:    w.Winner,
	}
	for _, p := range w.Players {
		v.Players = append(v.Players, PlayerView{
			Handle: p.Handle, Position: p.Position, Rotation: p.Rotation, Alive: p.Alive,
		})
	}
	for _, b := range w.Bullets {
		v.Bullets = append(v.Bullets, BulletView{
			ID: b.ID, Owner: b.Owner, Position: b.Position, Rotation: b.Rotation,
		})
	}
	return v
}
