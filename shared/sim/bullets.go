package sim

import (
	"math"

	"github.com/automoto/dagknights/shared/gamemath"
	"github.com/automoto/dagknights/shared/netconfig"
)

const bulletStep = netconfig.BulletSpeed * netconfig.FixedDT

// octantSlope is tan(22.5°), the boundary between an axis octant and a
// diagonal one.
const octantSlope = math.Sqrt2 - 1

// muzzleOffsets are indexed by octant, counter-clockwise from +X with +Y of
// the plane mapped to world +Z.
var muzzleOffsets = [8]gamemath.Vec3{
	{X: 0.5, Y: 0, Z: 0},
	{X: 0.5, Y: 0, Z: 0.25},
	{X: 0.25, Y: 0, Z: 0.5},
	{X: -0.4, Y: 0, Z: 0.3},
	{X: -0.5, Y: 0, Z: 0},
	{X: -0.4, Y: 0, Z: -0.25},
	{X: -0.25, Y: 0, Z: -0.5},
	{X: 0.25, Y: 0, Z: -0.25},
}

// Octant classifies a plane direction into one of eight 45° sectors using
// sign and slope tests only. The zero vector is octant 0.
func Octant(d gamemath.Vec2) int {
	ax, ay := gamemath.Abs(d.X), gamemath.Abs(d.Y)
	switch {
	case ax == 0 && ay == 0:
		return 0
	case ay <= gamemath.Mul(octantSlope, ax):
		if d.X > 0 {
			return 0
		}
		return 4
	case ax <= gamemath.Mul(octantSlope, ay):
		if d.Y > 0 {
			return 2
		}
		return 6
	case d.X > 0 && d.Y > 0:
		return 1
	case d.X < 0 && d.Y > 0:
		return 3
	case d.X < 0:
		return 5
	default:
		return 7
	}
}

// MuzzleOffset is where a bullet spawns relative to its shooter.
func MuzzleOffset(dir gamemath.Vec2) gamemath.Vec3 {
	return muzzleOffsets[Octant(dir)]
}

// reloadBullets re-arms every living player who is not holding fire.
func (w *World) reloadBullets(inputs []uint8) {
	for i := range w.Players {
		p := &w.Players[i]
		if p.Alive && !Fire(inputFor(inputs, p.Handle)) {
			p.BulletReady = true
		}
	}
}

// fireBullets spawns at most one bullet per player, in handle order.
func (w *World) fireBullets(inputs []uint8) {
	for i := range w.Players {
		p := &w.Players[i]
		if !p.Alive || !p.BulletReady || !Fire(inputFor(inputs, p.Handle)) {
			continue
		}
		w.Bullets = append(w.Bullets, Bullet{
			ID:         w.NextBulletID,
			Position:   p.Position.Add(MuzzleOffset(p.MoveDir)),
			Rotation:   gamemath.FacingFromDirection(p.MoveDir),
			Direction:  p.MoveDir,
			Owner:      p.Handle,
			SpawnFrame: w.Frame,
		})
		w.NextBulletID++
		p.BulletReady = false
	}
}

func (w *World) moveBullets() {
	for i := range w.Bullets {
		b := &w.Bullets[i]
		b.Position = b.Position.Add(b.Direction.Plane(0).Scale(bulletStep))
	}
}

// bulletWallCollisions removes bullets that left the arena or touch a wall,
// preserving the order of the survivors.
func (w *World) bulletWallCollisions() {
	const half = netconfig.MapSize / 2.0
	kept := w.Bullets[:0]
	for _, b := range w.Bullets {
		if gamemath.Abs(b.Position.X) > half || gamemath.Abs(b.Position.Z) > half {
			continue
		}
		if w.bulletHitsWall(b) {
			continue
		}
		kept = append(kept, b)
	}
	w.Bullets = kept
}

func (w *World) bulletHitsWall(b Bullet) bool {
	for _, wall := range w.Walls {
		if gamemath.Abs(b.Position.X-wall.Center.X) < wall.Size.X/2+netconfig.BulletRadius &&
			gamemath.Abs(b.Position.Z-wall.Center.Z) < wall.Size.Z/2+netconfig.BulletRadius {
			return true
		}
	}
	return false
}

// eliminatePlayers kills every living player touched by a bullet they do not
// own. Both players can fall in the same frame; each still scores for the
// other.
func (w *World) eliminatePlayers() {
	const hitDistance = netconfig.PlayerRadius + netconfig.BulletRadius
	eliminated := false
	for i := range w.Players {
		p := &w.Players[i]
		if !p.Alive {
			continue
		}
		for _, b := range w.Bullets {
			if b.Owner == p.Handle {
				continue
			}
			if p.Position.Distance(b.Position) < hitDistance {
				p.Alive = false
				w.Scores[opponent(p.Handle)]++
				eliminated = true
				break
			}
		}
	}
	if eliminated {
		w.PendingRound = netconfig.RoundEnd
		w.checkMatchOver()
	}
}

func opponent(handle int) int {
	return (handle + 1) % netconfig.NumPlayers
}
