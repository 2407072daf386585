package sim

import (
	"github.com/automoto/dagknights/shared/gamemath"
	"github.com/automoto/dagknights/shared/netconfig"
)

// stepDistance is how far a player travels along a unit direction per frame.
const stepDistance = netconfig.MoveSpeed * netconfig.FixedDT

// arenaLimit bounds player centers on both plane axes.
const arenaLimit = netconfig.MapSize/2.0 - netconfig.PlayerRadius

// Direction decodes the movement bits into a unit plane vector. Opposite
// keys cancel and diagonals are normalized; no keys give the zero vector.
func Direction(input uint8) gamemath.Vec2 {
	var d gamemath.Vec2
	if input&netconfig.InputUp != 0 {
		d.Y -= 1
	}
	if input&netconfig.InputDown != 0 {
		d.Y += 1
	}
	if input&netconfig.InputRight != 0 {
		d.X += 1
	}
	if input&netconfig.InputLeft != 0 {
		d.X -= 1
	}
	return d.NormalizeOrZero()
}

// Fire reports whether the fire bit is held.
func Fire(input uint8) bool {
	return input&netconfig.InputFire != 0
}

func (w *World) movePlayers(inputs []uint8) {
	for i := range w.Players {
		p := &w.Players[i]
		if !p.Alive {
			continue
		}
		dir := Direction(inputFor(inputs, p.Handle))
		if dir.IsZero() {
			p.Position.X = gamemath.Clamp(p.Position.X, -arenaLimit, arenaLimit)
			p.Position.Z = gamemath.Clamp(p.Position.Z, -arenaLimit, arenaLimit)
			continue
		}

		p.MoveDir = dir
		p.Rotation = gamemath.FacingFromDirection(dir)

		delta := dir.Scale(stepDistance)
		p.Position.X = gamemath.Clamp(p.Position.X+delta.X, -arenaLimit, arenaLimit)
		p.Position.Z = gamemath.Clamp(p.Position.Z+delta.Y, -arenaLimit, arenaLimit)
		p.DistanceTraveled += delta.Length()
	}
}

// resolveWallCollisions pushes each player out of every wall it overlaps,
// walls visited in spawn order, along the axis of least penetration.
// Equal penetration pushes along X.
func (w *World) resolveWallCollisions() {
	for i := range w.Players {
		p := &w.Players[i]
		if !p.Alive {
			continue
		}
		for _, wall := range w.Walls {
			dx := p.Position.X - wall.Center.X
			dz := p.Position.Z - wall.Center.Z
			penX := wall.Size.X/2 + netconfig.PlayerRadius - gamemath.Abs(dx)
			penZ := wall.Size.Z/2 + netconfig.PlayerRadius - gamemath.Abs(dz)
			if penX <= 0 || penZ <= 0 {
				continue
			}
			if penX <= penZ {
				p.Position.X += gamemath.Mul(gamemath.Signum(dx), penX)
			} else {
				p.Position.Z += gamemath.Mul(gamemath.Signum(dz), penZ)
			}
		}
	}
}
