package sim

import (
	"github.com/automoto/dagknights/shared/gamemath"
	"github.com/automoto/dagknights/shared/netconfig"
	"github.com/solarlune/resolv"
)

const (
	tagWall  = "wall"
	tagSpawn = "spawn"
)

// Broadphase layout: arena units are scaled into 16-unit cells, shifted by
// one cell so the arena edge stays inside the space.
const (
	spaceScale  = 16.0
	spaceCell   = 16
	spaceOrigin = netconfig.MapSize/2.0 + 1
	spaceExtent = (netconfig.MapSize + 2) * spaceCell
)

// initialDirection is where every player faces at the start of a round.
var initialDirection = gamemath.Vec2{X: -1}

// SpawnPlayers places every player for a new round. Positions are drawn
// x then z per handle from a generator seeded with seed, inside the movement
// bounds; a draw that lands inside a wall is re-drawn a bounded number of times.
func SpawnPlayers(seed uint64, walls []Wall) []Player {
	rng := gamemath.NewXoshiro(seed)
	probe := newSpawnProbe(walls)

	players := make([]Player, netconfig.NumPlayers)
	for h := range players {
		var pos gamemath.Vec3
		for attempt := 0; attempt < netconfig.SpawnAttempts; attempt++ {
			pos = gamemath.Vec3{
				X: rng.Float64Range(-arenaLimit, arenaLimit),
				Y: netconfig.PlayerHeight / 2,
				Z: rng.Float64Range(-arenaLimit, arenaLimit),
			}
			if !probe.blocked(pos) {
				break
			}
		}
		players[h] = Player{
			Handle:      h,
			Position:    pos,
			Rotation:    gamemath.FacingFromDirection(initialDirection),
			MoveDir:     initialDirection,
			BulletReady: true,
			Alive:       true,
		}
	}
	return players
}

// spawnProbe answers "does a player here overlap a wall" with a resolv
// broadphase followed by an exact box test on the candidates.
type spawnProbe struct {
	space *resolv.Space
	obj   *resolv.Object
}

func newSpawnProbe(walls []Wall) *spawnProbe {
	space := resolv.NewSpace(spaceExtent, spaceExtent, spaceCell, spaceCell)
	for _, w := range walls {
		obj := broadphaseObject(w.Center.X-w.Size.X/2, w.Center.Z-w.Size.Z/2, w.Size.X, w.Size.Z, tagWall)
		obj.Data = w
		space.Add(obj)
	}

	d := 2 * netconfig.PlayerRadius
	obj := broadphaseObject(0, 0, d, d, tagSpawn)
	space.Add(obj)

	return &spawnProbe{space: space, obj: obj}
}

// broadphaseObject maps an arena rectangle into space coordinates. resolv
// registers cells up to the far edge minus one unit, so the object is
// padded by that unit to cover every cell the rectangle touches.
func broadphaseObject(x, z, w, d float64, tag string) *resolv.Object {
	sw, sd := w*spaceScale+1, d*spaceScale+1
	obj := resolv.NewObject((x+spaceOrigin)*spaceScale, (z+spaceOrigin)*spaceScale, sw, sd, tag)
	obj.SetShape(resolv.NewRectangle(0, 0, sw, sd))
	return obj
}

func (p *spawnProbe) blocked(pos gamemath.Vec3) bool {
	p.obj.X = (pos.X - netconfig.PlayerRadius + spaceOrigin) * spaceScale
	p.obj.Y = (pos.Z - netconfig.PlayerRadius + spaceOrigin) * spaceScale
	p.obj.Update()

	check := p.obj.Check(0, 0, tagWall)
	if check == nil {
		return false
	}
	for _, obj := range check.ObjectsByTags(tagWall) {
		wall, ok := obj.Data.(Wall)
		if ok && overlapsWall(pos, wall) {
			return true
		}
	}
	return false
}

// overlapsWall is the exact test: the player's bounding square against the
// wall's footprint, strictly overlapping.
func overlapsWall(pos gamemath.Vec3, w Wall) bool {
	return gamemath.Abs(pos.X-w.Center.X) < w.Size.X/2+netconfig.PlayerRadius &&
		gamemath.Abs(pos.Z-w.Center.Z) < w.Size.Z/2+netconfig.PlayerRadius
}
