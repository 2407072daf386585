package sim

import (
	"github.com/automoto/dagknights/shared/gamemath"
	"github.com/automoto/dagknights/shared/netconfig"
)

// maxWallCells is the exclusive upper bound on a wall's width and depth.
const maxWallCells = netconfig.MapSize / 4

// RoundSeed mixes the running score into the session seed so that every
// round gets a fresh layout that both peers agree on.
func RoundSeed(sessionSeed uint64, scores [netconfig.NumPlayers]uint32) uint64 {
	var total uint32
	for _, s := range scores {
		total += s
	}
	return uint64(total) ^ sessionSeed
}

// GenerateMap lays out the walls for one round. Each wall draws width,
// depth, cell x and cell z in that order from a generator seeded with seed.
func GenerateMap(seed uint64) []Wall {
	rng := gamemath.NewXoshiro(seed)
	walls := make([]Wall, 0, netconfig.WallCount)
	for i := 0; i < netconfig.WallCount; i++ {
		width := rng.IntRange(1, maxWallCells)
		depth := rng.IntRange(1, maxWallCells)
		cellX := rng.IntRangeInclusive(0, netconfig.MapSize-width)
		cellZ := rng.IntRangeInclusive(0, netconfig.MapSize-depth)

		size := gamemath.Vec3{X: float64(width), Y: netconfig.WallHeight, Z: float64(depth)}
		walls = append(walls, Wall{
			Center: gamemath.Vec3{
				X: float64(cellX) + size.X/2 - netconfig.MapSize/2.0,
				Y: netconfig.WallHeight / 2,
				Z: float64(cellZ) + size.Z/2 - netconfig.MapSize/2.0,
			},
			Size: size,
		})
	}
	return walls
}
