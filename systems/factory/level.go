package factory

import (
	"github.com/automoto/dagknights/archetypes"
	"github.com/automoto/dagknights/components"
	"github.com/automoto/dagknights/shared/sim"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

func CreateWall(ecs *ecs.ECS, w sim.Wall) *donburi.Entry {
	wall := archetypes.Wall.Spawn(ecs)
	components.Wall.SetValue(wall, components.WallData{Center: w.Center, Size: w.Size})
	return wall
}

// CreateMatch creates the score and round singleton.
func CreateMatch(ecs *ecs.ECS) *donburi.Entry {
	match := archetypes.Match.Spawn(ecs)
	components.Score.SetValue(match, components.ScoreData{Winner: sim.NoWinner})
	return match
}

func CreateNetStatus(ecs *ecs.ECS) *donburi.Entry {
	return archetypes.NetStatus.Spawn(ecs)
}
