package factory

import (
	"github.com/automoto/dagknights/archetypes"
	"github.com/automoto/dagknights/components"
	"github.com/automoto/dagknights/shared/sim"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

func CreatePlayer(ecs *ecs.ECS, p sim.PlayerView, local bool) *donburi.Entry {
	player := archetypes.Player.Spawn(ecs)
	components.Player.SetValue(player, components.PlayerData{
		Handle: p.Handle,
		Alive:  p.Alive,
		Local:  local,
	})
	components.Transform.SetValue(player, components.TransformData{
		Position: p.Position,
		Rotation: p.Rotation,
	})
	return player
}
