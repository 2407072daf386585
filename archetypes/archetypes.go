package archetypes

import (
	"github.com/automoto/dagknights/components"
	"github.com/automoto/dagknights/tags"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

var (
	Player = newArchetype(
		tags.Player,
		components.Player,
		components.Transform,
	)
	Bullet = newArchetype(
		tags.Bullet,
		components.Bullet,
		components.Transform,
	)
	Wall = newArchetype(
		tags.Wall,
		components.Wall,
	)
	Match = newArchetype(
		components.Score,
		components.Round,
	)
	NetStatus = newArchetype(
		components.NetStatus,
	)
)

type archetype struct {
	components []donburi.IComponentType
}

func newArchetype(cs ...donburi.IComponentType) *archetype {
	return &archetype{
		components: cs,
	}
}

func (a *archetype) Spawn(ecs *ecs.ECS, cs ...donburi.IComponentType) *donburi.Entry {
	all := append(append([]donburi.IComponentType(nil), a.components...), cs...)
	return ecs.World.Entry(ecs.World.Create(all...))
}
