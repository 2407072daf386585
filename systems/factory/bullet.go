package factory

import (
	"github.com/automoto/dagknights/archetypes"
	"github.com/automoto/dagknights/components"
	"github.com/automoto/dagknights/shared/sim"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

func CreateBullet(ecs *ecs.ECS, b sim.BulletView) *donburi.Entry {
	bullet := archetypes.Bullet.Spawn(ecs)
	components.Bullet.SetValue(bullet, components.BulletData{ID: b.ID, Owner: b.Owner})
	components.Transform.SetValue(bullet, components.TransformData{
		Position: b.Position,
		Rotation: b.Rotation,
	})
	return bullet
}
