package components

import (
	"github.com/automoto/dagknights/shared/gamemath"
	"github.com/yohamta/donburi"
)

// TransformData is the last mirrored pose of a player or bullet.
type TransformData struct {
	Position gamemath.Vec3
	Rotation gamemath.Quat
}

var Transform = donburi.NewComponentType[TransformData]()
