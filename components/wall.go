package components

import (
	"github.com/automoto/dagknights/shared/gamemath"
	"github.com/yohamta/donburi"
)

// WallData is an axis-aligned box centred on Center with full extents Size.
type WallData struct {
	Center gamemath.Vec3
	Size   gamemath.Vec3
}

var Wall = donburi.NewComponentType[WallData]()
