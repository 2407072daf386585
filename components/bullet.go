package components

import "github.com/yohamta/donburi"

type BulletData struct {
	ID    uint32
	Owner int
}

var Bullet = donburi.NewComponentType[BulletData]()
