package components

import (
	"github.com/yohamta/donburi"
)

type PlayerData struct {
	Handle int
	Alive  bool
	Local  bool // driven by this peer
}

var Player = donburi.NewComponentType[PlayerData]()
