package components

import "github.com/yohamta/donburi"

// NetStatusData is a singleton summarising the rollback session for HUDs.
type NetStatusData struct {
	State            string
	Frame            int
	ConfirmedFrame   int
	FrameAdvantage   int
	Rollbacks        int
	RolledBackFrames int
	Stalls           int
	Desyncs          int
	Interrupted      bool
	Disconnected     []int
}

var NetStatus = donburi.NewComponentType[NetStatusData]()
