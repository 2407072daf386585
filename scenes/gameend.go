package scenes

import (
	"log"

	"github.com/automoto/dagknights/shared/netconfig"
)

// GameEndScene reports the result once and then asks the runner to stop.
type GameEndScene struct {
	result   Result
	reported bool
}

func NewGameEndScene(result Result) *GameEndScene {
	return &GameEndScene{result: result}
}

func (gs *GameEndScene) Phase() netconfig.GamePhase { return netconfig.PhaseGameEnd }

func (gs *GameEndScene) Result() Result { return gs.result }

func (gs *GameEndScene) Update() error {
	if !gs.reported {
		gs.reported = true
		r := gs.result
		switch {
		case r.Err != nil:
			log.Printf("[scene] match ended at frame %d: %v", r.Frame, r.Err)
		case r.Winner >= 0:
			log.Printf("[scene] player %d wins %v at frame %d", r.Winner, r.Scores, r.Frame)
		default:
			log.Printf("[scene] draw %v at frame %d", r.Scores, r.Frame)
		}
	}
	return ErrQuit
}
