package components

import (
	"github.com/automoto/dagknights/shared/netconfig"
	"github.com/yohamta/donburi"
)

// ScoreData stores the mirrored match score.
// This is a singleton component - only one match exists at a time.
type ScoreData struct {
	Scores    [netconfig.NumPlayers]uint32
	MatchOver bool
	Winner    int // handle of the winner, -1 while playing or on a draw
}

var Score = donburi.NewComponentType[ScoreData]()

// Leader returns the handle with the most round wins, or -1 on a tie.
func (s *ScoreData) Leader() int {
	leader, best, tied := -1, uint32(0), false
	for h, v := range s.Scores {
		switch {
		case leader < 0 || v > best:
			leader, best, tied = h, v, false
		case v == best:
			tied = true
		}
	}
	if tied {
		return -1
	}
	return leader
}

// RoundData is the singleton carrying the frame and round of the last view.
type RoundData struct {
	Frame uint64
	State netconfig.RoundState
	// Number counts rounds seen by the mirror, starting at 1.
	Number int
}

var Round = donburi.NewComponentType[RoundData]()
