package sim

import "github.com/automoto/dagknights/shared/netconfig"

// enterRound applies a pending round transition.
func (w *World) enterRound(next netconfig.RoundState) {
	w.Round = next
	w.RoundEndTimer = 0
	if next == netconfig.RoundInProgress {
		w.startRound()
	}
}

// startRound regenerates the map and respawns the players from the round
// seed. Scores carry over; bullets are discarded.
func (w *World) startRound() {
	seed := RoundSeed(w.SessionSeed, w.Scores)
	w.Walls = GenerateMap(seed)
	w.Players = SpawnPlayers(seed, w.Walls)
	w.Bullets = nil
	w.RoundCount++
}

// tickRoundEnd counts down the pause between rounds. A finished match stays
// in RoundEnd forever.
func (w *World) tickRoundEnd() {
	if w.MatchOver {
		return
	}
	w.RoundEndTimer++
	if w.RoundEndTimer >= netconfig.RoundEndFrames {
		w.RoundEndTimer = 0
		w.PendingRound = netconfig.RoundInProgress
	}
}

func (w *World) checkMatchOver() {
	best, winner, reached := uint32(0), NoWinner, false
	for h, s := range w.Scores {
		if s >= netconfig.WinningScore {
			reached = true
		}
		switch {
		case s > best:
			best, winner = s, h
		case s == best:
			winner = NoWinner
		}
	}
	if reached {
		w.MatchOver = true
		w.Winner = winner
	}
}
