package sim

import "github.com/automoto/dagknights/shared/netconfig"

// Step is the pure form of the transition: it returns the world for the next
// frame and leaves w untouched.
func Step(w World, inputs []uint8) World {
	next := w.Clone()
	next.Advance(inputs)
	return next
}

// Advance moves w forward by exactly one frame using one input byte per
// player handle. Missing entries count as no input; unknown bits are masked.
//
// A round transition requested during frame N takes effect at the start
// of frame N+1, before any sub-step runs.
func (w *World) Advance(inputs []uint8) {
	if w.PendingRound != w.Round {
		w.enterRound(w.PendingRound)
	}

	switch w.Round {
	case netconfig.RoundInProgress:
		w.movePlayers(inputs)
		w.resolveWallCollisions()
		w.reloadBullets(inputs)
		w.fireBullets(inputs)
		w.moveBullets()
		w.bulletWallCollisions()
		w.eliminatePlayers()
	case netconfig.RoundEnd:
		w.tickRoundEnd()
	}

	w.Frame++
	w.normalize()
}

func inputFor(inputs []uint8, handle int) uint8 {
	if handle < 0 || handle >= len(inputs) {
		return 0
	}
	return inputs[handle] & netconfig.InputKnownMask
}
