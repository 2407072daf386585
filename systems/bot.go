package systems

import (
	"math"

	"github.com/automoto/dagknights/components"
	cfg "github.com/automoto/dagknights/config"
	"github.com/automoto/dagknights/shared/gamemath"
	"github.com/automoto/dagknights/tags"
	"github.com/yohamta/donburi"
)

// wanderHeadings are the eight directions a bot picks from while roaming.
var wanderHeadings = [8][]cfg.ActionID{
	{cfg.ActionMoveUp},
	{cfg.ActionMoveUp, cfg.ActionMoveRight},
	{cfg.ActionMoveRight},
	{cfg.ActionMoveDown, cfg.ActionMoveRight},
	{cfg.ActionMoveDown},
	{cfg.ActionMoveDown, cfg.ActionMoveLeft},
	{cfg.ActionMoveLeft},
	{cfg.ActionMoveUp, cfg.ActionMoveLeft},
}

// BotInput produces local input for one handle by reading the mirrored
// donburi world. It only ever sees what the renderer sees, so it plays
// through the same rollback session as a human would.
type BotInput struct {
	world  donburi.World
	handle int
	tuning cfg.BotDifficultyConfig
	rng    *gamemath.Xoshiro

	bits       uint8
	cooldown   int
	wander     uint8
	wanderLeft int
}

// NewBotInput creates a bot for handle. The seed only drives wandering and
// has nothing to do with the simulation seed.
func NewBotInput(world donburi.World, handle int, difficulty cfg.BotDifficulty, seed uint64) *BotInput {
	tuning, ok := cfg.Bot.Difficulties[difficulty]
	if !ok {
		tuning = cfg.Bot.Difficulties[cfg.BotDifficultyNormal]
	}
	return &BotInput{
		world:  world,
		handle: handle,
		tuning: tuning,
		rng:    gamemath.NewXoshiro(seed),
	}
}

// Next returns the input for the coming frame. Decisions are only revised
// every ReactionDelay frames; in between the previous bits are held.
func (b *BotInput) Next() uint8 {
	if b.cooldown > 0 {
		b.cooldown--
		return b.bits
	}
	b.cooldown = b.tuning.ReactionDelay
	b.bits = b.decide()
	return b.bits
}

func (b *BotInput) decide() uint8 {
	self, target, ok := b.positions()
	if !ok {
		return 0
	}

	dx := target.X - self.X
	dz := target.Z - self.Z
	dist := math.Hypot(dx, dz)
	slack := b.tuning.AlignSlack

	if dist <= b.tuning.FireRange {
		aligned := math.Abs(dx) <= slack || math.Abs(dz) <= slack ||
			math.Abs(math.Abs(dx)-math.Abs(dz)) <= slack
		if aligned {
			return b.toward(dx, dz, slack) | cfg.Input.Bits(cfg.ActionFire)
		}
		// Close the smaller gap to get onto a firing line.
		if math.Abs(dx) < math.Abs(dz) {
			return b.toward(dx, 0, slack)
		}
		return b.toward(0, dz, slack)
	}
	return b.roam()
}

// toward returns movement bits closing the given offset. Offsets within
// slack leave that axis alone.
func (b *BotInput) toward(dx, dz, slack float64) uint8 {
	var actions []cfg.ActionID
	switch {
	case dx > slack:
		actions = append(actions, cfg.ActionMoveRight)
	case dx < -slack:
		actions = append(actions, cfg.ActionMoveLeft)
	}
	switch {
	case dz > slack:
		actions = append(actions, cfg.ActionMoveDown)
	case dz < -slack:
		actions = append(actions, cfg.ActionMoveUp)
	}
	return cfg.Input.Bits(actions...)
}

func (b *BotInput) roam() uint8 {
	if b.wanderLeft <= 0 {
		b.wander = cfg.Input.Bits(wanderHeadings[b.rng.IntN(len(wanderHeadings))]...)
		b.wanderLeft = b.tuning.WanderFrames
	}
	b.wanderLeft -= b.tuning.ReactionDelay + 1
	return b.wander
}

// positions finds this bot's player and the nearest living opponent.
func (b *BotInput) positions() (self, target gamemath.Vec3, ok bool) {
	foundSelf, foundTarget := false, false
	best := math.Inf(1)
	var others []gamemath.Vec3

	tags.Player.Each(b.world, func(entry *donburi.Entry) {
		player := components.Player.Get(entry)
		pos := components.Transform.Get(entry).Position
		if player.Handle == b.handle {
			self, foundSelf = pos, player.Alive
			return
		}
		if player.Alive {
			others = append(others, pos)
		}
	})
	if !foundSelf {
		return self, target, false
	}
	for _, pos := range others {
		if d := self.Distance(pos); d < best {
			best, target, foundTarget = d, pos, true
		}
	}
	return self, target, foundTarget
}
