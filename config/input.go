package config

import "github.com/automoto/dagknights/shared/netconfig"

// ActionID represents a logical game action
type ActionID int

const (
	ActionNone ActionID = iota
	ActionMoveUp
	ActionMoveDown
	ActionMoveLeft
	ActionMoveRight
	ActionFire
	ActionDodge
	ActionBlock
	ActionSprint
	ActionCount // Must be last - used for array sizing
)

// InputConfig maps logical actions to the bits of a frame input.
type InputConfig struct {
	Bindings [ActionCount]uint8
}

// Input is the global input configuration
var Input InputConfig

func init() {
	Input = InputConfig{
		Bindings: [ActionCount]uint8{
			ActionMoveUp:    netconfig.InputUp,
			ActionMoveDown:  netconfig.InputDown,
			ActionMoveLeft:  netconfig.InputLeft,
			ActionMoveRight: netconfig.InputRight,
			ActionFire:      netconfig.InputFire,
			ActionDodge:     netconfig.InputDodge,
			ActionBlock:     netconfig.InputBlock,
			ActionSprint:    netconfig.InputSprint,
		},
	}
}

// Bits packs the pressed actions into one frame input.
func (c InputConfig) Bits(pressed ...ActionID) uint8 {
	var bits uint8
	for _, a := range pressed {
		if a > ActionNone && a < ActionCount {
			bits |= c.Bindings[a]
		}
	}
	return bits
}
