package systems

// ScriptStep holds Bits for Frames consecutive frames.
type ScriptStep struct {
	Bits   uint8
	Frames int
}

// ScriptedInput replays a fixed sequence of inputs and loops at the end.
type ScriptedInput struct {
	steps []ScriptStep
	step  int
	left  int
}

func NewScriptedInput(steps ...ScriptStep) *ScriptedInput {
	s := &ScriptedInput{}
	for _, st := range steps {
		if st.Frames > 0 {
			s.steps = append(s.steps, st)
		}
	}
	if len(s.steps) > 0 {
		s.left = s.steps[0].Frames
	}
	return s
}

func (s *ScriptedInput) Next() uint8 {
	if len(s.steps) == 0 {
		return 0
	}
	if s.left == 0 {
		s.step = (s.step + 1) % len(s.steps)
		s.left = s.steps[s.step].Frames
	}
	s.left--
	return s.steps[s.step].Bits
}
