// Package netconfig defines lightweight types shared between every peer and
// the relay. It must have zero dependencies outside the standard library so
// that the deterministic core and the headless binaries agree on the same
// constants bit for bit.
package netconfig

// Input bit flags. A peer's input for one frame is a single byte.
const (
	InputUp     uint8 = 1 << 0
	InputDown   uint8 = 1 << 1
	InputLeft   uint8 = 1 << 2
	InputRight  uint8 = 1 << 3
	InputFire   uint8 = 1 << 4 // fire and melee attack share a bit
	InputDodge  uint8 = 1 << 5
	InputBlock  uint8 = 1 << 6
	InputSprint uint8 = 1 << 7

	// InputKnownMask covers every bit the simulation understands.
	InputKnownMask = InputUp | InputDown | InputLeft | InputRight |
		InputFire | InputDodge | InputBlock | InputSprint
)

// Arena and tuning constants. Changing any of these changes the simulation
// and therefore requires a protocol version bump.
const (
	NumPlayers = 2

	MapSize      = 41
	WallHeight   = 3.0
	PlayerHeight = 1.0
	PlayerRadius = 0.3
	BulletRadius = 0.05

	FPS     = 60
	FixedDT = 1.0 / FPS

	MoveSpeed   = 6.0
	BulletSpeed = 20.0

	WallCount      = 20
	RoundEndFrames = FPS // one second
	WinningScore   = 3

	// SpawnAttempts bounds how often a spawn inside a wall is re-drawn.
	SpawnAttempts = 8
)

// RoundState is the coarse rollback-aware round state.
type RoundState uint8

const (
	RoundInProgress RoundState = iota
	RoundEnd
)

func (s RoundState) String() string {
	switch s {
	case RoundInProgress:
		return "InRound"
	case RoundEnd:
		return "RoundEnd"
	}
	return "unknown"
}

// GamePhase sequences session setup and teardown around the rollback core.
// Only PhaseInGame runs the rollback scheduler.
type GamePhase int

const (
	PhaseMatchmaking GamePhase = iota
	PhaseInGame
	PhaseGameEnd
)

var phaseNames = map[GamePhase]string{
	PhaseMatchmaking: "Matchmaking",
	PhaseInGame:      "InGame",
	PhaseGameEnd:     "GameEnd",
}

func (p GamePhase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}
