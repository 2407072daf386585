package systems

import (
	"slices"

	"github.com/automoto/dagknights/components"
	"github.com/automoto/dagknights/shared/netconfig"
	"github.com/automoto/dagknights/shared/sim"
	"github.com/automoto/dagknights/systems/factory"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// ViewSource is anything that can hand out the latest frame view, usually a
// rollback session.
type ViewSource interface {
	View() sim.FrameView
}

type viewMirror struct {
	source  ViewSource
	local   map[int]bool
	players map[int]donburi.Entity
	bullets map[uint32]donburi.Entity
	walls   []sim.Wall
	wallIDs []donburi.Entity
	match   donburi.Entity
	started bool
	round   netconfig.RoundState
}

// NewViewMirror returns an ECS system that copies the source's latest view
// into the donburi world each update. Players are keyed by handle and
// bullets by ID, so entities survive between frames while their data
// changes. The simulation never reads these entities.
func NewViewMirror(source ViewSource, localHandles ...int) func(*ecs.ECS) {
	m := &viewMirror{
		source:  source,
		local:   make(map[int]bool, len(localHandles)),
		players: make(map[int]donburi.Entity),
		bullets: make(map[uint32]donburi.Entity),
	}
	for _, h := range localHandles {
		m.local[h] = true
	}
	return func(e *ecs.ECS) {
		m.apply(e, m.source.View())
	}
}

func (m *viewMirror) apply(e *ecs.ECS, v sim.FrameView) {
	m.applyMatch(e, v)
	m.applyWalls(e, v.Walls)

	for _, p := range v.Players {
		entity, ok := m.players[p.Handle]
		if !ok || !e.World.Valid(entity) {
			m.players[p.Handle] = factory.CreatePlayer(e, p, m.local[p.Handle]).Entity()
			continue
		}
		entry := e.World.Entry(entity)
		player := components.Player.Get(entry)
		player.Alive = p.Alive
		transform := components.Transform.Get(entry)
		transform.Position = p.Position
		transform.Rotation = p.Rotation
	}

	seen := make(map[uint32]bool, len(v.Bullets))
	for _, b := range v.Bullets {
		seen[b.ID] = true
		entity, ok := m.bullets[b.ID]
		if !ok || !e.World.Valid(entity) {
			m.bullets[b.ID] = factory.CreateBullet(e, b).Entity()
			continue
		}
		transform := components.Transform.Get(e.World.Entry(entity))
		transform.Position = b.Position
		transform.Rotation = b.Rotation
	}
	for id, entity := range m.bullets {
		if seen[id] {
			continue
		}
		if e.World.Valid(entity) {
			e.World.Remove(entity)
		}
		delete(m.bullets, id)
	}
}

func (m *viewMirror) applyMatch(e *ecs.ECS, v sim.FrameView) {
	if !m.started || !e.World.Valid(m.match) {
		m.match = factory.CreateMatch(e).Entity()
	}
	entry := e.World.Entry(m.match)

	score := components.Score.Get(entry)
	score.Scores = v.Scores
	score.MatchOver = v.MatchOver
	score.Winner = v.Winner

	round := components.Round.Get(entry)
	switch {
	case !m.started:
		round.Number = 1
	case m.round == netconfig.RoundEnd && v.Round == netconfig.RoundInProgress:
		round.Number++
	}
	round.Frame = v.Frame
	round.State = v.Round
	m.round = v.Round
	m.started = true
}

// applyWalls rebuilds the wall entities when the layout changes, which is
// once per round.
func (m *viewMirror) applyWalls(e *ecs.ECS, walls []sim.Wall) {
	if slices.Equal(m.walls, walls) && len(m.wallIDs) == len(walls) {
		return
	}
	for _, entity := range m.wallIDs {
		if e.World.Valid(entity) {
			e.World.Remove(entity)
		}
	}
	m.wallIDs = m.wallIDs[:0]
	for _, w := range walls {
		m.wallIDs = append(m.wallIDs, factory.CreateWall(e, w).Entity())
	}
	m.walls = append(m.walls[:0], walls...)
}
