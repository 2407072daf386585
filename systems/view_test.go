package systems

import (
	"testing"

	"github.com/automoto/dagknights/components"
	"github.com/automoto/dagknights/rollback"
	"github.com/automoto/dagknights/shared/gamemath"
	"github.com/automoto/dagknights/shared/netconfig"
	"github.com/automoto/dagknights/shared/sim"
	"github.com/automoto/dagknights/tags"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

type fixedView struct{ view sim.FrameView }

func (f *fixedView) View() sim.FrameView { return f.view }

func countTag(w donburi.World, tag interface {
	Each(donburi.World, func(*donburi.Entry))
}) int {
	n := 0
	tag.Each(w, func(*donburi.Entry) { n++ })
	return n
}

func bulletIDs(w donburi.World) map[uint32]bool {
	ids := make(map[uint32]bool)
	tags.Bullet.Each(w, func(entry *donburi.Entry) {
		ids[components.Bullet.Get(entry).ID] = true
	})
	return ids
}

func TestViewMirrorCreatesEntities(t *testing.T) {
	world := sim.NewWorld(9)
	src := &fixedView{view: world.View()}
	e := ecs.NewECS(donburi.NewWorld())
	e.AddSystem(NewViewMirror(src, 1))
	e.Update()

	if n := countTag(e.World, tags.Player); n != netconfig.NumPlayers {
		t.Fatalf("players = %d", n)
	}
	if n := countTag(e.World, tags.Wall); n != len(world.Walls) {
		t.Fatalf("walls = %d, want %d", n, len(world.Walls))
	}

	tags.Player.Each(e.World, func(entry *donburi.Entry) {
		p := components.Player.Get(entry)
		if p.Local != (p.Handle == 1) {
			t.Errorf("handle %d local = %v", p.Handle, p.Local)
		}
		want := world.Players[p.Handle].Position
		if got := components.Transform.Get(entry).Position; got != want {
			t.Errorf("handle %d at %v, want %v", p.Handle, got, want)
		}
	})

	match, ok := components.Round.First(e.World)
	if !ok {
		t.Fatal("no match singleton")
	}
	if r := components.Round.Get(match); r.Number != 1 || r.State != netconfig.RoundInProgress {
		t.Fatalf("round = %+v", r)
	}
}

func TestViewMirrorTracksBulletsByID(t *testing.T) {
	src := &fixedView{view: sim.FrameView{
		Players: []sim.PlayerView{{Handle: 0, Alive: true}, {Handle: 1, Alive: true}},
		Bullets: []sim.BulletView{{ID: 1}, {ID: 2, Position: gamemath.Vec3{X: 1}}},
		Winner:  sim.NoWinner,
	}}
	e := ecs.NewECS(donburi.NewWorld())
	e.AddSystem(NewViewMirror(src))
	e.Update()

	if ids := bulletIDs(e.World); len(ids) != 2 || !ids[1] || !ids[2] {
		t.Fatalf("bullets = %v", ids)
	}

	src.view.Bullets = []sim.BulletView{{ID: 2, Position: gamemath.Vec3{X: 2}}, {ID: 3}}
	e.Update()

	ids := bulletIDs(e.World)
	if len(ids) != 2 || !ids[2] || !ids[3] {
		t.Fatalf("bullets after update = %v", ids)
	}
	tags.Bullet.Each(e.World, func(entry *donburi.Entry) {
		if components.Bullet.Get(entry).ID == 2 {
			if x := components.Transform.Get(entry).Position.X; x != 2 {
				t.Errorf("bullet 2 x = %v", x)
			}
		}
	})
}

func TestViewMirrorCountsRounds(t *testing.T) {
	src := &fixedView{view: sim.FrameView{Round: netconfig.RoundInProgress, Winner: sim.NoWinner}}
	e := ecs.NewECS(donburi.NewWorld())
	e.AddSystem(NewViewMirror(src))

	for _, state := range []netconfig.RoundState{
		netconfig.RoundInProgress, netconfig.RoundEnd, netconfig.RoundEnd,
		netconfig.RoundInProgress, netconfig.RoundEnd, netconfig.RoundInProgress,
	} {
		src.view.Round = state
		e.Update()
	}
	entry, _ := components.Round.First(e.World)
	if n := components.Round.Get(entry).Number; n != 3 {
		t.Fatalf("round number = %d, want 3", n)
	}
}

func TestViewMirrorRebuildsWalls(t *testing.T) {
	src := &fixedView{view: sim.FrameView{Walls: sim.GenerateMap(1), Winner: sim.NoWinner}}
	e := ecs.NewECS(donburi.NewWorld())
	e.AddSystem(NewViewMirror(src))
	e.Update()
	e.Update()
	if n := countTag(e.World, tags.Wall); n != len(src.view.Walls) {
		t.Fatalf("walls = %d", n)
	}

	src.view.Walls = src.view.Walls[:3]
	e.Update()
	if n := countTag(e.World, tags.Wall); n != 3 {
		t.Fatalf("walls after new round = %d", n)
	}
}

type fixedStats struct{}

func (fixedStats) Stats() rollback.Stats {
	return rollback.Stats{Frame: 40, ConfirmedFrame: 36, Rollbacks: 2, FrameAdvantage: 4}
}

func (fixedStats) State() rollback.State { return rollback.StateRunning }

func TestNetStatus(t *testing.T) {
	e := ecs.NewECS(donburi.NewWorld())
	e.AddSystem(NewNetStatusSystem(fixedStats{}))
	e.Update()

	ApplyNetEvents(e, []rollback.Event{
		{Kind: rollback.EventNetworkInterrupted, Handle: 1},
		{Kind: rollback.EventDisconnected, Handle: 1},
		{Kind: rollback.EventDisconnected, Handle: 1},
	})

	status := GetOrCreateNetStatus(e)
	if status.Frame != 40 || status.ConfirmedFrame != 36 || status.Rollbacks != 2 || status.FrameAdvantage != 4 {
		t.Fatalf("status = %+v", status)
	}
	if !status.Interrupted || len(status.Disconnected) != 1 {
		t.Fatalf("events not applied: %+v", status)
	}
	ApplyNetEvents(e, []rollback.Event{{Kind: rollback.EventNetworkResumed, Handle: 1}})
	if GetOrCreateNetStatus(e).Interrupted {
		t.Fatal("resume not applied")
	}
}
