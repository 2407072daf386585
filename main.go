package main

import (
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/automoto/dagknights/config"
	"github.com/automoto/dagknights/network"
	"github.com/automoto/dagknights/rollback"
	"github.com/automoto/dagknights/scenes"
	"github.com/automoto/dagknights/shared/netconfig"
	"github.com/automoto/dagknights/shared/sim"
	"github.com/automoto/dagknights/systems"
	"github.com/yohamta/donburi"
)

// Game runs one scene at a time.
type Game struct {
	scene scenes.Scene
}

// ChangeScene switches to a new scene
func (g *Game) ChangeScene(scene interface{}) {
	g.scene = scene.(scenes.Scene)
}

func (g *Game) Update() error {
	return g.scene.Update()
}

var botDifficulties = map[string]config.BotDifficulty{
	"easy":   config.BotDifficultyEasy,
	"normal": config.BotDifficultyNormal,
	"hard":   config.BotDifficultyHard,
}

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Fatalf("Failed to load environment: %v", err)
	}

	// Initialize persistence and load saved settings
	persistence, err := systems.OpenPersistence()
	if err != nil {
		log.Printf("Warning: Could not initialize persistence: %v", err)
	}
	if persistence != nil {
		if saved, err := persistence.LoadSettings(); err == nil && saved != nil {
			systems.ApplySavedSettings(saved)
		}
	}

	master := flag.String("master", "", "Master server host:port for matchmaking (empty = join -relay directly)")
	room := flag.String("room", config.Net.Room, "Room to join")
	relay := flag.String("relay", config.Net.RelayAddr, "Relay host:port")
	name := flag.String("name", config.Net.PlayerName, "Player name")
	inputDelay := flag.Int("input-delay", config.Session.InputDelay, "Frames of local input delay")
	frames := flag.Int("frames", 0, "Stop after this many ticks (0 = play until the match ends)")
	syncTest := flag.Bool("synctest", false, "Run a local sync test instead of a match")
	local := flag.Bool("local", false, "Play both handles in-process over a lossy loopback link")
	bot := flag.String("bot", "normal", "Bot difficulty driving local input: easy, normal or hard")
	seed := flag.Uint64("seed", 1, "Session seed for -synctest and -local")
	flag.Parse()

	config.Net.Room = *room
	config.Net.PlayerName = *name
	config.Session.InputDelay = *inputDelay

	difficulty, ok := botDifficulties[strings.ToLower(*bot)]
	if !ok {
		log.Fatalf("unknown bot difficulty %q", *bot)
	}
	inputs := func(handle int, world donburi.World) scenes.InputSource {
		return systems.NewBotInput(world, handle, difficulty, uint64(time.Now().UnixNano())+uint64(handle))
	}

	switch {
	case *syncTest:
		runSyncTest(*seed, *frames)
	case *local:
		runLocal(*seed, *frames, inputs, persistence)
	default:
		connect := scenes.NetworkConnector(scenes.ConnectOptions{
			MasterAddr:  *master,
			RelayAddr:   *relay,
			Room:        *room,
			PlayerName:  *name,
			JoinTimeout: config.Net.JoinTimeout,
			Inputs:      inputs,
		})
		g := &Game{}
		g.scene = scenes.NewMatchmakingScene(g, connect, persistence)
		run(*frames, g)
	}

	if persistence != nil {
		if err := persistence.SaveSettings(systems.CurrentSettings()); err != nil {
			log.Printf("Warning: Could not save settings: %v", err)
		}
	}
}

// run ticks every game at the simulation rate until all of them quit, a
// signal arrives or the frame limit is hit.
func run(frames int, games ...*Game) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	ticker := time.NewTicker(time.Second / netconfig.FPS)
	defer ticker.Stop()

	done := make([]bool, len(games))
	for tick := 0; frames == 0 || tick < frames; tick++ {
		select {
		case <-sigChan:
			log.Println("Interrupted")
			return
		case <-ticker.C:
		}

		remaining := 0
		for i, g := range games {
			if done[i] {
				continue
			}
			if err := g.Update(); err != nil {
				if !errors.Is(err, scenes.ErrQuit) {
					log.Printf("Scene error: %v", err)
				}
				done[i] = true
				continue
			}
			remaining++
		}
		if remaining == 0 {
			return
		}
	}
	log.Printf("Stopped after %d ticks", frames)
}

func runLocal(seed uint64, frames int, inputs scenes.InputFactory, persistence *systems.Persistence) {
	faults := network.FaultConfig{Seed: seed, MinDelay: 1, MaxDelay: 4, DropRate: 0.05, DuplicateRate: 0.02}
	matches, err := scenes.LocalMatches(seed, faults, inputs)
	if err != nil {
		log.Fatalf("Failed to start local match: %v", err)
	}
	games := make([]*Game, 0, len(matches))
	for _, m := range matches {
		g := &Game{}
		g.scene = scenes.NewInGameScene(g, m, persistence)
		games = append(games, g)
	}
	run(frames, games...)
}

func runSyncTest(seed uint64, frames int) {
	if frames == 0 {
		frames = 10 * netconfig.FPS
	}
	cfg := scenes.SessionConfig()
	cfg.Logger = log.New(io.Discard, "", 0)
	session, err := rollback.NewSyncTestSession(cfg, sim.NewWorld(seed))
	if err != nil {
		log.Fatalf("Failed to start sync test: %v", err)
	}

	script := []*systems.ScriptedInput{
		systems.NewScriptedInput(
			systems.ScriptStep{Bits: netconfig.InputRight | netconfig.InputFire, Frames: 40},
			systems.ScriptStep{Bits: netconfig.InputUp, Frames: 25},
			systems.ScriptStep{Bits: netconfig.InputLeft | netconfig.InputDown | netconfig.InputFire, Frames: 30},
		),
		systems.NewScriptedInput(
			systems.ScriptStep{Bits: netconfig.InputLeft | netconfig.InputFire, Frames: 35},
			systems.ScriptStep{Bits: netconfig.InputDown, Frames: 20},
			systems.ScriptStep{Bits: netconfig.InputUp | netconfig.InputRight | netconfig.InputFire, Frames: 45},
		),
	}
	inputs := make([]uint8, len(script))
	for f := 0; f < frames; f++ {
		for h, s := range script {
			inputs[h] = s.Next()
		}
		if err := session.AdvanceFrame(inputs); err != nil {
			log.Fatalf("Sync test failed: %v", err)
		}
	}
	v := session.View()
	log.Printf("Sync test passed: %d frames, %d resimulated, scores %v, checksum %X",
		frames, session.CheckedFrames(), v.Scores, session.Checksum())
}
