package core

import (
	"log"
	"time"
)

// trafficLogInterval is how often the loop logs relay counters.
const trafficLogInterval = 30 * time.Second

type GameLoop struct {
	server   *Server
	tickRate int
	running  bool
	stopChan chan struct{}
	lastLog  time.Time
}

func NewGameLoop(server *Server, tickRate int) *GameLoop {
	if tickRate <= 0 {
		tickRate = 1
	}
	return &GameLoop{
		server:   server,
		tickRate: tickRate,
		stopChan: make(chan struct{}),
	}
}

func (g *GameLoop) Run() {
	g.running = true
	g.lastLog = time.Now()
	ticker := time.NewTicker(time.Second / time.Duration(g.tickRate))
	defer ticker.Stop()

	log.Printf("[relay] loop started at %d ticks/second", g.tickRate)

	for {
		select {
		case <-g.stopChan:
			g.running = false
			log.Println("[relay] loop stopped")
			return
		case now := <-ticker.C:
			g.tick(now)
		}
	}
}

func (g *GameLoop) Stop() {
	close(g.stopChan)
}

func (g *GameLoop) tick(now time.Time) {
	g.server.tick()

	if now.Sub(g.lastLog) >= trafficLogInterval {
		g.lastLog = now
		forwarded, dropped := g.server.rooms.Traffic()
		log.Printf("[relay] %d rooms, %d players, %d forwarded, %d dropped",
			g.server.rooms.RoomCount(), g.server.rooms.PlayerCount(), forwarded, dropped)
	}
}
