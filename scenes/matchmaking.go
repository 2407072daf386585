package scenes

import (
	"context"
	"fmt"
	"log"

	"github.com/automoto/dagknights/shared/netconfig"
	"github.com/automoto/dagknights/systems"
)

// Connector finds opponents and returns a running match.
type Connector func(ctx context.Context) (*Match, error)

type connectResult struct {
	match *Match
	err   error
}

// MatchmakingScene runs the connector in the background and moves to the
// match once it returns.
type MatchmakingScene struct {
	sceneChanger SceneChanger
	persistence  *systems.Persistence
	ctx          context.Context
	cancel       context.CancelFunc
	connect      Connector
	started      bool
	done         chan connectResult
}

func NewMatchmakingScene(sc SceneChanger, connect Connector, persistence *systems.Persistence) *MatchmakingScene {
	ctx, cancel := context.WithCancel(context.Background())
	return &MatchmakingScene{
		sceneChanger: sc,
		persistence:  persistence,
		ctx:          ctx,
		cancel:       cancel,
		connect:      connect,
		done:         make(chan connectResult, 1),
	}
}

func (ms *MatchmakingScene) Phase() netconfig.GamePhase { return netconfig.PhaseMatchmaking }

func (ms *MatchmakingScene) Update() error {
	if !ms.started {
		ms.started = true
		log.Println("[scene] looking for a match")
		go func() {
			match, err := ms.connect(ms.ctx)
			ms.done <- connectResult{match: match, err: err}
		}()
	}

	select {
	case res := <-ms.done:
		if res.err != nil {
			log.Printf("[scene] matchmaking failed: %v", res.err)
			ms.sceneChanger.ChangeScene(NewGameEndScene(Result{Winner: -1, Err: fmt.Errorf("matchmaking: %w", res.err)}))
			return nil
		}
		log.Printf("[scene] match found in room %q, local players %v", res.match.Room, res.match.LocalHandles)
		ms.sceneChanger.ChangeScene(NewInGameScene(ms.sceneChanger, res.match, ms.persistence))
	default:
	}
	return nil
}

// Cancel aborts a connector that is still running.
func (ms *MatchmakingScene) Cancel() { ms.cancel() }
