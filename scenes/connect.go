package scenes

import (
	"context"
	"fmt"
	"log"
	"time"

	cfg "github.com/automoto/dagknights/config"
	"github.com/automoto/dagknights/network"
	"github.com/automoto/dagknights/rollback"
	"github.com/automoto/dagknights/shared/messages"
	"github.com/automoto/dagknights/shared/netconfig"
	"github.com/automoto/dagknights/shared/protocol"
	"github.com/automoto/dagknights/shared/sim"
)

// SessionConfig builds a rollback configuration from the global session
// settings.
func SessionConfig(local ...int) rollback.Config {
	c := rollback.DefaultConfig()
	c.LocalHandles = local
	c.InputDelay = cfg.Session.InputDelay
	c.MaxPrediction = cfg.Session.MaxPrediction
	c.DesyncInterval = cfg.Session.DesyncInterval
	c.CheckDistance = cfg.Session.CheckDistance
	c.InterruptTimeout = cfg.Session.InterruptTimeout
	c.DisconnectTimeout = cfg.Session.DisconnectTimeout
	c.WaitLimit = cfg.Session.WaitLimit
	c.DisconnectPolicy = rollback.PolicyAbort
	if cfg.Session.WaitForReconnect {
		c.DisconnectPolicy = rollback.PolicyWait
	}
	return c
}

// ConnectOptions says where NetworkConnector finds opponents.
type ConnectOptions struct {
	MasterAddr  string // empty joins RelayAddr directly
	RelayAddr   string
	Room        string
	PlayerName  string
	JoinTimeout time.Duration
	Inputs      InputFactory
}

// NetworkConnector matchmakes through the master lobby when one is set,
// joins the relay room and starts a session seeded from the peer IDs.
func NetworkConnector(opts ConnectOptions) Connector {
	return func(ctx context.Context) (*Match, error) {
		relay, room, peerID := opts.RelayAddr, opts.Room, ""
		if opts.MasterAddr != "" {
			lm, err := network.FindMatch(ctx, opts.MasterAddr, opts.Room, netconfig.NumPlayers)
			if err != nil {
				return nil, err
			}
			if lm.RelayAddress != "" {
				relay = lm.RelayAddress
			}
			room, peerID = lm.Room, lm.PeerIDs[lm.Index]
			log.Printf("[scene] lobby matched %d peers, relay %s", len(lm.PeerIDs), relay)
		}

		client := network.NewClient()
		client.Connect(relay, messages.JoinRequest{
			Version:    protocol.Version,
			PlayerName: opts.PlayerName,
			Room:       room,
			PeerID:     peerID,
		})

		joinCtx := ctx
		if opts.JoinTimeout > 0 {
			var cancel context.CancelFunc
			joinCtx, cancel = context.WithTimeout(ctx, opts.JoinTimeout)
			defer cancel()
		}
		if err := client.WaitJoined(joinCtx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("join relay %s: %w", relay, err)
		}
		if rate := client.TickRate(); rate != 0 && rate != netconfig.FPS {
			log.Printf("[scene] relay announces %d ticks/s, simulating at %d", rate, netconfig.FPS)
		}

		seed, err := protocol.SeedFromStrings(client.PeerIDs())
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		handle := client.Handle()
		session, err := rollback.NewSession(SessionConfig(handle), sim.NewWorld(seed), client)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return &Match{
			Session:      session,
			LocalHandles: []int{handle},
			Room:         room,
			Inputs:       opts.Inputs,
		}, nil
	}
}

// LocalMatches pairs two sessions over an in-memory link, one per handle.
func LocalMatches(seed uint64, faults network.FaultConfig, inputs InputFactory) ([netconfig.NumPlayers]*Match, error) {
	var matches [netconfig.NumPlayers]*Match
	a, b := network.NewLoopbackPair(faults, 0, 1)
	for h, link := range []network.Transport{a, b} {
		session, err := rollback.NewSession(SessionConfig(h), sim.NewWorld(seed), link)
		if err != nil {
			return matches, err
		}
		matches[h] = &Match{
			Session:      session,
			LocalHandles: []int{h},
			Room:         "local",
			Inputs:       inputs,
		}
	}
	return matches, nil
}
