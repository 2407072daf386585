package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/automoto/dagknights/config"
	"github.com/automoto/dagknights/server/core"
	"github.com/automoto/dagknights/shared/netconfig"
	"github.com/automoto/dagknights/shared/protocol"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Fatalf("Failed to load environment: %v", err)
	}

	port := flag.Uint("port", config.Relay.Port, "Relay port")
	tickRate := flag.Int("tickrate", config.Relay.TickRate, "Simulation rate announced to peers")
	name := flag.String("name", config.Relay.Name, "Relay display name")
	region := flag.String("region", config.Relay.Region, "Region advertised to the master")
	maxRooms := flag.Int("maxrooms", config.Relay.MaxRooms, "Maximum concurrent rooms")
	master := flag.String("master", "", "Master server URL to register with (empty = standalone)")
	public := flag.String("public", config.Relay.PublicAddr, "Address peers dial, host:port")
	flag.Parse()

	server := core.NewServer(core.ServerConfig{
		Name:            *name,
		Players:         netconfig.NumPlayers,
		MaxRooms:        *maxRooms,
		TickRate:        *tickRate,
		RoomIdleTimeout: config.Relay.RoomIdleTimeout,
	})

	var reg *core.Registration
	if *master != "" {
		addr := *public
		if addr == "" {
			addr = fmt.Sprintf("localhost:%d", *port)
		}
		reg = core.NewRegistration(*master, core.RelayInfo{
			Name:    *name,
			Address: addr,
			Version: protocol.Version,
			Region:  *region,
		}, server, config.Relay.HeartbeatInterval)
		reg.Start()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down relay...")
		if reg != nil {
			reg.Stop()
		}
		server.Stop()
		os.Exit(0)
	}()

	log.Printf("Starting dagknights relay %q on port %d (tick rate: %d/s, version: %s)",
		*name, *port, *tickRate, protocol.Version)
	if err := server.Start(*port); err != nil {
		log.Fatalf("Relay error: %v", err)
	}
}
