package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/automoto/dagknights/config"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Fatalf("[master] load environment: %v", err)
	}

	port := flag.Int("port", config.Master.Port, "HTTP listen port")
	ttl := flag.Duration("ttl", config.Master.ServerTTL, "Relay TTL before expiry")
	lobbyTimeout := flag.Duration("lobby-timeout", config.Master.LobbyTimeout, "How long a peer may wait for opponents")
	fallback := flag.String("relay", config.Net.RelayAddr, "Relay offered when none has registered")
	flag.Parse()

	reg := NewRegistry(*ttl)
	go reg.Run(config.Master.SweepInterval)
	defer reg.Stop()

	lobby := NewLobby(reg, *lobbyTimeout, *fallback)

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("[master] starting on %s (TTL=%s)", addr, *ttl)
	if err := http.ListenAndServe(addr, NewMux(reg, lobby)); err != nil {
		log.Fatalf("[master] fatal: %v", err)
	}
}
