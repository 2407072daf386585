package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/automoto/dagknights/network"
	"github.com/automoto/dagknights/shared/messages"
	"github.com/automoto/dagknights/shared/protocol"
)

func newTestMaster(t *testing.T) (*Registry, *Lobby, *httptest.Server) {
	t.Helper()
	reg := NewRegistry(time.Minute)
	lobby := NewLobby(reg, 5*time.Second, "fallback:7373")
	srv := httptest.NewServer(NewMux(reg, lobby))
	t.Cleanup(srv.Close)
	return reg, lobby, srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRegisterHeartbeatList(t *testing.T) {
	_, _, srv := newTestMaster(t)

	resp := postJSON(t, srv.URL+"/servers/register", registerRequest{Name: "r1", Address: "a:1", MaxPlayers: 4, Version: protocol.Version})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status %d", resp.StatusCode)
	}
	var reg registerResponse
	if err := json.NewDecoder(resp.Body).Decode(&reg); err != nil || reg.ID == "" {
		t.Fatalf("register response %+v, %v", reg, err)
	}

	if resp := postJSON(t, srv.URL+"/servers/heartbeat", heartbeatRequest{ID: reg.ID, Players: 2}); resp.StatusCode != http.StatusOK {
		t.Fatalf("heartbeat status %d", resp.StatusCode)
	}
	if resp := postJSON(t, srv.URL+"/servers/heartbeat", heartbeatRequest{ID: "nope"}); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown heartbeat status %d", resp.StatusCode)
	}
	if resp := postJSON(t, srv.URL+"/servers/register", registerRequest{Name: "no address"}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad register status %d", resp.StatusCode)
	}

	list, err := http.Get(srv.URL + "/servers")
	if err != nil {
		t.Fatal(err)
	}
	defer list.Body.Close()
	var servers []ServerInfo
	if err := json.NewDecoder(list.Body).Decode(&servers); err != nil {
		t.Fatal(err)
	}
	if len(servers) != 1 || servers[0].Players != 2 || servers[0].Name != "r1" {
		t.Fatalf("servers = %+v", servers)
	}
}

func TestRegistryLeastLoadedAndExpire(t *testing.T) {
	now := time.Unix(1000, 0)
	reg := NewRegistry(30 * time.Second)
	reg.now = func() time.Time { return now }

	busy := reg.Register(ServerInfo{Name: "busy", Address: "b:1", Players: 3, MaxPlayers: 8, Version: protocol.Version})
	reg.Register(ServerInfo{Name: "full", Address: "f:1", Players: 8, MaxPlayers: 8, Version: protocol.Version})
	reg.Register(ServerInfo{Name: "old", Address: "o:1", Players: 0, Version: "dagknights/0"})
	quiet := reg.Register(ServerInfo{Name: "quiet", Address: "q:1", Players: 1, MaxPlayers: 8, Version: protocol.Version})

	best, ok := reg.LeastLoaded(protocol.Version)
	if !ok || best.ID != quiet {
		t.Fatalf("least loaded = %+v", best)
	}

	now = now.Add(20 * time.Second)
	reg.Heartbeat(busy, 3)
	now = now.Add(15 * time.Second)
	if n := reg.Expire(); n != 3 {
		t.Fatalf("expired %d", n)
	}
	if best, ok := reg.LeastLoaded(protocol.Version); !ok || best.ID != busy {
		t.Fatalf("after expiry = %+v", best)
	}
}

func TestLobbyMatchesPeers(t *testing.T) {
	reg, _, srv := newTestMaster(t)
	reg.Register(ServerInfo{Name: "r", Address: "relay:7373", MaxPlayers: 8, Version: protocol.Version})
	addr := strings.TrimPrefix(srv.URL, "http://")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	matches := make([]messages.LobbyMatch, 2)
	errs := make([]error, 2)
	for i := range matches {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			matches[i], errs[i] = network.FindMatch(ctx, addr, "duel", 2)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("peer %d: %v", i, err)
		}
	}
	a, b := matches[0], matches[1]
	if a.Room != b.Room || a.RelayAddress != "relay:7373" || a.Index == b.Index {
		t.Fatalf("matches disagree: %+v %+v", a, b)
	}
	if len(a.PeerIDs) != 2 || a.PeerIDs[0] != b.PeerIDs[0] || a.PeerIDs[1] != b.PeerIDs[1] {
		t.Fatalf("peer lists differ: %v %v", a.PeerIDs, b.PeerIDs)
	}
	seedA, err := protocol.SeedFromStrings(a.PeerIDs)
	if err != nil {
		t.Fatal(err)
	}
	seedB, _ := protocol.SeedFromStrings(b.PeerIDs)
	if seedA != seedB {
		t.Fatal("peers derive different seeds")
	}
}

func TestLobbyRejectsBadSize(t *testing.T) {
	_, _, srv := newTestMaster(t)
	resp, err := http.Get(srv.URL + "/room/duel?next=1")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestLobbyForgetsLeavers(t *testing.T) {
	_, lobby, srv := newTestMaster(t)
	addr := strings.TrimPrefix(srv.URL, "http://")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := network.FindMatch(ctx, addr, "empty", 2)
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for lobby.Waiting() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; err == nil {
		t.Fatal("cancelled wait returned a match")
	}
	deadline = time.Now().Add(2 * time.Second)
	for lobby.Waiting() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := lobby.Waiting(); n != 0 {
		t.Fatalf("%d peers still waiting", n)
	}
}

func TestHealth(t *testing.T) {
	_, _, srv := newTestMaster(t)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var h healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil || h.Status != "ok" {
		t.Fatalf("health = %+v, %v", h, err)
	}
}
