package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type seats struct{ players, max int }

func (s seats) PlayerCount() int { return s.players }
func (s seats) MaxPlayers() int  { return s.max }

type fakeMaster struct {
	mu         sync.Mutex
	registered []regRequest
	beats      []heartbeatRequest
	known      bool
}

func (m *fakeMaster) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /servers/register", func(w http.ResponseWriter, r *http.Request) {
		var req regRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		m.mu.Lock()
		m.registered = append(m.registered, req)
		m.known = true
		m.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(regResponse{ID: "relay-1"})
	})
	mux.HandleFunc("POST /servers/heartbeat", func(w http.ResponseWriter, r *http.Request) {
		var req heartbeatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		m.mu.Lock()
		defer m.mu.Unlock()
		m.beats = append(m.beats, req)
		if !m.known {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func TestRegistrationFlow(t *testing.T) {
	master := &fakeMaster{}
	srv := httptest.NewServer(master.handler())
	defer srv.Close()

	reg := NewRegistration(srv.URL, RelayInfo{Name: "eu-1", Address: "relay:7373", Version: "v", Region: "eu"}, seats{players: 2, max: 8}, 0)
	if err := reg.register(); err != nil {
		t.Fatal(err)
	}
	if reg.ID() != "relay-1" {
		t.Fatalf("id = %q", reg.ID())
	}
	got := master.registered[0]
	if got.Name != "eu-1" || got.Address != "relay:7373" || got.Players != 2 || got.MaxPlayers != 8 || got.Region != "eu" {
		t.Fatalf("registered %+v", got)
	}

	if err := reg.sendHeartbeat(); err != nil {
		t.Fatal(err)
	}
	if len(master.beats) != 1 || master.beats[0].ID != "relay-1" {
		t.Fatalf("beats = %+v", master.beats)
	}

	// The master forgets us and the next heartbeat re-registers.
	master.mu.Lock()
	master.known = false
	master.mu.Unlock()
	if err := reg.sendHeartbeat(); err != nil {
		t.Fatal(err)
	}
	if len(master.registered) != 2 {
		t.Fatalf("registrations = %d", len(master.registered))
	}
	reg.Stop()
	reg.Stop()
}
