package config

import "time"

// SessionConfig tunes the rollback session of a peer.
type SessionConfig struct {
	InputDelay    int // frames between reading an input and simulating it
	MaxPrediction int // frames the session may run ahead of confirmed input
	// DesyncInterval is the checksum exchange period in frames; 0 disables it.
	DesyncInterval int
	CheckDistance  int // frames a sync test rolls back every tick

	InterruptTimeout  time.Duration
	DisconnectTimeout time.Duration
	WaitForReconnect  bool // false aborts the match on disconnect
	WaitLimit         time.Duration
}

// NetConfig holds where a peer finds the rest of the system.
type NetConfig struct {
	MasterAddr  string
	RelayAddr   string // used directly when no master is set
	Room        string
	PlayerName  string
	JoinTimeout time.Duration
}

// RelayConfig configures the input relay server.
type RelayConfig struct {
	Port              uint
	Name              string
	Region            string
	PublicAddr        string
	TickRate          int
	MaxRooms          int
	RoomIdleTimeout   time.Duration
	HeartbeatInterval time.Duration
}

// MasterConfig configures the discovery and lobby service.
type MasterConfig struct {
	Port          int
	ServerTTL     time.Duration
	SweepInterval time.Duration
	LobbyTimeout  time.Duration
}

// PersistenceConfig controls what a peer stores between runs.
type PersistenceConfig struct {
	AppName           string
	MaxDesyncReports  int
	DefaultPlayerName string
}

// DebugConfig holds debug toggles.
type DebugConfig struct {
	LogEvents bool
	LogStats  time.Duration // 0 disables periodic stats lines
}

var Session SessionConfig
var Net NetConfig
var Relay RelayConfig
var Master MasterConfig
var Persistence PersistenceConfig
var Debug DebugConfig

func init() {
	Session = SessionConfig{
		InputDelay:        2,
		MaxPrediction:     8,
		DesyncInterval:    1,
		CheckDistance:     2,
		InterruptTimeout:  500 * time.Millisecond,
		DisconnectTimeout: 5 * time.Second,
		WaitForReconnect:  false,
		WaitLimit:         30 * time.Second,
	}

	Net = NetConfig{
		MasterAddr:  "localhost:8080",
		RelayAddr:   "localhost:7373",
		Room:        "lobby",
		PlayerName:  "knight",
		JoinTimeout: 30 * time.Second,
	}

	Relay = RelayConfig{
		Port:              7373,
		Name:              "dagknights relay",
		Region:            "local",
		TickRate:          60,
		MaxRooms:          64,
		RoomIdleTimeout:   time.Minute,
		HeartbeatInterval: 10 * time.Second,
	}

	Master = MasterConfig{
		Port:          8080,
		ServerTTL:     30 * time.Second,
		SweepInterval: 10 * time.Second,
		LobbyTimeout:  2 * time.Minute,
	}

	Persistence = PersistenceConfig{
		AppName:           "dagknights",
		MaxDesyncReports:  16,
		DefaultPlayerName: "knight",
	}

	Debug = DebugConfig{
		LogEvents: true,
		LogStats:  5 * time.Second,
	}
}
