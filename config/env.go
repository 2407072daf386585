package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "DAGK_"

// LoadEnv reads the given .env files (".env" when none are given) into the
// process environment and applies every DAGK_ variable to the globals. A
// missing file is not an error; variables already set in the environment
// win over the file.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
		log.Printf("[config] loaded %s", p)
	}
	return ApplyEnv()
}

// ApplyEnv copies DAGK_ variables from the environment into the globals.
func ApplyEnv() error {
	var errs []error
	setInt := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	setUint := func(key string, dst *uint) {
		if v, ok := lookup(key); ok {
			n, err := strconv.ParseUint(v, 10, 16)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = uint(n)
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}
	setString := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	setInt("INPUT_DELAY", &Session.InputDelay)
	setInt("MAX_PREDICTION", &Session.MaxPrediction)
	setInt("DESYNC_INTERVAL", &Session.DesyncInterval)
	setInt("CHECK_DISTANCE", &Session.CheckDistance)
	setDuration("INTERRUPT_TIMEOUT", &Session.InterruptTimeout)
	setDuration("DISCONNECT_TIMEOUT", &Session.DisconnectTimeout)
	setBool("WAIT_FOR_RECONNECT", &Session.WaitForReconnect)
	setDuration("WAIT_LIMIT", &Session.WaitLimit)

	setString("MASTER_ADDR", &Net.MasterAddr)
	setString("RELAY_ADDR", &Net.RelayAddr)
	setString("ROOM", &Net.Room)
	setString("PLAYER_NAME", &Net.PlayerName)
	setDuration("JOIN_TIMEOUT", &Net.JoinTimeout)

	setUint("RELAY_PORT", &Relay.Port)
	setString("RELAY_NAME", &Relay.Name)
	setString("RELAY_REGION", &Relay.Region)
	setString("RELAY_PUBLIC_ADDR", &Relay.PublicAddr)
	setInt("RELAY_MAX_ROOMS", &Relay.MaxRooms)
	setDuration("RELAY_ROOM_IDLE", &Relay.RoomIdleTimeout)

	setInt("MASTER_PORT", &Master.Port)
	setDuration("MASTER_SERVER_TTL", &Master.ServerTTL)

	setBool("LOG_EVENTS", &Debug.LogEvents)
	setDuration("LOG_STATS", &Debug.LogStats)

	return errors.Join(errs...)
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
