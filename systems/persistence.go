package systems

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	cfg "github.com/automoto/dagknights/config"
	"github.com/quasilyte/gdata"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	settingsKey    = "settings"
	desyncCountKey = "desync_count"
)

// SavedSettings represents the settings data stored on disk
type SavedSettings struct {
	PlayerName    string `json:"playerName"`
	InputDelay    int    `json:"inputDelay"`
	LastRoom      string `json:"lastRoom"`
	BotDifficulty int    `json:"botDifficulty"`
}

// DesyncReport is what a peer keeps after a checksum mismatch. Snapshot is
// the msgpack encoding of the local world at the moment the mismatch was
// noticed, which is a few frames past Frame.
type DesyncReport struct {
	Seq            uint64    `msgpack:"seq"`
	Time           time.Time `msgpack:"time"`
	Room           string    `msgpack:"room"`
	Handle         int       `msgpack:"handle"`
	Frame          int       `msgpack:"frame"`
	LocalChecksum  uint64    `msgpack:"local"`
	RemoteChecksum uint64    `msgpack:"remote"`
	Snapshot       []byte    `msgpack:"snapshot"`
}

// ItemStore is the subset of gdata.Manager persistence needs.
type ItemStore interface {
	LoadItem(itemKey string) ([]byte, error)
	SaveItem(itemKey string, data []byte) error
}

// Persistence stores settings and desync reports between runs.
type Persistence struct {
	store      ItemStore
	maxReports int
}

// OpenPersistence opens the gdata store for the configured app.
func OpenPersistence() (*Persistence, error) {
	m, err := gdata.Open(gdata.Config{
		AppName: cfg.Persistence.AppName,
	})
	if err != nil {
		log.Printf("[persistence] could not initialize: %v", err)
		return nil, err
	}
	return NewPersistence(m), nil
}

func NewPersistence(store ItemStore) *Persistence {
	limit := cfg.Persistence.MaxDesyncReports
	if limit <= 0 {
		limit = 1
	}
	return &Persistence{store: store, maxReports: limit}
}

// LoadSettings loads settings from disk. Missing settings yield nil.
func (p *Persistence) LoadSettings() (*SavedSettings, error) {
	data, err := p.store.LoadItem(settingsKey)
	if err != nil {
		log.Printf("[persistence] could not load settings: %v", err)
		return nil, nil
	}
	if len(data) == 0 {
		// No saved settings yet, use defaults
		return nil, nil
	}

	var settings SavedSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		log.Printf("[persistence] could not parse saved settings: %v", err)
		return nil, err
	}
	return &settings, nil
}

func (p *Persistence) SaveSettings(s *SavedSettings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("serialize settings: %w", err)
	}
	if err := p.store.SaveItem(settingsKey, data); err != nil {
		log.Printf("[persistence] could not save settings: %v", err)
		return err
	}
	return nil
}

// ApplySavedSettings copies saved values over the config defaults.
func ApplySavedSettings(saved *SavedSettings) {
	if saved == nil {
		return
	}
	if saved.PlayerName != "" {
		cfg.Net.PlayerName = saved.PlayerName
	}
	if saved.InputDelay >= 0 {
		cfg.Session.InputDelay = saved.InputDelay
	}
	if saved.LastRoom != "" {
		cfg.Net.Room = saved.LastRoom
	}
}

// CurrentSettings captures the config values worth keeping.
func CurrentSettings() *SavedSettings {
	return &SavedSettings{
		PlayerName: cfg.Net.PlayerName,
		InputDelay: cfg.Session.InputDelay,
		LastRoom:   cfg.Net.Room,
	}
}

// SaveDesyncReport appends r to the report ring, overwriting the oldest
// entry once MaxDesyncReports are stored.
func (p *Persistence) SaveDesyncReport(r DesyncReport) error {
	seq, err := p.desyncCount()
	if err != nil {
		return err
	}
	r.Seq = seq
	data, err := msgpack.Marshal(&r)
	if err != nil {
		return fmt.Errorf("serialize desync report: %w", err)
	}
	if err := p.store.SaveItem(desyncKey(seq%uint64(p.maxReports)), data); err != nil {
		return fmt.Errorf("save desync report: %w", err)
	}
	count, err := msgpack.Marshal(seq + 1)
	if err != nil {
		return err
	}
	return p.store.SaveItem(desyncCountKey, count)
}

// DesyncReports returns the stored reports, oldest first.
func (p *Persistence) DesyncReports() ([]DesyncReport, error) {
	var reports []DesyncReport
	for i := 0; i < p.maxReports; i++ {
		data, err := p.store.LoadItem(desyncKey(uint64(i)))
		if err != nil || len(data) == 0 {
			continue
		}
		var r DesyncReport
		if err := msgpack.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("parse desync report %d: %w", i, err)
		}
		reports = append(reports, r)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Seq < reports[j].Seq })
	return reports, nil
}

func (p *Persistence) desyncCount() (uint64, error) {
	data, err := p.store.LoadItem(desyncCountKey)
	if err != nil || len(data) == 0 {
		return 0, nil
	}
	var n uint64
	if err := msgpack.Unmarshal(data, &n); err != nil {
		return 0, fmt.Errorf("parse desync count: %w", err)
	}
	return n, nil
}

func desyncKey(slot uint64) string {
	return fmt.Sprintf("desync_%d", slot)
}
