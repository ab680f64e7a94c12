package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server  ServerSettings  `json:"server"`
	Catalog CatalogSettings `json:"catalog"`
	Cache   CacheSettings   `json:"cache"`
	Storage StorageSettings `json:"storage"`
	Gate    GateSettings    `json:"gate"`
	Player  PlayerSettings  `json:"player"`
	Log     LogConfig       `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// CatalogSettings configures the TMDB-backed catalog source.
type CatalogSettings struct {
	TMDBAPIKey string `json:"tmdbApiKey"`
	Language   string `json:"language"`
}

type CacheSettings struct {
	Directory string `json:"directory"`
	TTLHours  int    `json:"ttlHours"`
}

// StorageSettings names the directory for persisted user data (favorites).
type StorageSettings struct {
	Directory string `json:"directory"`
}

// GateSettings holds the bcrypt hash of the access PIN. An empty hash
// disables the gate.
type GateSettings struct {
	PinHash string `json:"pinHash"`
}

// PlayerSettings tunes the embed fallback sequencer.
type PlayerSettings struct {
	LoadTimeoutSeconds int `json:"loadTimeoutSeconds"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server:  ServerSettings{Host: "0.0.0.0", Port: 7878},
		Catalog: CatalogSettings{TMDBAPIKey: "", Language: "en-US"},
		Cache:   CacheSettings{Directory: "cache", TTLHours: 24},
		Storage: StorageSettings{Directory: "data"},
		Gate:    GateSettings{PinHash: ""},
		Player:  PlayerSettings{LoadTimeoutSeconds: 10},
		Log: LogConfig{
			File:       "cache/logs/backend.log",
			Level:      "info",
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if strings.TrimSpace(dir) == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		// create with defaults
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	f, err := os.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	s := DefaultSettings()
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return Settings{}, err
	}

	if s.Catalog.Language == "" {
		s.Catalog.Language = "en-US"
	}
	if s.Cache.TTLHours <= 0 {
		s.Cache.TTLHours = 24
	}
	if s.Player.LoadTimeoutSeconds <= 0 {
		s.Player.LoadTimeoutSeconds = 10
	}

	return s, nil
}

func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}
