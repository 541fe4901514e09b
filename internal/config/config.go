// internal/config/config.go
package conf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver string `json:"driver" yaml:"driver"` // sqlite | sqlite-pure | postgres | mysql
	DSN    string `json:"dsn" yaml:"dsn"`       // pusty dla sqlite => plik w katalogu aplikacji
}

type LogConfig struct {
	File    string `json:"file" yaml:"file"`
	Console bool   `json:"console" yaml:"console"`
	Level   string `json:"level" yaml:"level"`
}

// WatchConfig – tryb watch: inbox z archiwami od dostawców
type WatchConfig struct {
	InboxDir string `json:"inbox_dir" yaml:"inbox_dir"`
	PollSec  int    `json:"poll_sec" yaml:"poll_sec"`
	Schedule string `json:"schedule,omitempty" yaml:"schedule,omitempty"` // cron z sekundami; nadpisuje poll_sec
	Version  string `json:"version" yaml:"version"`
}

// Główny config aplikacji
type Config struct {
	Database       DatabaseConfig `json:"database" yaml:"database"`
	ReportDir      string         `json:"report_dir" yaml:"report_dir"`
	Encoding       string         `json:"encoding" yaml:"encoding"`
	ErrorThreshold float64        `json:"error_threshold" yaml:"error_threshold"`
	Log            LogConfig      `json:"log" yaml:"log"`
	Watch          WatchConfig    `json:"watch" yaml:"watch"`
}

// Default – konfiguracja zapisywana przy pierwszym uruchomieniu.
func Default(appDir string) *Config {
	return &Config{
		Database:       DatabaseConfig{Driver: "sqlite"},
		ReportDir:      filepath.Join(appDir, "reports"),
		Encoding:       "cp850",
		ErrorThreshold: 0.05,
		Log: LogConfig{
			File:    filepath.Join(appDir, "app.log"),
			Console: true,
			Level:   "info",
		},
		Watch: WatchConfig{
			InboxDir: filepath.Join(appDir, "inbox"),
			PollSec:  60,
			Version:  "auto",
		},
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadOrCreate ładuje config z pliku lub tworzy domyślny (JSON albo YAML po rozszerzeniu).
func LoadOrCreate(path string) (*Config, bool, error) {
	// upewnij się, że katalog istnieje
	_ = os.MkdirAll(filepath.Dir(path), 0o755)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default(filepath.Dir(path))
			if err := Save(path, cfg); err != nil {
				return nil, false, fmt.Errorf("błąd zapisu domyślnego configa: %w", err)
			}
			return cfg, true, nil
		}
		return nil, false, fmt.Errorf("błąd otwierania configa: %w", err)
	}

	cfg := Default(filepath.Dir(path))
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, false, fmt.Errorf("błąd parsowania configa: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return cfg, false, nil
}

// Validate – szybki błąd przy złej konfiguracji
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "", "sqlite", "sqlite-pure":
	case "postgres", "mysql":
		if c.Database.DSN == "" {
			return fmt.Errorf("config: database.dsn wymagany dla %s", c.Database.Driver)
		}
	default:
		return fmt.Errorf("config: nieznany database.driver %q", c.Database.Driver)
	}
	if c.ErrorThreshold < 0 || c.ErrorThreshold > 1 {
		return fmt.Errorf("config: error_threshold poza zakresem 0..1: %v", c.ErrorThreshold)
	}
	return nil
}

// Save zapisuje config do pliku
func Save(path string, cfg *Config) error {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if isYAML(path) {
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}
