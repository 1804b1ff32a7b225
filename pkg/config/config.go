package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/smith3v/family-medicine-manager/pkg/logger"
)

const (
	AppDirName     = ".family-medicine-manager"
	DataFileName   = "medicine.db"
	ConfigFileName = "config.json"

	DefaultTickSeconds     = 10
	DefaultRecoverySeconds = 60
)

type Config struct {
	Database  DatabaseConfig  `json:"database"`
	Logging   LoggingConfig   `json:"logging"`
	Reminders RemindersConfig `json:"reminders"`
}

type DatabaseConfig struct {
	Path string `json:"path"`
}

type LoggingConfig struct {
	Level     string `json:"level"`
	File      string `json:"file"`
	GormLevel string `json:"gorm_level"`
}

// RemindersConfig tunes the background poller. The look-ahead window and the
// poll interval are user settings stored in the database, not here.
type RemindersConfig struct {
	TickSeconds     int `json:"tick_seconds"`
	RecoverySeconds int `json:"recovery_seconds"`
}

func (c RemindersConfig) Tick() time.Duration {
	if c.TickSeconds <= 0 {
		return DefaultTickSeconds * time.Second
	}
	return time.Duration(c.TickSeconds) * time.Second
}

func (c RemindersConfig) Recovery() time.Duration {
	if c.RecoverySeconds <= 0 {
		return DefaultRecoverySeconds * time.Second
	}
	return time.Duration(c.RecoverySeconds) * time.Second
}

var AppConfig = Default()

// AppDir returns the dotfile directory under the user's home that holds the
// data file, the optional config file and the optional log file.
func AppDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return AppDirName
	}
	return filepath.Join(home, AppDirName)
}

func DefaultPath() string {
	return filepath.Join(AppDir(), ConfigFileName)
}

func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Path: filepath.Join(AppDir(), DataFileName),
		},
		Logging: LoggingConfig{
			Level:     "info",
			GormLevel: "warn",
		},
		Reminders: RemindersConfig{
			TickSeconds:     DefaultTickSeconds,
			RecoverySeconds: DefaultRecoverySeconds,
		},
	}
}

// LoadConfig decodes filename over the defaults into AppConfig. A missing file
// is an error; use LoadOrDefault when the file is optional.
func LoadConfig(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		logger.Error("failed to open config file", "error", err)
		return err
	}
	defer file.Close()

	cfg := Default()
	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		logger.Error("failed to decode config file", "error", err)
		return err
	}
	applyDefaults(&cfg)

	AppConfig = cfg
	return nil
}

func LoadOrDefault(filename string) error {
	if _, err := os.Stat(filename); errors.Is(err, fs.ErrNotExist) {
		AppConfig = Default()
		return nil
	}
	return LoadConfig(filename)
}

func applyDefaults(cfg *Config) {
	defaults := Default()
	if cfg.Database.Path == "" {
		cfg.Database.Path = defaults.Database.Path
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Logging.GormLevel == "" {
		cfg.Logging.GormLevel = defaults.Logging.GormLevel
	}
	if cfg.Reminders.TickSeconds <= 0 {
		cfg.Reminders.TickSeconds = defaults.Reminders.TickSeconds
	}
	if cfg.Reminders.RecoverySeconds <= 0 {
		cfg.Reminders.RecoverySeconds = defaults.Reminders.RecoverySeconds
	}
}
