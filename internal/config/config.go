// Package config loads stopwatch settings from defaults, an optional config
// file, STOPWATCH_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

const (
	AppName   = "stopwatch"
	EnvPrefix = "STOPWATCH"
)

// Location modes.
const (
	LocationOff    = "off"
	LocationStatic = "static"
	LocationHTTP   = "http"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	// DBPath is the sqlite file holding the history.
	DBPath string `mapstructure:"db_path"`

	// PageSize is the number of history rows per page.
	PageSize int `mapstructure:"page_size"`

	// FrameInterval is how often the face is redrawn while running.
	FrameInterval time.Duration `mapstructure:"frame_interval"`

	Location LocationConfig `mapstructure:"location"`
	Log      LogConfig      `mapstructure:"log"`
}

type LocationConfig struct {
	Mode      string  `mapstructure:"mode"`
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
	Endpoint  string  `mapstructure:"endpoint"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// DefaultDBPath is where history lives when db_path is not set.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, AppName, "history.db")
}

// DefaultLogFile is where logs go when log.file is not set.
func DefaultLogFile() string {
	return filepath.Join(xdg.StateHome, AppName, AppName+".log")
}

// ConfigDir is searched for config.{yaml,toml,json} when no file is given.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// New returns a viper instance with defaults and environment binding set up.
// Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("db_path", DefaultDBPath())
	v.SetDefault("page_size", 10)
	v.SetDefault("frame_interval", 16*time.Millisecond)
	v.SetDefault("location.mode", LocationOff)
	v.SetDefault("location.latitude", 0.0)
	v.SetDefault("location.longitude", 0.0)
	v.SetDefault("location.endpoint", "")
	v.SetDefault("log.file", DefaultLogFile())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("log.compress", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file (or the default config file, if present) into v and
// decodes the result. A missing default config file is not an error; a
// missing explicit file is.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(ConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.DBPath) == "":
		return errors.Wrap(ErrInvalid, "db_path must not be empty")
	case c.PageSize <= 0:
		return errors.Wrapf(ErrInvalid, "page_size must be positive, got %d", c.PageSize)
	case c.FrameInterval <= 0:
		return errors.Wrapf(ErrInvalid, "frame_interval must be positive, got %s", c.FrameInterval)
	}

	switch c.Location.Mode {
	case LocationOff:
	case LocationStatic:
		if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
			return errors.Wrapf(ErrInvalid, "location.latitude %v out of range", c.Location.Latitude)
		}
		if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
			return errors.Wrapf(ErrInvalid, "location.longitude %v out of range", c.Location.Longitude)
		}
	case LocationHTTP:
		if c.Location.Endpoint == "" {
			return errors.Wrap(ErrInvalid, "location.endpoint is required when location.mode is http")
		}
	default:
		return errors.Wrapf(ErrInvalid, "unknown location.mode %q", c.Location.Mode)
	}
	return nil
}
