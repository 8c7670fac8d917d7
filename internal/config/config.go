// Package config loads daemon settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/warpdl/warpalarm/common"
	"github.com/warpdl/warpalarm/internal/scheduler"
	"gopkg.in/yaml.v3"
)

// DefaultShutdownTimeout bounds daemon shutdown unless configured.
const DefaultShutdownTimeout = 5 * time.Second

var (
	ErrInvalidMaxTimers = errors.New("max_timers must be at least 1")
	ErrInvalidIDSeed    = errors.New("id_seed must be at least 1")
)

// Config is the daemon configuration. Field names match the YAML keys.
type Config struct {
	MaxTimers       int           `yaml:"max_timers"`
	IDSeed          uint64        `yaml:"id_seed"`
	LabelMode       string        `yaml:"label_mode"`
	Listen          string        `yaml:"listen"`
	Secret          string        `yaml:"secret"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	LogFile         string        `yaml:"log_file"`
	PushWorkers     int           `yaml:"push_workers"`
	Debug           bool          `yaml:"debug"`

	// GeneratedSecret is set when Secret was not configured and a random
	// one was issued.
	GeneratedSecret bool `yaml:"-"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		MaxTimers:       scheduler.DefaultMaxTimers,
		IDSeed:          scheduler.DefaultIDSeed,
		LabelMode:       scheduler.LabelOffset.String(),
		Listen:          common.DefaultListenAddr,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Loader reads configuration through an afero filesystem so tests can use
// an in-memory one.
type Loader struct {
	Fs afero.Fs
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// NewLoader returns a Loader on the OS filesystem and environment.
func NewLoader() *Loader {
	return &Loader{Fs: afero.NewOsFs(), Getenv: os.Getenv}
}

// Load builds a Config from defaults, then the YAML file at path, then the
// environment. An empty path falls back to WARPALARM_CONFIG; if that is
// also empty no file is read. A missing secret is generated.
func (l *Loader) Load(path string) (*Config, error) {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Default()
	if path == "" {
		path = getenv(common.ConfigPathEnv)
	}
	if path != "" {
		if err := l.readFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(cfg, getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Secret == "" {
		cfg.Secret = uuid.NewString()
		cfg.GeneratedSecret = true
	}
	return cfg, nil
}

func (l *Loader) readFile(path string, cfg *Config) error {
	data, err := afero.ReadFile(l.Fs, path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(common.ListenEnv); v != "" {
		cfg.Listen = v
	}
	if v := getenv(common.SecretEnv); v != "" {
		cfg.Secret = v
	}
	if v := getenv(common.LabelModeEnv); v != "" {
		cfg.LabelMode = v
	}
	if v := getenv(common.DebugEnv); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", common.DebugEnv, err)
		}
		cfg.Debug = on
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.MaxTimers < 1 {
		return ErrInvalidMaxTimers
	}
	if c.IDSeed < 1 {
		return ErrInvalidIDSeed
	}
	if _, err := scheduler.ParseLabelMode(strings.ToLower(c.LabelMode)); err != nil {
		return err
	}
	return nil
}

// SchedulerOptions converts the config into scheduler options. It assumes
// Validate has passed.
func (c *Config) SchedulerOptions() *scheduler.Options {
	mode, _ := scheduler.ParseLabelMode(strings.ToLower(c.LabelMode))
	return &scheduler.Options{
		MaxTimers: c.MaxTimers,
		IDSeed:    c.IDSeed,
		LabelMode: mode,
	}
}

// Save writes c as YAML to path.
func (l *Loader) Save(path string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return afero.WriteFile(l.Fs, path, data, 0o600)
}
