package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment override, e.g. INTERVAL_TIMER_LOG_LEVEL
	EnvPrefix = "INTERVAL_TIMER"
	appDir    = ".interval-timer"
)

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type AudioConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	Volume     float64 `mapstructure:"volume"`
	SampleRate int     `mapstructure:"sample_rate"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type LibraryConfig struct {
	Dir      string        `mapstructure:"dir"`
	Watch    bool          `mapstructure:"watch"`
	Debounce time.Duration `mapstructure:"debounce"`
}

type PlayerConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
	ScrubStep    int           `mapstructure:"scrub_step"`
}

// Config holds every setting of the application
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Audio   AudioConfig   `mapstructure:"audio"`
	Store   StoreConfig   `mapstructure:"store"`
	Library LibraryConfig `mapstructure:"library"`
	Player  PlayerConfig  `mapstructure:"player"`
}

// DefaultDir is where state, logs and the workout library live by default
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, appDir)
}

func setDefaults(v *viper.Viper) {
	dir := DefaultDir()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(dir, "interval-timer.log"))
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("audio.enabled", true)
	v.SetDefault("audio.volume", 0.6)
	v.SetDefault("audio.sample_rate", 44100)

	v.SetDefault("store.path", filepath.Join(dir, "timer.db"))

	v.SetDefault("library.dir", filepath.Join(dir, "workouts"))
	v.SetDefault("library.watch", true)
	v.SetDefault("library.debounce", 500*time.Millisecond)

	v.SetDefault("player.tick_interval", time.Second)
	v.SetDefault("player.scrub_step", 10)
}

// flagKeys maps command line flags to config keys
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-file":   "log.file",
	"no-audio":   "audio.enabled",
	"volume":     "audio.volume",
	"db":         "store.path",
	"library":    "library.dir",
	"scrub-step": "player.scrub_step",
}

// BindFlags registers the persistent flags that override config values
func BindFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default ~/"+appDir+"/config.yaml)")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("log-file", "", "log file path")
	fs.Bool("no-audio", false, "disable audio cues")
	fs.Float64("volume", 0, "cue volume between 0 and 1")
	fs.String("db", "", "workout database path")
	fs.String("library", "", "directory of workout YAML files")
	fs.Int("scrub-step", 0, "seconds moved by one scrub key press")
}

// Load reads configuration with precedence flags > env > file > defaults.
// An explicit path must exist; the default config file is optional.
func Load(v *viper.Viper, path string, flags *pflag.FlagSet) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.AddConfigPath(DefaultDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	if flags != nil {
		if err := bindChangedFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindChangedFlags applies only flags the user set, so an unset flag's zero
// value never shadows the file or env.
func bindChangedFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if name == "no-audio" {
			off, err := flags.GetBool(name)
			if err != nil {
				return err
			}
			v.Set(key, !off)
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("audio.volume must be between 0 and 1, got %v", c.Audio.Volume)
	}
	if c.Audio.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	if c.Store.Path == "" {
		return errors.New("store.path is required")
	}
	if c.Library.Dir == "" {
		return errors.New("library.dir is required")
	}
	if c.Player.TickInterval <= 0 {
		return errors.New("player.tick_interval must be positive")
	}
	if c.Player.ScrubStep <= 0 {
		return errors.New("player.scrub_step must be positive")
	}
	return nil
}
