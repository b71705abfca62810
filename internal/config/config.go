// Package config holds voicebox settings. Values are layered: built-in
// defaults, then the config file and flags through viper, then VOICEBOX_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mattn/go-shellwords"
	gap "github.com/muesli/go-app-paths"
)

// AppName scopes the config, cache and data directories.
const AppName = "voicebox"

// Config contains all voicebox options.
type Config struct {
	// Speed is the default speaking rate passed to the engine.
	Speed       float64 `yaml:"speed" mapstructure:"speed" env:"SPEED"`
	MetricsAddr string  `yaml:"metrics_addr" mapstructure:"metrics_addr" env:"METRICS_ADDR"`

	Piper PiperConfig `yaml:"piper" mapstructure:"piper" envPrefix:"PIPER_"`
	Cache CacheConfig `yaml:"cache" mapstructure:"cache" envPrefix:"CACHE_"`
	Voice VoiceConfig `yaml:"voice" mapstructure:"voice" envPrefix:"VOICE_"`
}

// PiperConfig contains the external engine settings.
type PiperConfig struct {
	// InstallDir holds piper/<exe> and piper/**/*.onnx.
	InstallDir   string        `yaml:"install_dir" mapstructure:"install_dir" env:"INSTALL_DIR"`
	ScratchDir   string        `yaml:"scratch_dir" mapstructure:"scratch_dir" env:"SCRATCH_DIR"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout" env:"TIMEOUT"`
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval" env:"POLL_INTERVAL"`
	// ExtraArgs is appended to every invocation, split with shell quoting rules.
	ExtraArgs string `yaml:"extra_args" mapstructure:"extra_args" env:"EXTRA_ARGS"`
}

// CacheConfig contains the persistent disk cache settings.
type CacheConfig struct {
	Disk             bool          `yaml:"disk" mapstructure:"disk" env:"DISK"`
	Dir              string        `yaml:"dir" mapstructure:"dir" env:"DIR"`
	CapacityMB       int           `yaml:"capacity_mb" mapstructure:"capacity_mb" env:"CAPACITY_MB"`
	CompressionLevel int           `yaml:"compression_level" mapstructure:"compression_level" env:"COMPRESSION_LEVEL"`
	MaxAge           time.Duration `yaml:"max_age" mapstructure:"max_age" env:"MAX_AGE"`
}

// VoiceConfig contains the procedural voice settings.
type VoiceConfig struct {
	SampleRate int     `yaml:"sample_rate" mapstructure:"sample_rate" env:"SAMPLE_RATE"`
	BasePitch  float64 `yaml:"base_pitch" mapstructure:"base_pitch" env:"BASE_PITCH"`
	Seed       uint64  `yaml:"seed" mapstructure:"seed" env:"SEED"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	scope := gap.NewScope(gap.User, AppName)

	installDir := "."
	if dirs, err := scope.DataDirs(); err == nil && len(dirs) > 0 {
		installDir = dirs[0]
	}
	cacheDir := filepath.Join(".cache", AppName, "audio")
	if dir, err := scope.CacheDir(); err == nil {
		cacheDir = filepath.Join(dir, "audio")
	}

	return Config{
		Speed: 1.0,
		Piper: PiperConfig{
			InstallDir:   installDir,
			Timeout:      30 * time.Second,
			PollInterval: 50 * time.Millisecond,
		},
		Cache: CacheConfig{
			Disk:             false,
			Dir:              cacheDir,
			CapacityMB:       256,
			CompressionLevel: 3,
			MaxAge:           30 * 24 * time.Hour,
		},
		Voice: VoiceConfig{
			SampleRate: 22050,
			BasePitch:  1.0,
			Seed:       1,
		},
	}
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if c.Piper.InstallDir == "" {
		return errors.New("piper.install_dir must be set")
	}
	if c.Piper.Timeout < time.Second {
		return fmt.Errorf("piper.timeout must be at least 1s, got %v", c.Piper.Timeout)
	}
	if c.Piper.PollInterval <= 0 {
		return fmt.Errorf("piper.poll_interval must be positive, got %v", c.Piper.PollInterval)
	}
	if _, err := c.Piper.Args(); err != nil {
		return err
	}
	if c.Cache.Disk {
		if c.Cache.Dir == "" {
			return errors.New("cache.dir must be set when the disk cache is enabled")
		}
		if c.Cache.CapacityMB <= 0 {
			return fmt.Errorf("cache.capacity_mb must be positive, got %d", c.Cache.CapacityMB)
		}
	}
	if c.Cache.CompressionLevel < 1 || c.Cache.CompressionLevel > 22 {
		return fmt.Errorf("cache.compression_level must be between 1 and 22, got %d", c.Cache.CompressionLevel)
	}
	if c.Voice.SampleRate < 8000 || c.Voice.SampleRate > 96000 {
		return fmt.Errorf("voice.sample_rate must be between 8000 and 96000, got %d", c.Voice.SampleRate)
	}
	if c.Voice.BasePitch <= 0 {
		return fmt.Errorf("voice.base_pitch must be positive, got %.2f", c.Voice.BasePitch)
	}
	return nil
}

// Args splits ExtraArgs into argv words.
func (p PiperConfig) Args() ([]string, error) {
	if p.ExtraArgs == "" {
		return nil, nil
	}
	args, err := shellwords.Parse(p.ExtraArgs)
	if err != nil {
		return nil, fmt.Errorf("piper.extra_args: %w", err)
	}
	return args, nil
}
