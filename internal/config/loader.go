package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/voicebox/internal/tts"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VOICEBOX_"

// Load builds a Config from defaults, the keys set on v, and the
// environment, then validates it. v may be nil.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()

	if v != nil {
		applyViper(v, &cfg)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}

	// Out of range speeds are clamped like the engine does, not rejected.
	cfg.Speed = tts.ClampSpeed(cfg.Speed)

	if err := expandPaths(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func applyViper(v *viper.Viper, cfg *Config) {
	if v.IsSet("speed") {
		cfg.Speed = v.GetFloat64("speed")
	}
	if v.IsSet("metrics_addr") {
		cfg.MetricsAddr = v.GetString("metrics_addr")
	}

	// Piper
	if v.IsSet("piper.install_dir") {
		cfg.Piper.InstallDir = v.GetString("piper.install_dir")
	}
	if v.IsSet("piper.scratch_dir") {
		cfg.Piper.ScratchDir = v.GetString("piper.scratch_dir")
	}
	if v.IsSet("piper.timeout") {
		cfg.Piper.Timeout = v.GetDuration("piper.timeout")
	}
	if v.IsSet("piper.poll_interval") {
		cfg.Piper.PollInterval = v.GetDuration("piper.poll_interval")
	}
	if v.IsSet("piper.extra_args") {
		cfg.Piper.ExtraArgs = v.GetString("piper.extra_args")
	}

	// Cache
	if v.IsSet("cache.disk") {
		cfg.Cache.Disk = v.GetBool("cache.disk")
	}
	if v.IsSet("cache.dir") {
		cfg.Cache.Dir = v.GetString("cache.dir")
	}
	if v.IsSet("cache.capacity_mb") {
		cfg.Cache.CapacityMB = v.GetInt("cache.capacity_mb")
	}
	if v.IsSet("cache.compression_level") {
		cfg.Cache.CompressionLevel = v.GetInt("cache.compression_level")
	}
	if v.IsSet("cache.max_age") {
		cfg.Cache.MaxAge = v.GetDuration("cache.max_age")
	}

	// Voice
	if v.IsSet("voice.sample_rate") {
		cfg.Voice.SampleRate = v.GetInt("voice.sample_rate")
	}
	if v.IsSet("voice.base_pitch") {
		cfg.Voice.BasePitch = v.GetFloat64("voice.base_pitch")
	}
	if v.IsSet("voice.seed") {
		cfg.Voice.Seed = v.GetUint64("voice.seed")
	}
}

func expandPaths(cfg *Config) error {
	for _, p := range []*string{&cfg.Piper.InstallDir, &cfg.Piper.ScratchDir, &cfg.Cache.Dir} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}
