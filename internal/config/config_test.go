package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Piper.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.Piper.Timeout)
	}
	if cfg.Piper.PollInterval != 50*time.Millisecond {
		t.Errorf("expected 50ms poll, got %v", cfg.Piper.PollInterval)
	}
	if cfg.Cache.Disk {
		t.Error("disk cache should be off by default")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"short timeout", func(c *Config) { c.Piper.Timeout = time.Millisecond }, "timeout"},
		{"no install dir", func(c *Config) { c.Piper.InstallDir = "" }, "install_dir"},
		{"zero poll", func(c *Config) { c.Piper.PollInterval = 0 }, "poll_interval"},
		{"bad quoting", func(c *Config) { c.Piper.ExtraArgs = `--speaker "1` }, "extra_args"},
		{"compression", func(c *Config) { c.Cache.CompressionLevel = 23 }, "compression_level"},
		{"disk capacity", func(c *Config) { c.Cache.Disk = true; c.Cache.CapacityMB = 0 }, "capacity_mb"},
		{"sample rate", func(c *Config) { c.Voice.SampleRate = 100 }, "sample_rate"},
		{"pitch", func(c *Config) { c.Voice.BasePitch = 0 }, "base_pitch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestPiperArgs(t *testing.T) {
	p := PiperConfig{ExtraArgs: `--speaker 2 --sentence_silence "0.3"`}
	args, err := p.Args()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"--speaker", "2", "--sentence_silence", "0.3"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("got %q, want %q", args, want)
	}

	if args, _ := (PiperConfig{}).Args(); args != nil {
		t.Errorf("expected nil args, got %q", args)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "voicebox.yml")
	yaml := `speed: 1.5
piper:
  install_dir: /opt/voicebox
  timeout: 10s
  extra_args: --speaker 3
cache:
  disk: true
  compression_level: 9
voice:
  sample_rate: 16000
  seed: 42
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Speed != 1.5 {
		t.Errorf("speed: got %v", cfg.Speed)
	}
	if cfg.Piper.InstallDir != "/opt/voicebox" || cfg.Piper.Timeout != 10*time.Second {
		t.Errorf("piper: got %+v", cfg.Piper)
	}
	if !cfg.Cache.Disk || cfg.Cache.CompressionLevel != 9 {
		t.Errorf("cache: got %+v", cfg.Cache)
	}
	if cfg.Voice.SampleRate != 16000 || cfg.Voice.Seed != 42 {
		t.Errorf("voice: got %+v", cfg.Voice)
	}
	// Untouched keys keep their defaults.
	if cfg.Piper.PollInterval != 50*time.Millisecond {
		t.Errorf("poll interval: got %v", cfg.Piper.PollInterval)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	v := viper.New()
	v.Set("speed", 1.5)
	v.Set("piper.timeout", "10s")

	t.Setenv("VOICEBOX_SPEED", "0.75")
	t.Setenv("VOICEBOX_PIPER_TIMEOUT", "5s")
	t.Setenv("VOICEBOX_CACHE_DISK", "true")
	t.Setenv("VOICEBOX_VOICE_BASE_PITCH", "1.2")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Speed != 0.75 {
		t.Errorf("speed: got %v", cfg.Speed)
	}
	if cfg.Piper.Timeout != 5*time.Second {
		t.Errorf("timeout: got %v", cfg.Piper.Timeout)
	}
	if !cfg.Cache.Disk {
		t.Error("disk cache should be enabled from env")
	}
	if cfg.Voice.BasePitch != 1.2 {
		t.Errorf("base pitch: got %v", cfg.Voice.BasePitch)
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("VOICEBOX_CACHE_COMPRESSION_LEVEL", "30")
	if _, err := Load(nil); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadClampsSpeed(t *testing.T) {
	tests := []struct {
		name string
		env  string
		file float64
		want float64
	}{
		{"env too fast", "3", 1.0, 2.0},
		{"env too slow", "0.1", 1.0, 0.5},
		{"file too fast", "", 9, 2.0},
		{"in range", "", 1.25, 1.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env != "" {
				t.Setenv("VOICEBOX_SPEED", tt.env)
			}
			v := viper.New()
			v.Set("speed", tt.file)

			cfg, err := Load(v)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Speed != tt.want {
				t.Errorf("speed: got %v, want %v", cfg.Speed, tt.want)
			}
		})
	}
}

func TestLoadExpandsHome(t *testing.T) {
	home, err := homedir.Dir()
	if err != nil {
		t.Skip("no home directory")
	}

	v := viper.New()
	v.Set("piper.install_dir", "~/voices")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := filepath.Join(home, "voices"); cfg.Piper.InstallDir != want {
		t.Errorf("got %q, want %q", cfg.Piper.InstallDir, want)
	}
}
