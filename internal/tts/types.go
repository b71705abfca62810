package tts

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dgnsrekt/voicebox/internal/audio"
	"github.com/dgnsrekt/voicebox/internal/cache"
)

// Callback receives the synthesized buffer, or nil when synthesis was not
// possible and the caller should fall back to another voice.
type Callback func(buf *audio.Buffer)

// Request is one unit of work for the worker. Callbacks attached after
// creation are guarded by the engine's mutex.
type Request struct {
	ID       uint64
	Text     string
	Speed    float64
	CacheKey string

	callbacks []Callback
	queuedAt  time.Time
}

// Result is the worker's answer to one Request.
type Result struct {
	Request *Request
	WavPath string
	Success bool
	Err     error
	Elapsed time.Duration
}

// Stats is a point-in-time snapshot of engine activity.
type Stats struct {
	Available  bool
	Executable string
	Model      string

	Queued    int
	InFlight  int
	Completed int64
	Failed    int64
	Coalesced int64

	CacheHits    int64
	CacheMisses  int64
	CacheEntries int
	CacheBytes   int64
	DiskBytes    int64
	DiskEnabled  bool
}

// Config controls an Engine.
type Config struct {
	// InstallDir contains piper/<exe> and piper/**/*.onnx.
	InstallDir string
	// ScratchDir receives one output file per request.
	ScratchDir string
	// Timeout bounds each subprocess run.
	Timeout time.Duration
	// PollInterval bounds how long an idle worker sleeps between queue checks.
	PollInterval time.Duration
	// JoinTimeout bounds how long Shutdown waits for the worker.
	JoinTimeout time.Duration
	// ExtraArgs is appended to every Piper invocation.
	ExtraArgs []string
	// DiskCache enables the persistent cache tier when non-nil.
	DiskCache *cache.DiskConfig
}

// DefaultScratchDir is the per-user temp location for output files.
func DefaultScratchDir() string {
	return filepath.Join(os.TempDir(), "voicebox_tts")
}

// DefaultConfig returns the engine defaults for installDir.
func DefaultConfig(installDir string) Config {
	return Config{
		InstallDir:   installDir,
		ScratchDir:   DefaultScratchDir(),
		Timeout:      30 * time.Second,
		PollInterval: 50 * time.Millisecond,
		JoinTimeout:  2 * time.Second,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig(c.InstallDir)
	if c.ScratchDir == "" {
		c.ScratchDir = d.ScratchDir
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.JoinTimeout <= 0 {
		c.JoinTimeout = d.JoinTimeout
	}
}
