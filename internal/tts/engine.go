package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/dgnsrekt/voicebox/internal/audio"
	"github.com/dgnsrekt/voicebox/internal/cache"
	"github.com/dgnsrekt/voicebox/internal/queue"
	"github.com/dgnsrekt/voicebox/internal/wav"
)

// Engine turns text into audio through Piper. The zero value is not usable;
// construct one with Initialize or NewEngine and release it with Shutdown.
type Engine struct {
	cfg    Config
	logger *log.Logger

	available bool
	exePath   string
	modelPath string
	instance  string

	cache     *cache.Manager
	pending   *queue.Queue[*Request]
	completed *queue.Queue[*Result]
	metrics   *engineMetrics

	// inflight maps cache keys to requests that are queued or running.
	mu       sync.Mutex
	inflight map[string]*Request

	nextID    atomic.Uint64
	running   atomic.Int32
	completes atomic.Int64
	failures  atomic.Int64
	coalesced atomic.Int64

	cancel       context.CancelFunc
	done         chan struct{}
	closed       atomic.Bool
	shutdownOnce sync.Once
}

// Initialize creates an engine for installDir with default settings.
func Initialize(installDir string, logger *log.Logger) *Engine {
	return NewEngine(DefaultConfig(installDir), logger)
}

// NewEngine resolves the Piper executable and voice model under
// cfg.InstallDir and starts the worker. If anything required is missing the
// returned engine is permanently unavailable; it is never nil.
func NewEngine(cfg Config, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	cfg.applyDefaults()

	e := &Engine{
		cfg:       cfg,
		logger:    logger.WithPrefix("tts"),
		instance:  strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
		pending:   queue.New[*Request](),
		completed: queue.New[*Result](),
		inflight:  make(map[string]*Request),
		done:      make(chan struct{}),
	}

	var err error
	e.metrics, err = newEngineMetrics(e)
	bestEffort(e.logger, "register metrics", err)

	e.cache, err = cache.NewManager(cfg.DiskCache)
	if err != nil {
		e.logger.Warn("Disk cache disabled", "err", err)
		e.cache, _ = cache.NewManager(nil)
	}

	if !e.resolve() {
		close(e.done)
		return e
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.available = true
	go e.run(ctx)

	e.logger.Info("Piper initialized", "model", filepath.Base(e.modelPath), "instance", e.instance)
	return e
}

// resolve locates the executable and model and prepares the scratch dir.
func (e *Engine) resolve() bool {
	exe, ok := findExecutable(e.cfg.InstallDir)
	if !ok {
		e.logger.Warn("Piper not found, using fallback voice", "path", exe)
		return false
	}
	e.exePath = exe

	model, ok := findModel(filepath.Join(e.cfg.InstallDir, "piper"))
	if !ok {
		e.logger.Warn("No Piper voice model found", "dir", filepath.Join(e.cfg.InstallDir, "piper"))
		return false
	}
	e.modelPath = model

	if err := os.MkdirAll(e.cfg.ScratchDir, 0o755); err != nil {
		e.logger.Error("Failed to create scratch dir", "dir", e.cfg.ScratchDir, "err", err)
		return false
	}

	bestEffort(e.logger, "chmod +x "+exe, ensureExecutable(exe))
	e.sweep()
	return true
}

// IsAvailable reports whether Piper and a model were found at startup. It
// does not change for the engine's lifetime.
func (e *Engine) IsAvailable() bool {
	return e.available
}

// Speak requests speech for text at speed. cb is always called exactly once:
// synchronously with nil when the text is blank or the engine is
// unavailable, synchronously with the cached buffer on a hit, and otherwise
// from a later Drain. Requests for a key that is already queued or running
// share that request.
func (e *Engine) Speak(text string, cb Callback, speed float64) {
	if cb == nil {
		cb = func(*audio.Buffer) {}
	}
	if strings.TrimSpace(text) == "" || !e.available || e.closed.Load() {
		cb(nil)
		return
	}

	ctx := context.Background()
	e.metrics.request(ctx)

	speed = ClampSpeed(speed)
	key := cache.Key(text, speed)

	if buf, level, ok := e.cache.Get(key); ok {
		e.metrics.cacheHit(ctx, level.String())
		cb(buf)
		return
	}

	e.mu.Lock()
	if req, ok := e.inflight[key]; ok {
		req.callbacks = append(req.callbacks, cb)
		e.mu.Unlock()
		e.coalesced.Add(1)
		return
	}
	// Drain may have cached the key between the lookup above and the lock.
	if e.cache.Contains(key) {
		e.mu.Unlock()
		buf, _, _ := e.cache.Get(key)
		cb(buf)
		return
	}

	req := &Request{
		ID:        e.nextID.Add(1),
		Text:      text,
		Speed:     speed,
		CacheKey:  key,
		callbacks: []Callback{cb},
		queuedAt:  time.Now(),
	}
	if err := e.pending.Push(req); err != nil {
		e.mu.Unlock()
		cb(nil)
		return
	}
	e.inflight[key] = req
	e.mu.Unlock()

	e.logger.Debug("Queued synthesis", "id", req.ID, "text", preview(text), "speed", speed)
}

// Drain delivers every completed result without blocking and returns how
// many were processed. It must be called regularly from the goroutine that
// owns the callbacks.
func (e *Engine) Drain() int {
	results := e.completed.Drain()
	for _, res := range results {
		// A callback may have shut the engine down mid-drain.
		if e.closed.Load() {
			e.abandon(res)
			continue
		}
		e.deliver(res)
	}
	return len(results)
}

// abandon answers a result with nil without touching the cache.
func (e *Engine) abandon(res *Result) {
	if res.WavPath != "" {
		bestEffort(e.logger, "remove "+res.WavPath, removeIfExists(res.WavPath))
	}

	req := res.Request
	e.mu.Lock()
	callbacks := req.callbacks
	req.callbacks = nil
	e.mu.Unlock()

	for _, cb := range callbacks {
		e.invoke(req.ID, cb, nil)
	}
}

func (e *Engine) deliver(res *Result) {
	req := res.Request
	buf, err := e.decode(res)

	if err == nil {
		if putErr := e.cache.Put(req.CacheKey, buf); putErr != nil {
			bestEffort(e.logger, "disk cache write", putErr)
		}
		e.completes.Add(1)
		e.logger.Debug("Synthesis delivered", "id", req.ID,
			"duration", buf.Duration(), "size", humanize.Bytes(uint64(buf.SizeBytes())))
	} else {
		buf = nil
		e.failures.Add(1)
		if res.Success {
			e.logger.Warn("Failed to decode piper output", "id", req.ID, "path", res.WavPath, "err", err)
		}
	}
	e.metrics.result(context.Background(), err, res.Elapsed)

	e.mu.Lock()
	delete(e.inflight, req.CacheKey)
	callbacks := req.callbacks
	req.callbacks = nil
	e.mu.Unlock()

	for _, cb := range callbacks {
		e.invoke(req.ID, cb, buf)
	}
}

// decode reads the result's output file and always removes it.
func (e *Engine) decode(res *Result) (*audio.Buffer, error) {
	if res.WavPath != "" {
		defer func() { bestEffort(e.logger, "remove "+res.WavPath, removeIfExists(res.WavPath)) }()
	}
	if !res.Success {
		return nil, res.Err
	}

	buf, err := wav.DecodeFile(res.WavPath)
	if err != nil {
		return nil, newSynthesisError(ErrDecode, res.Request.ID, err)
	}
	return buf, nil
}

// invoke runs one callback, containing any panic so the remaining results
// are still delivered.
func (e *Engine) invoke(id uint64, cb Callback, buf *audio.Buffer) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Speak callback panicked", "id", id, "panic", r)
		}
	}()
	cb(buf)
}

// Shutdown stops the worker, waits up to the join timeout for it, removes
// this engine's output files and releases the cache. Queued requests are
// dropped without their callbacks. It is safe to call more than once and on
// an unavailable engine.
func (e *Engine) Shutdown() {
	e.shutdownOnce.Do(func() {
		e.closed.Store(true)

		if e.cancel != nil {
			e.cancel()
		}
		e.pending.Close()

		select {
		case <-e.done:
		case <-time.After(e.cfg.JoinTimeout):
			e.logger.Warn("Worker did not stop in time", "timeout", e.cfg.JoinTimeout)
		}

		dropped := e.pending.Clear()
		for _, res := range e.completed.Drain() {
			bestEffort(e.logger, "remove "+res.WavPath, removeIfExists(res.WavPath))
			dropped++
		}
		if dropped > 0 {
			e.logger.Debug("Dropped pending work on shutdown", "count", dropped)
		}

		e.mu.Lock()
		e.inflight = make(map[string]*Request)
		e.mu.Unlock()

		if e.available {
			e.sweep()
		}
		bestEffort(e.logger, "close cache", e.cache.Close())
		e.metrics.close()
	})
}

// sweep removes every output file this engine instance may have left behind,
// plus files of other instances older than the subprocess timeout. Those can
// no longer be in use and were left by a process that did not shut down.
func (e *Engine) sweep() {
	own := fmt.Sprintf("tts_%s_", e.instance)
	cutoff := time.Now().Add(-e.cfg.Timeout)

	matches, err := filepath.Glob(filepath.Join(e.cfg.ScratchDir, "tts_*.wav"))
	bestEffort(e.logger, "glob scratch dir", err)
	for _, path := range matches {
		if !strings.HasPrefix(filepath.Base(path), own) {
			info, err := os.Stat(path)
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
		}
		bestEffort(e.logger, "remove "+path, removeIfExists(path))
	}
}

// Stats returns a snapshot of engine activity.
func (e *Engine) Stats() Stats {
	cs := e.cache.Stats()
	return Stats{
		Available:    e.available,
		Executable:   e.exePath,
		Model:        e.modelPath,
		Queued:       e.pending.Len(),
		InFlight:     int(e.running.Load()),
		Completed:    e.completes.Load(),
		Failed:       e.failures.Load(),
		Coalesced:    e.coalesced.Load(),
		CacheHits:    cs.TotalHits,
		CacheMisses:  cs.TotalMisses,
		CacheEntries: int(cs.Entries),
		CacheBytes:   cs.MemoryBytes,
		DiskBytes:    cs.DiskBytes,
		DiskEnabled:  cs.DiskEnabled,
	}
}

func (e *Engine) outputPath(id uint64) string {
	return filepath.Join(e.cfg.ScratchDir, fmt.Sprintf("tts_%s_%d.wav", e.instance, id))
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// preview shortens text for log lines.
func preview(text string) string {
	const max = 30
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max]) + "..."
}
