package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/voicebox/internal/audio"
	"github.com/dgnsrekt/voicebox/internal/cache"
	"github.com/dgnsrekt/voicebox/internal/config"
	"github.com/dgnsrekt/voicebox/internal/tts"
	"github.com/dgnsrekt/voicebox/internal/voice"
)

var errNoVoice = errors.New("piper could not speak the line and babbling is disabled")

// utterance is either a synthesized buffer or a procedural plan.
type utterance struct {
	buf  *audio.Buffer
	plan []voice.Step
}

func (u utterance) source() string {
	if u.buf != nil {
		return "piper"
	}
	return "babble"
}

// host wires the engine and the procedural voice the way an application
// embedding voicebox would: piper first, babble on failure.
type host struct {
	cfg    config.Config
	engine *tts.Engine
	synth  *voice.Synthesizer
	logger *log.Logger

	fallback bool
}

func newHost(c config.Config, withEngine bool) (*host, error) {
	h := &host{
		cfg:      c,
		logger:   log.Default(),
		fallback: true,
		synth: voice.NewSynthesizer(voice.Config{
			SampleRate: c.Voice.SampleRate,
			BasePitch:  c.Voice.BasePitch,
			Seed:       c.Voice.Seed,
		}),
	}
	if !withEngine {
		return h, nil
	}

	ec, err := engineConfig(c)
	if err != nil {
		return nil, err
	}
	h.engine = tts.NewEngine(ec, h.logger)
	return h, nil
}

func engineConfig(c config.Config) (tts.Config, error) {
	args, err := c.Piper.Args()
	if err != nil {
		return tts.Config{}, err //nolint:wrapcheck
	}

	ec := tts.DefaultConfig(c.Piper.InstallDir)
	if c.Piper.ScratchDir != "" {
		ec.ScratchDir = c.Piper.ScratchDir
	}
	ec.Timeout = c.Piper.Timeout
	ec.PollInterval = c.Piper.PollInterval
	ec.ExtraArgs = args

	if c.Cache.Disk {
		dc := cache.DefaultDiskConfig(c.Cache.Dir)
		dc.Capacity = int64(c.Cache.CapacityMB) << 20
		dc.CompressionLevel = c.Cache.CompressionLevel
		dc.MaxAge = c.Cache.MaxAge
		ec.DiskCache = &dc
	}
	return ec, nil
}

// synthesize asks the engine for text, draining it on this goroutine until
// the callback fires, and falls back to a procedural plan.
func (h *host) synthesize(ctx context.Context, text string, speed float64) (utterance, error) {
	if h.engine != nil {
		buf, err := h.await(ctx, text, speed)
		if err != nil {
			return utterance{}, err
		}
		if buf != nil {
			return utterance{buf: buf}, nil
		}
	}

	if !h.fallback {
		return utterance{}, errNoVoice
	}
	plan := h.synth.Plan(text)
	h.logger.Debug("Babbling", "steps", len(plan))
	return utterance{plan: plan}, nil
}

func (h *host) await(ctx context.Context, text string, speed float64) (*audio.Buffer, error) {
	done := make(chan *audio.Buffer, 1)
	h.engine.Speak(text, func(buf *audio.Buffer) { done <- buf }, speed)

	ticker := time.NewTicker(h.cfg.Piper.PollInterval)
	defer ticker.Stop()

	for {
		h.engine.Drain()
		select {
		case buf := <-done:
			return buf, nil
		case <-ctx.Done():
			return nil, ctx.Err() //nolint:wrapcheck
		case <-ticker.C:
		}
	}
}

// render flattens an utterance into one buffer.
func (h *host) render(u utterance) *audio.Buffer {
	if u.buf != nil {
		return u.buf
	}
	return h.synth.Render(u.plan)
}

// play sends an utterance to the sound card and returns when it has been
// heard or ctx is done.
func (h *host) play(ctx context.Context, sink audio.Sink, u utterance) error {
	if u.buf != nil {
		return audio.PlayAndWait(ctx, sink, u.buf) //nolint:wrapcheck
	}
	return voice.NewDriver(h.synth, sink, h.logger).Play(ctx, u.plan) //nolint:wrapcheck
}

func (h *host) openPlayer() (*audio.Player, error) {
	pc := audio.DefaultPlayerConfig()
	pc.SampleRate = h.cfg.Voice.SampleRate
	p, err := audio.NewPlayer(pc)
	if err != nil {
		return nil, fmt.Errorf("unable to open audio output: %w", err)
	}
	return p, nil
}

func (h *host) close() {
	if h.engine != nil {
		h.engine.Shutdown()
	}
}
