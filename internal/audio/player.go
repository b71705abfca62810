//go:build !nocgo

package audio

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Player is the oto backed Sink. Buffers are converted to the context's
// rate and channel count before playback.
type Player struct {
	context *oto.Context
	player  *oto.Player

	// Keep the encoded bytes alive for as long as oto may read them.
	active []byte

	state atomic.Int32
	mu    sync.Mutex

	sampleRate int
	channels   int
}

// PlayerConfig contains configuration for the audio player.
type PlayerConfig struct {
	SampleRate int
	Channels   int
	BufferSize time.Duration
}

// DefaultPlayerConfig returns the default player configuration. 22050 Hz mono
// matches the output of the bundled voices.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		SampleRate: 22050,
		Channels:   1,
		BufferSize: 100 * time.Millisecond,
	}
}

// NewPlayer opens an oto context with the given configuration.
func NewPlayer(config PlayerConfig) (*Player, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	op := &oto.NewContextOptions{
		SampleRate:   config.SampleRate,
		ChannelCount: config.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   config.BufferSize,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	p := &Player{
		context:    ctx,
		sampleRate: config.SampleRate,
		channels:   config.Channels,
	}
	p.state.Store(int32(StateStopped))
	return p, nil
}

func validateConfig(config PlayerConfig) error {
	if config.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", config.SampleRate)
	}
	if config.Channels != 1 && config.Channels != 2 {
		return fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", config.Channels)
	}
	if config.BufferSize < 0 {
		return errors.New("buffer size must not be negative")
	}
	return nil
}

// Play starts playback of buf, stopping whatever was playing.
func (p *Player) Play(buf *Buffer) error {
	if buf == nil || buf.Len() == 0 {
		return errors.New("audio buffer is empty")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if PlayerState(p.state.Load()) == StateClosed {
		return ErrPlayerClosed
	}
	p.stopLocked()

	data := Float32LE(Resample(buf, p.sampleRate, p.channels).Samples())
	player := p.context.NewPlayer(bytes.NewReader(data))
	p.player = player
	p.active = data
	player.Play()
	p.state.Store(int32(StatePlaying))

	return nil
}

// Stop stops playback and releases the current stream.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

func (p *Player) stopLocked() {
	if p.player != nil {
		p.player.Pause()
		_ = p.player.Close()
		p.player = nil
	}
	p.active = nil
	if PlayerState(p.state.Load()) != StateClosed {
		p.state.Store(int32(StateStopped))
	}
}

// IsPlaying reports whether oto is still consuming the current stream.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.player != nil && p.player.IsPlaying()
}

// State returns the current player state.
func (p *Player) State() PlayerState {
	return PlayerState(p.state.Load())
}

// Close stops playback. oto/v3 contexts cannot be closed, so the device stays
// open until the process exits.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.state.Store(int32(StateClosed))
	return nil
}
