//go:build nocgo

package audio

import (
	"errors"
	"time"
)

// ErrNoAudio is returned when the binary was built without audio support.
var ErrNoAudio = errors.New("audio playback not available (built with nocgo)")

// Player is a stub that cannot be constructed in nocgo builds.
type Player struct{}

// PlayerConfig contains configuration for the audio player.
type PlayerConfig struct {
	SampleRate int
	Channels   int
	BufferSize time.Duration
}

// DefaultPlayerConfig returns the default player configuration.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{SampleRate: 22050, Channels: 1, BufferSize: 100 * time.Millisecond}
}

// NewPlayer always fails in nocgo builds.
func NewPlayer(PlayerConfig) (*Player, error) { return nil, ErrNoAudio }

func (p *Player) Play(*Buffer) error { return ErrNoAudio }
func (p *Player) Stop() error        { return nil }
func (p *Player) IsPlaying() bool    { return false }
func (p *Player) State() PlayerState { return StateClosed }
func (p *Player) Close() error       { return nil }
