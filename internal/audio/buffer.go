package audio

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidChannels is returned when a buffer is built with fewer than one channel.
	ErrInvalidChannels = errors.New("channel count must be at least 1")

	// ErrInvalidSampleRate is returned when a buffer is built with a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
)

// Buffer is a block of normalized PCM audio. Samples are interleaved by
// channel and lie in [-1, 1].
//
// A Buffer is immutable once constructed and is shared by reference between
// the speech cache and every caller holding it. The slice returned by Samples
// must be treated as read-only.
type Buffer struct {
	samples    []float32
	channels   int
	sampleRate int
}

// NewBuffer wraps samples in a Buffer. The slice is owned by the Buffer from
// here on; callers must not keep writing to it.
func NewBuffer(samples []float32, channels, sampleRate int) (*Buffer, error) {
	if channels < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChannels, channels)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSampleRate, sampleRate)
	}
	return &Buffer{
		samples:    samples,
		channels:   channels,
		sampleRate: sampleRate,
	}, nil
}

// Samples returns the interleaved samples. Do not modify the result.
func (b *Buffer) Samples() []float32 { return b.samples }

// Sample returns the i-th interleaved sample.
func (b *Buffer) Sample(i int) float32 { return b.samples[i] }

// Len returns the total number of samples across all channels.
func (b *Buffer) Len() int { return len(b.samples) }

// Channels returns the channel count.
func (b *Buffer) Channels() int { return b.channels }

// SampleRate returns the sample rate in Hz.
func (b *Buffer) SampleRate() int { return b.sampleRate }

// Frames returns the number of sample frames (samples per channel).
func (b *Buffer) Frames() int { return len(b.samples) / b.channels }

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.sampleRate)
}

// SizeBytes reports the in-memory size of the sample data.
func (b *Buffer) SizeBytes() int64 { return int64(len(b.samples)) * 4 }
