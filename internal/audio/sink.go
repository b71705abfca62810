package audio

import (
	"context"
	"errors"
	"time"
)

// ErrPlayerClosed is returned by sinks that have been closed.
var ErrPlayerClosed = errors.New("player is closed")

// Sink consumes buffers for playback. Play starts playback and returns without
// waiting for it to finish; starting a new buffer replaces the current one.
type Sink interface {
	Play(buf *Buffer) error
	Stop() error
	IsPlaying() bool
}

// PlayerState represents the current state of a sink.
type PlayerState int32

const (
	StateStopped PlayerState = iota
	StatePlaying
	StateClosed
)

func (s PlayerState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// PlayAndWait plays buf on sink and blocks until its duration has elapsed or
// ctx is done, in which case playback is stopped.
func PlayAndWait(ctx context.Context, sink Sink, buf *Buffer) error {
	if err := sink.Play(buf); err != nil {
		return err
	}

	timer := time.NewTimer(buf.Duration())
	defer timer.Stop()

	select {
	case <-ctx.Done():
		_ = sink.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
