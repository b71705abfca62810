package audio

import (
	"errors"
	"sync"
	"sync/atomic"
)

// MockPlayer is a Sink that records what it was asked to play without
// producing sound.
type MockPlayer struct {
	state atomic.Int32

	mu     sync.Mutex
	played []*Buffer

	callbacks MockCallbacks

	playCount atomic.Int64
	stopCount atomic.Int64

	failPlays bool
}

// MockCallbacks provides hooks for testing.
type MockCallbacks struct {
	OnPlay func(buf *Buffer)
	OnStop func()
}

// NewMockPlayer creates a mock player with the given callbacks.
func NewMockPlayer(callbacks MockCallbacks) *MockPlayer {
	mp := &MockPlayer{callbacks: callbacks}
	mp.state.Store(int32(StateStopped))
	return mp
}

// Play records buf and marks the player as playing.
func (mp *MockPlayer) Play(buf *Buffer) error {
	mp.mu.Lock()
	if PlayerState(mp.state.Load()) == StateClosed {
		mp.mu.Unlock()
		return ErrPlayerClosed
	}
	if mp.failPlays {
		mp.mu.Unlock()
		return errors.New("simulated playback error")
	}
	mp.played = append(mp.played, buf)
	mp.state.Store(int32(StatePlaying))
	mp.mu.Unlock()

	mp.playCount.Add(1)
	if mp.callbacks.OnPlay != nil {
		mp.callbacks.OnPlay(buf)
	}
	return nil
}

// Stop marks the player as stopped.
func (mp *MockPlayer) Stop() error {
	if !mp.state.CompareAndSwap(int32(StatePlaying), int32(StateStopped)) {
		return nil
	}
	mp.stopCount.Add(1)
	if mp.callbacks.OnStop != nil {
		mp.callbacks.OnStop()
	}
	return nil
}

// IsPlaying reports whether Play was called since the last Stop.
func (mp *MockPlayer) IsPlaying() bool {
	return PlayerState(mp.state.Load()) == StatePlaying
}

// Close stops the player and rejects further plays.
func (mp *MockPlayer) Close() error {
	_ = mp.Stop()
	mp.state.Store(int32(StateClosed))
	return nil
}

// State returns the current player state.
func (mp *MockPlayer) State() PlayerState {
	return PlayerState(mp.state.Load())
}

// SetFailPlays makes every subsequent Play return an error.
func (mp *MockPlayer) SetFailPlays(fail bool) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.failPlays = fail
}

// Played returns the buffers played so far, oldest first.
func (mp *MockPlayer) Played() []*Buffer {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	out := make([]*Buffer, len(mp.played))
	copy(out, mp.played)
	return out
}

// GetMetrics returns playback counters.
func (mp *MockPlayer) GetMetrics() MockPlayerMetrics {
	return MockPlayerMetrics{
		PlayCount: mp.playCount.Load(),
		StopCount: mp.stopCount.Load(),
	}
}

// MockPlayerMetrics contains playback metrics for testing.
type MockPlayerMetrics struct {
	PlayCount int64
	StopCount int64
}

var (
	_ Sink = (*MockPlayer)(nil)
	_ Sink = (*Player)(nil)
)
