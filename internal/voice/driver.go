package voice

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/voicebox/internal/audio"
)

// Driver plays planned utterances through a Sink with real timing. A driver
// runs at most one sequence at a time.
type Driver struct {
	synth  *Synthesizer
	sink   audio.Sink
	logger *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewDriver creates a playback driver. A nil logger uses the default logger.
func NewDriver(synth *Synthesizer, sink audio.Sink, logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.Default()
	}
	return &Driver{
		synth:  synth,
		sink:   sink,
		logger: logger.WithPrefix("voice"),
	}
}

// Play plays plan on the calling goroutine. Each clip is started at its
// pitch and the step gap elapses before the next one. When ctx is done the
// sink is stopped and ctx.Err() returned.
func (d *Driver) Play(ctx context.Context, plan []Step) error {
	for _, step := range plan {
		if err := ctx.Err(); err != nil {
			_ = d.sink.Stop()
			return err
		}

		if clip := d.synth.Clip(step); clip != nil {
			if err := d.sink.Play(clip); err != nil {
				return err
			}
		}

		if err := wait(ctx, step.Gap); err != nil {
			_ = d.sink.Stop()
			return err
		}
	}
	return nil
}

// Speak plans text and plays it on a new goroutine, cancelling any sequence
// this driver is already playing. The returned channel is closed when the
// sequence ends for any reason.
func (d *Driver) Speak(text string) <-chan struct{} {
	plan := d.synth.Plan(text)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	d.cancel, d.done = cancel, done

	go func() {
		defer close(done)
		defer cancel()

		if err := d.Play(ctx, plan); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Warn("Voice sequence failed", "err", err)
		}
	}()
	return done
}

// Stop cancels the current sequence, if any, and waits for it to end.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

func (d *Driver) stopLocked() {
	if d.cancel == nil {
		return
	}
	d.cancel()
	<-d.done
	d.cancel, d.done = nil, nil
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
