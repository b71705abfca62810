package tts

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/voicebox/internal/wav"
)

// Synthesis failure kinds. None of them escape the public API; they surface
// as a nil callback argument and in logs, metrics and Stats.
var (
	// ErrUnavailable indicates the executable or voice model was not found at startup
	ErrUnavailable = errors.New("piper engine unavailable")

	// ErrSpawn indicates the subprocess could not be started
	ErrSpawn = errors.New("failed to start piper")

	// ErrTimeout indicates the subprocess ran past its deadline and was killed
	ErrTimeout = errors.New("piper timed out")

	// ErrNonZeroExit indicates the subprocess exited with a failure status
	ErrNonZeroExit = errors.New("piper exited with non-zero status")

	// ErrMissingOutput indicates the subprocess succeeded but wrote no file
	ErrMissingOutput = errors.New("piper produced no output file")

	// ErrCanceled indicates the engine shut down while the request was running
	ErrCanceled = errors.New("synthesis canceled")

	// ErrWorkerPanic indicates request processing panicked and was recovered
	ErrWorkerPanic = errors.New("synthesis worker panicked")

	// ErrDecode indicates the output file could not be decoded
	ErrDecode = wav.ErrDecode
)

// SynthesisError ties a failure kind to the request it belongs to.
type SynthesisError struct {
	Kind      error
	RequestID uint64
	Err       error
}

// Error implements the error interface
func (e *SynthesisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request %d: %v: %v", e.RequestID, e.Kind, e.Err)
	}
	return fmt.Sprintf("request %d: %v", e.RequestID, e.Kind)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *SynthesisError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newSynthesisError(kind error, id uint64, cause error) *SynthesisError {
	return &SynthesisError{Kind: kind, RequestID: id, Err: cause}
}

// reason maps an error to a short label for metrics.
func reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrSpawn):
		return "spawn"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrNonZeroExit):
		return "exit"
	case errors.Is(err, ErrMissingOutput):
		return "missing_output"
	case errors.Is(err, ErrCanceled):
		return "canceled"
	case errors.Is(err, ErrWorkerPanic):
		return "panic"
	case errors.Is(err, ErrDecode):
		return "decode"
	default:
		return "other"
	}
}

// bestEffort logs a failure that must not stop the caller. Every swallowed
// error in this package goes through here.
func bestEffort(logger *log.Logger, op string, err error) {
	if err == nil {
		return
	}
	logger.Debug("best-effort operation failed", "op", op, "err", err)
}
