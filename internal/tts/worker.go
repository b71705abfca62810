package tts

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"
)

// run is the worker loop. It serves requests strictly in order, one
// subprocess at a time, until ctx is canceled or the queue is closed.
func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	for {
		req, err := e.pending.Wait(ctx, e.cfg.PollInterval)
		if err != nil {
			return
		}

		res := e.process(ctx, req)

		if e.closed.Load() {
			// Shutdown already swept; nobody will drain this.
			bestEffort(e.logger, "remove "+res.WavPath, removeIfExists(res.WavPath))
			return
		}
		if err := e.completed.Push(res); err != nil {
			bestEffort(e.logger, "queue result", err)
		}
	}
}

// process runs one request and always returns a Result, converting panics
// into failures so the loop survives them.
func (e *Engine) process(ctx context.Context, req *Request) (res *Result) {
	outPath := e.outputPath(req.ID)
	start := time.Now()

	e.running.Add(1)
	defer e.running.Add(-1)

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Synthesis worker panicked", "id", req.ID, "panic", r, "stack", string(debug.Stack()))
			res = &Result{
				Request: req,
				WavPath: outPath,
				Err:     newSynthesisError(ErrWorkerPanic, req.ID, fmt.Errorf("%v", r)),
				Elapsed: time.Since(start),
			}
		}
	}()

	e.logger.Debug("Running piper", "id", req.ID, "wait", time.Since(req.queuedAt).Round(time.Millisecond))

	err := e.runPiper(ctx, req, outPath)
	res = &Result{
		Request: req,
		WavPath: outPath,
		Success: err == nil,
		Err:     err,
		Elapsed: time.Since(start),
	}
	if err != nil {
		e.logger.Warn("Piper failed", "id", req.ID, "text", preview(req.Text), "err", err)
	}
	return res
}
