// Package tts drives an external Piper executable to turn short text into
// audio buffers without blocking the caller.
//
// An Engine owns one worker goroutine. Speak enqueues work (or answers from
// the cache), the worker runs one subprocess at a time, and the caller
// collects finished buffers by calling Drain on its own schedule. Callbacks
// only ever run inside Speak (cache hits, unavailable engine) or Drain.
package tts
