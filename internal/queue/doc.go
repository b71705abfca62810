// Package queue provides the thread-safe FIFO used between the speech
// engine's caller and its worker.
package queue
