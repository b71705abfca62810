// Package cache stores synthesized speech buffers keyed by normalized text
// and speed. The in-memory tier (L1) never evicts and lives as long as its
// engine; the optional disk tier (L2) persists zstd-compressed samples across
// runs.
package cache
