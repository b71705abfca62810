//go:build !unix

package tts

// ensureExecutable is a no-op where file modes do not gate execution.
func ensureExecutable(string) error { return nil }
