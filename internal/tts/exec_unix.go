//go:build unix

package tts

import (
	"os"

	"golang.org/x/sys/unix"
)

// ensureExecutable adds execute bits to path when the current user cannot
// run it. Archives unpacked on other platforms often lose them.
func ensureExecutable(path string) error {
	if unix.Access(path, unix.X_OK) == nil {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.Chmod(path, info.Mode()|0o111)
}
