package tts

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

var errFound = errors.New("found")

// executableName returns the Piper binary name for this platform.
func executableName() string {
	if runtime.GOOS == "windows" {
		return "piper.exe"
	}
	return "piper"
}

// findExecutable returns <installDir>/piper/<exe> if it is a regular file.
func findExecutable(installDir string) (string, bool) {
	path := filepath.Join(installDir, "piper", executableName())
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return path, false
	}
	return path, true
}

// findModel walks piperDir in lexical order and returns the first *.onnx
// file whose name contains "medium", or else the first *.onnx file.
func findModel(piperDir string) (string, bool) {
	var first string
	var preferred string

	err := filepath.WalkDir(piperDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			if d != nil && d.IsDir() && path != piperDir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".onnx") {
			return nil
		}
		if first == "" {
			first = path
		}
		if strings.Contains(strings.ToLower(d.Name()), "medium") {
			preferred = path
			return errFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFound) && first == "" {
		return "", false
	}

	if preferred != "" {
		return preferred, true
	}
	return first, first != ""
}
