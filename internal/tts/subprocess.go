package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// stderrLimit caps how much of Piper's stderr is kept for error messages.
const stderrLimit = 512

// runPiper synthesizes req into outPath. It returns nil only when Piper
// exited cleanly and the output file exists.
func (e *Engine) runPiper(ctx context.Context, req *Request, outPath string) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	args := []string{
		"-m", e.modelPath,
		"--length-scale", fmt.Sprintf("%.2f", LengthScale(req.Speed)),
		"--output_file", outPath,
	}
	args = append(args, e.cfg.ExtraArgs...)

	cmd := exec.CommandContext(ctx, e.exePath, args...)

	// Stdin is set before Start so Piper never sees an empty pipe.
	cmd.Stdin = strings.NewReader(req.Text + "\n")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		return newSynthesisError(ErrSpawn, req.ID, err)
	}

	err := cmd.Wait()
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return newSynthesisError(ErrTimeout, req.ID, fmt.Errorf("killed after %v", e.cfg.Timeout))
	case ctx.Err() != nil:
		return newSynthesisError(ErrCanceled, req.ID, ctx.Err())
	case err != nil:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return newSynthesisError(ErrNonZeroExit, req.ID,
				fmt.Errorf("exit code %d: %s", exitErr.ExitCode(), tail(stderr.String())))
		}
		return newSynthesisError(ErrSpawn, req.ID, err)
	}

	if _, err := os.Stat(outPath); err != nil {
		return newSynthesisError(ErrMissingOutput, req.ID, err)
	}
	return nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrLimit {
		s = "..." + s[len(s)-stderrLimit:]
	}
	return s
}
