package tts

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/voicebox/internal/audio"
	"github.com/dgnsrekt/voicebox/internal/wav"
)

// The test binary doubles as a fake piper. When fakeModeEnv is set the
// process behaves like piper in that mode instead of running tests.
const (
	fakeModeEnv = "VOICEBOX_FAKE_PIPER"
	fakeLogEnv  = "VOICEBOX_FAKE_PIPER_LOG"

	fakeSamples = 8820
	fakeRate    = 22050
)

func TestMain(m *testing.M) {
	if mode := os.Getenv(fakeModeEnv); mode != "" {
		os.Exit(fakePiper(mode, os.Args[1:]))
	}
	os.Exit(m.Run())
}

func fakePiper(mode string, args []string) int {
	var model, scale, out string
	for i := 0; i+1 < len(args); i++ {
		switch args[i] {
		case "-m":
			model = args[i+1]
		case "--length-scale":
			scale = args[i+1]
		case "--output_file":
			out = args[i+1]
		}
	}

	text, _ := bufio.NewReader(os.Stdin).ReadString('\n')

	var extra []string
	if len(args) > 6 {
		extra = args[6:]
	}

	if path := os.Getenv(fakeLogEnv); path != "" {
		if f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
			fmt.Fprintf(f, "%s\t%s\t%s\t%s\n", strings.TrimSuffix(text, "\n"), scale, filepath.Base(model), strings.Join(extra, " "))
			f.Close()
		}
	}

	switch mode {
	case "ok":
		samples := make([]float32, fakeSamples)
		for i := range samples {
			samples[i] = float32(0.5 * math.Sin(2*math.Pi*220*float64(i)/fakeRate))
		}
		buf, _ := audio.NewBuffer(samples, 1, fakeRate)
		if err := wav.EncodeFile(out, buf, 16); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case "fail":
		fmt.Fprintln(os.Stderr, "model load failed")
		return 3
	case "nooutput":
		return 0
	case "garbage":
		_ = os.WriteFile(out, []byte("this is not a wav file at all, not even close......"), 0o644)
		return 0
	case "hang":
		time.Sleep(time.Minute)
		return 0
	default:
		fmt.Fprintln(os.Stderr, "unknown mode", mode)
		return 2
	}
}

// installFakePiper lays out <dir>/piper/<exe> pointing at the test binary
// plus two voice models, and returns dir.
func installFakePiper(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	voices := filepath.Join(dir, "piper", "voices")
	if err := os.MkdirAll(voices, 0o755); err != nil {
		t.Fatal(err)
	}

	self, err := os.Executable()
	if err != nil {
		t.Fatal(err)
	}
	exe := filepath.Join(dir, "piper", executableName())
	if err := os.Symlink(self, exe); err != nil {
		if err := copyFile(self, exe); err != nil {
			t.Fatalf("install fake piper: %v", err)
		}
	}

	for _, name := range []string{"en_US-test-low.onnx", "en_US-test-medium.onnx"} {
		if err := os.WriteFile(filepath.Join(voices, name), []byte("onnx"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
