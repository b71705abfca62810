package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/voicebox/internal/audio"
)

var (
	fromStart   bool
	linesPerMin int

	watchCmd = &cobra.Command{
		Use:     "watch FILE",
		Short:   "Speak every line appended to a file",
		Long:    paragraph(fmt.Sprintf("\n%s a dialogue feed: each complete line appended to FILE is spoken as it arrives. Lines arriving faster than the rate limit are dropped.", keyword("Watch"))),
		Example: paragraph("voicebox watch ~/.local/share/game/dialogue.log"),
		Args:    cobra.ExactArgs(1),
		RunE:    runWatch,
	}
)

// tailer returns complete lines appended to a file since the last call.
type tailer struct {
	path   string
	offset int64
}

func newTailer(path string, fromStart bool) (*tailer, error) {
	t := &tailer{path: path}
	if fromStart {
		return t, nil
	}
	st, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to stat file: %w", err)
	}
	t.offset = st.Size()
	return t, nil
}

// next reads from the last offset up to the final newline. A shrunk file is
// treated as rotated and read again from the start. Blank lines are skipped.
func (t *tailer) next() ([]string, error) {
	f, err := os.Open(t.path)
	if errors.Is(err, os.ErrNotExist) {
		t.offset = 0
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("unable to stat file: %w", err)
	}
	if st.Size() < t.offset {
		t.offset = 0
	}
	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("unable to seek: %w", err)
	}

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("unable to read file: %w", err)
	}
	end := bytes.LastIndexByte(b, '\n')
	if end < 0 {
		return nil, nil
	}
	t.offset += int64(end + 1)

	var lines []string
	for _, line := range strings.Split(string(b[:end]), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("unable to get absolute path: %w", err)
	}

	t, err := newTailer(path, fromStart)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("unable to watch %s: %w", dir, err)
	}
	log.Info("Watching dialogue feed", "file", path)

	h, err := newHost(cfg, true)
	if err != nil {
		return err
	}
	defer h.close()

	player, err := h.openPlayer()
	if err != nil {
		return err
	}
	defer func() { _ = player.Close() }()

	ctx, cancel := context.WithCancel(cmd.Context())
	lines := make(chan string, 64)
	spoken := make(chan struct{})
	go func() {
		defer close(spoken)
		speakLines(ctx, h, player, lines)
	}()
	defer func() {
		cancel()
		close(lines)
		<-spoken
	}()

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(max(linesPerMin, 1))), 3)
	queue := func() {
		next, err := t.next()
		if err != nil {
			log.Warn("Could not read dialogue feed", "err", err)
			return
		}
		for _, line := range next {
			if !limiter.Allow() {
				log.Warn("Dropping line over the rate limit", "text", line)
				continue
			}
			select {
			case lines <- line:
			default:
				log.Warn("Dropping line, speaker is behind", "text", line)
			}
		}
	}
	if fromStart {
		queue()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path || (!event.Has(fsnotify.Write) && !event.Has(fsnotify.Create)) {
				continue
			}
			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			queue()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Debug("fsnotify error", "dir", dir, "error", err)
		}
	}
}

// speakLines plays queued lines one after another. It is the only caller
// of the engine's Drain.
func speakLines(ctx context.Context, h *host, sink audio.Sink, lines <-chan string) {
	for line := range lines {
		u, err := h.synthesize(ctx, line, h.cfg.Speed)
		if err != nil {
			if ctx.Err() == nil {
				log.Warn("Could not speak line", "err", err)
			}
			continue
		}
		log.Info("Speaking", "source", u.source(), "text", line)
		if err := h.play(ctx, sink, u); err != nil && ctx.Err() == nil {
			log.Warn("Playback failed", "err", err)
		}
	}
}

func init() {
	watchCmd.Flags().BoolVar(&fromStart, "from-start", false, "speak lines already in the file")
	watchCmd.Flags().IntVar(&linesPerMin, "rate", 30, "maximum lines spoken per minute")
}
