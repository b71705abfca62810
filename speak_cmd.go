package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/voicebox/internal/wav"
)

var (
	outFile    string
	bitDepth   int
	noFallback bool

	speakCmd = &cobra.Command{
		Use:     "speak [TEXT...]",
		Short:   "Speak a line with piper, babbling if piper is unavailable",
		Long:    paragraph(fmt.Sprintf("\n%s a line of text through the piper engine. When piper is missing or fails the line is babbled instead. Text is read from stdin when no arguments are given.", keyword("Speak"))),
		Example: paragraph("voicebox speak \"Stay a while and listen.\"\necho \"Hello\" | voicebox speak --out hello.wav"),
		RunE:    runSpeak,
	}

	babbleCmd = &cobra.Command{
		Use:     "babble [TEXT...]",
		Short:   "Babble a line with the procedural voice",
		Long:    paragraph(fmt.Sprintf("\n%s a line with the built-in procedural voice. Syllable count, punctuation and question intonation follow the text.", keyword("Babble"))),
		Example: paragraph("voicebox babble \"Is anyone there?\"\nvoicebox babble --out line.wav \"Over here!\""),
		RunE:    runBabble,
	}
)

func runSpeak(cmd *cobra.Command, args []string) error {
	return say(cmd, args, true)
}

func runBabble(cmd *cobra.Command, args []string) error {
	return say(cmd, args, false)
}

func say(cmd *cobra.Command, args []string, withEngine bool) error {
	text, err := readText(args, os.Stdin)
	if err != nil {
		return err
	}

	h, err := newHost(cfg, withEngine)
	if err != nil {
		return err
	}
	defer h.close()
	h.fallback = !noFallback

	ctx := cmd.Context()
	u, err := h.synthesize(ctx, text, cfg.Speed)
	if err != nil {
		return err
	}
	log.Info("Speaking", "source", u.source(), "text", text)

	if outFile != "" {
		if err := wav.EncodeFile(outFile, h.render(u), bitDepth); err != nil {
			return fmt.Errorf("unable to write %s: %w", outFile, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Wrote", outFile, faint("("+u.source()+")"))
		return nil
	}

	player, err := h.openPlayer()
	if err != nil {
		return err
	}
	defer func() { _ = player.Close() }()

	return h.play(ctx, player, u)
}

// readText joins args, or reads stdin when there are none and it is a pipe.
func readText(args []string, stdin *os.File) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if yes, err := isPipe(stdin); err != nil {
		return "", err
	} else if !yes {
		return "", errors.New("nothing to say: pass text as arguments or on stdin")
	}

	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("unable to read from stdin: %w", err)
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return "", errors.New("nothing to say: stdin was empty")
	}
	return text, nil
}

func isPipe(f *os.File) (bool, error) {
	stat, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func init() {
	for _, c := range []*cobra.Command{speakCmd, babbleCmd} {
		c.Flags().StringVarP(&outFile, "out", "o", "", "write a WAV file instead of playing")
		c.Flags().IntVar(&bitDepth, "bit-depth", 16, "bit depth of the written WAV file (8, 16, 24 or 32)")
	}
	speakCmd.Flags().BoolVar(&noFallback, "no-fallback", false, "fail instead of babbling when piper cannot speak")
}
