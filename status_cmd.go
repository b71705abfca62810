package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/voicebox/internal/tts"
	"github.com/dgnsrekt/voicebox/internal/voice"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether piper can be used and what is cached",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		h, err := newHost(cfg, true)
		if err != nil {
			return err
		}
		defer h.close()

		writeStatus(cmd.OutOrStdout(), h.engine.Stats(), h.synth)
		return nil
	},
}

func writeStatus(w io.Writer, st tts.Stats, synth *voice.Synthesizer) {
	var b strings.Builder
	row := func(name, value string) {
		fmt.Fprintf(&b, "%s %s\n", label(name), value)
	}

	b.WriteString(heading("Piper") + "\n")
	if st.Available {
		row("available", keyword("yes"))
		row("executable", st.Executable)
		row("model", st.Model)
	} else {
		row("available", warning("no")+faint(" (lines will be babbled)"))
		row("install dir", cfg.Piper.InstallDir)
	}
	row("timeout", cfg.Piper.Timeout.String())
	if cfg.Piper.ExtraArgs != "" {
		row("extra args", cfg.Piper.ExtraArgs)
	}

	b.WriteString(heading("Cache") + "\n")
	if st.DiskEnabled {
		row("disk", cfg.Cache.Dir)
		row("disk usage", fmt.Sprintf("%s of %s", humanize.IBytes(uint64(st.DiskBytes)), humanize.IBytes(uint64(cfg.Cache.CapacityMB)<<20))) //nolint:gosec
		row("max age", strings.TrimSpace(humanize.RelTime(time.Now().Add(-cfg.Cache.MaxAge), time.Now(), "", "")))
	} else {
		row("disk", faint("disabled"))
	}
	row("memory", fmt.Sprintf("%d entries, %s", st.CacheEntries, humanize.IBytes(uint64(st.CacheBytes)))) //nolint:gosec

	b.WriteString(heading("Voice") + "\n")
	row("presets", humanize.Comma(int64(len(voice.Presets))))
	row("sample rate", fmt.Sprintf("%s Hz", humanize.Comma(int64(synth.SampleRate()))))
	row("base pitch", humanize.FtoaWithDigits(cfg.Voice.BasePitch, 2))

	fmt.Fprint(w, b.String())
}
