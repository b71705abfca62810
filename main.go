// Package main provides the entry point for the voicebox CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/voicebox/internal/config"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	verbose    bool

	// cfg is loaded before any subcommand runs.
	cfg config.Config

	stopMetrics = func(context.Context) error { return nil }

	rootCmd = &cobra.Command{
		Use:   "voicebox",
		Short: "Give short lines of dialogue a voice",
		Long: paragraph(
			fmt.Sprintf("\nSpeak dialogue through %s, and %s when it is missing.", keyword("piper"), keyword("babble")),
		),
		SilenceErrors:     false,
		SilenceUsage:      true,
		PersistentPreRunE: prepare,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return stopMetrics(ctx)
		},
	}
)

// prepare reads the config file, layers flags and environment on top and
// starts the metrics endpoint when one is configured.
func prepare(cmd *cobra.Command, _ []string) error {
	if verbose {
		logToStderr()
	}

	if err := readConfigFile(); err != nil {
		return err
	}

	var err error
	cfg, err = config.Load(viper.GetViper())
	if err != nil {
		return err //nolint:wrapcheck
	}

	// config and man don't need the engine or metrics.
	switch cmd.Name() {
	case "config", "man":
		return nil
	}

	stop, err := setupMetrics(cfg.MetricsAddr)
	if err != nil {
		return err
	}
	stopMetrics = stop
	return nil
}

func readConfigFile() error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		dirs, err := configDirs()
		if err != nil {
			return err
		}
		for _, v := range dirs {
			viper.AddConfigPath(v)
		}
		viper.SetConfigName(config.AppName)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("could not parse configuration file: %w", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
	}
	return nil
}

// configDirs lists the places searched for voicebox.yml, most specific first.
func configDirs() ([]string, error) {
	scope := gap.NewScope(gap.User, config.AppName)
	dirs, err := scope.ConfigDirs()
	if err != nil {
		return nil, fmt.Errorf("could not find configuration directory: %w", err)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, config.AppName)}, dirs...)
	}

	if c := os.Getenv("VOICEBOX_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}
	return dirs, nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = rootCmd.ExecuteContext(ctx)
	stop()
	_ = closer()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default searches the user config dir for voicebox.yml)")
	flags.BoolVar(&verbose, "verbose", false, "log to stderr instead of the log file")
	flags.Float64P("speed", "s", 1.0, "speaking rate between 0.5 and 2.0")
	flags.String("install-dir", "", "directory containing piper/<exe> and its voice models")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9464")
	flags.Bool("disk-cache", false, "keep synthesized audio in the persistent cache")

	// Config bindings
	_ = viper.BindPFlag("speed", flags.Lookup("speed"))
	_ = viper.BindPFlag("piper.install_dir", flags.Lookup("install-dir"))
	_ = viper.BindPFlag("metrics_addr", flags.Lookup("metrics-addr"))
	_ = viper.BindPFlag("cache.disk", flags.Lookup("disk-cache"))

	rootCmd.AddCommand(speakCmd, babbleCmd, watchCmd, statusCmd, configCmd, manCmd)
}
