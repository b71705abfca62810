package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dgnsrekt/voicebox/internal/config"
)

const configHeader = `# voicebox configuration.
# Every key can be overridden with a VOICEBOX_ environment variable, e.g.
# VOICEBOX_PIPER_INSTALL_DIR or VOICEBOX_CACHE_DISK.
#
# piper.install_dir must contain piper/piper (piper.exe on Windows) and at
# least one .onnx voice model below piper/.

`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the voicebox config file",
	Long:    paragraph(fmt.Sprintf("\n%s the voicebox config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("voicebox config\nvoicebox config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("voicebox", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

// defaultConfig renders the built-in defaults as commented YAML.
func defaultConfig() ([]byte, error) {
	b, err := yaml.Marshal(config.Default())
	if err != nil {
		return nil, fmt.Errorf("unable to encode default config: %w", err)
	}
	return append([]byte(configHeader), b...), nil
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viperConfigFile()
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		content, err := defaultConfig()
		if err != nil {
			return err
		}
		if err := os.WriteFile(configFile, content, 0o600); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}

// viperConfigFile is the file viper loaded, or voicebox.yml in the first
// config dir when none was found.
func viperConfigFile() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	dirs, err := configDirs()
	if err != nil || len(dirs) == 0 {
		return config.AppName + ".yml"
	}
	return filepath.Join(dirs[0], config.AppName+".yml")
}
