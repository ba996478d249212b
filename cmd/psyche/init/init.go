// Package initcmder provides the init command for initializing a local
// .psyche directory in the current working directory.
package initcmder

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/inwardlabs/psyche/pkg/config"
)

const (
	dirName = ".psyche"
)

const initLongDesc string = `Initialize a new .psyche/ directory in the current working directory.

Creates a local .psyche/ directory that takes precedence over the default
~/.psyche/ directory for configuration, memory databases, session state,
and other psyche operations, then writes a config.toml into it.

This is useful for maintaining a separate mind per project or directory.

Presets select a ready-made configuration:
  lite      Fully in-process: rule-based replies, in-memory storage
  ollama    Local Ollama for replies and embeddings, SQLite persistence
  kafka     The ollama preset plus Kafka event publishing

A preset may also be an http(s) URL pointing at a config.toml to fetch.

Examples:
  psyche init
  psyche init --preset lite
  psyche init --preset ollama
  psyche init --preset https://example.com/psyche-config.toml`

const initShortDesc string = "Initialize a local .psyche/ directory"

type initCommander struct {
	preset string
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.preset, "preset", "p", "", "Configuration preset (lite, ollama, kafka) or a config.toml URL")

	return cmd
}

func (c *initCommander) run() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, statErr := os.Stat(dir)
	alreadyInitialized := statErr == nil && info.IsDir()

	if !alreadyInitialized {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .psyche directory: %w", err)
		}
	}

	// Re-running a bare init leaves an existing config.toml alone; an
	// explicit preset always overwrites it.
	if alreadyInitialized && c.preset == "" {
		if _, err := os.Stat(filepath.Join(dir, "config.toml")); err == nil {
			fmt.Printf("Already initialized: %s\n", dir)
			return nil
		}
	}

	cfg, err := c.resolveConfig()
	if err != nil {
		return err
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("creating configer: %w", err)
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if alreadyInitialized {
		fmt.Printf("Already initialized: %s\n", dir)
		return nil
	}

	fmt.Printf("Initialized .psyche directory: %s\n", dir)
	return nil
}

// resolveConfig turns the --preset flag into a full config: a named preset,
// a remote config.toml URL, or the defaults when no preset was given.
func (c *initCommander) resolveConfig() (*config.Config, error) {
	switch {
	case c.preset == "":
		return config.NewDefaultConfig(), nil
	case strings.HasPrefix(c.preset, "http://") || strings.HasPrefix(c.preset, "https://"):
		return fetchRemoteConfig(c.preset)
	default:
		return config.PresetConfig(c.preset)
	}
}

func fetchRemoteConfig(url string) (*config.Config, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading remote config: %w", err)
	}

	cfg, err := config.ParseConfigTOML(data)
	if err != nil {
		return nil, fmt.Errorf("parsing remote config: %w", err)
	}

	return cfg, nil
}
