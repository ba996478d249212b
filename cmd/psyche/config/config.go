// Package configcmder provides the config command for managing persistent
// psyche configuration stored in the .psyche/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent psyche configuration.

Configuration is stored as config.toml in the .psyche/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  storage.sqlite_path, api.listen, client.api_target,
  memory.provider,
  vector_store.provider, vector_store.target,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  responder.provider, responder.target, responder.model,
  eventstream.enabled, eventstream.brokers, eventstream.topic

Use subcommands to get, set, or list configuration values:
  psyche config set <key> <value>    Set a configuration value
  psyche config get <key>            Get a configuration value
  psyche config list                 List all configuration values

Examples:
  psyche config set responder.provider ollama
  psyche config set embedding.model nomic-embed-text
  psyche config get responder.provider
  psyche config list`

const configShortDesc string = "Manage persistent psyche configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
