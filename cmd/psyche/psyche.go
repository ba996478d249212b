// Package psychecmder
package psychecmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/inwardlabs/psyche/cmd/psyche/chat"
	configcmder "github.com/inwardlabs/psyche/cmd/psyche/config"
	dreamcmder "github.com/inwardlabs/psyche/cmd/psyche/dream"
	initcmder "github.com/inwardlabs/psyche/cmd/psyche/init"
	servecmder "github.com/inwardlabs/psyche/cmd/psyche/serve"
	statecmder "github.com/inwardlabs/psyche/cmd/psyche/state"
	versioncmder "github.com/inwardlabs/psyche/cmd/version"
)

const psycheLongDesc string = `Psyche is a simulated mind you can talk to.

It keeps short-term and long-term memory, tracks mood, drives, traits,
goals, and values, and consolidates experience through dream cycles.

Run the server and talk to it:
  psyche serve    Run the mind as an API server
  psyche chat     Interactive conversation with a running mind
  psyche state    Inspect the mind's current state
  psyche dream    Ask the mind to run a dream cycle`

const psycheShortDesc string = "Psyche - a mind that remembers"

func NewPsycheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "psyche",
		Short: psycheShortDesc,
		Long:  psycheLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory holding config.toml (default: ./.psyche or ~/.psyche)")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(statecmder.NewStateCmd())
	cmd.AddCommand(dreamcmder.NewDreamCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
