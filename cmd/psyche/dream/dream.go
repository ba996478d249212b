// Package dreamcmder provides the dream command for asking a running mind to
// run a dream cycle on demand.
package dreamcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/inwardlabs/psyche/pkg/cliui"
	"github.com/inwardlabs/psyche/pkg/config"
)

// dreamResponse is the subset of the dream result the command displays.
type dreamResponse struct {
	Theme   string  `json:"Theme"`
	Valence float64 `json:"Valence"`
	Item    struct {
		Text string   `json:"text"`
		Tags []string `json:"tags"`
	} `json:"Item"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type dreamCommander struct {
	apiTarget string
}

const dreamLongDesc string = `Ask a running mind to run a dream cycle.

Dreaming samples emotionally charged long-term memories, composes them into
a new dream memory under a theme, and nudges mood by the dream's valence.
An asked-for dream skips the usual energy gate. The mind still refuses when
it has too few memories; the command reports that rather than failing.

Examples:
  psyche dream
  psyche dream --api-target http://localhost:8080`

const dreamShortDesc string = "Ask the mind to dream"

func NewDreamCmd() *cobra.Command {
	cmder := &dreamCommander{}

	cmd := &cobra.Command{
		Use:   "dream",
		Short: dreamShortDesc,
		Long:  dreamLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("api-target") {
				cmder.apiTarget = cfg.Client.APITarget
			}
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.apiTarget, "api-target", "a", defaults.Client.APITarget, "Psyche API server URL")

	return cmd
}

func (c *dreamCommander) run() error {
	url := c.apiTarget + "/v1/dream"
	httpReq, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(nil))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending dream request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	// 409 means the mind declined: not enough memories yet.
	if resp.StatusCode == http.StatusConflict {
		var apiErr errorResponse
		_ = json.Unmarshal(body, &apiErr)
		fmt.Printf("\n  %s %s\n\n",
			cliui.DimStyle.Render("●"),
			cliui.DimStyle.Render("The mind is not ready to dream: "+apiErr.Error),
		)
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result dreamResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parsing dream response: %w", err)
	}

	fmt.Printf("\n  %s %s %s\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render("Dreamed:"),
		cliui.NameStyle.Render(result.Theme),
	)
	fmt.Printf("  %s  %.2f\n", cliui.KeyStyle.Render("Valence:"), result.Valence)
	fmt.Printf("  %s\n\n", cliui.PreviewStyle.Render(result.Item.Text))

	return nil
}
