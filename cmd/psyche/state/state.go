// Package statecmder provides the state command for inspecting a running
// mind's observable state.
package statecmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/inwardlabs/psyche/pkg/cliui"
	"github.com/inwardlabs/psyche/pkg/config"
	"github.com/inwardlabs/psyche/pkg/utils"
)

// stateResponse is the subset of the snapshot the command displays.
type stateResponse struct {
	Mood       string  `json:"mood"`
	Energy     float64 `json:"energy"`
	Confidence float64 `json:"confidence"`

	ShortTerm []struct {
		Speaker string `json:"speaker"`
		Text    string `json:"text"`
	} `json:"short_term"`
	LongTermCount int `json:"long_term_count"`

	Drives []struct {
		Name  string  `json:"name"`
		Level float64 `json:"level"`
	} `json:"drives"`

	Goals []struct {
		Text   string `json:"text"`
		Status string `json:"status"`
	} `json:"goals"`

	DreamPhase string `json:"dream_phase"`
	IdleTicks  int    `json:"idle_ticks"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type stateCommander struct {
	apiTarget string
}

const stateLongDesc string = `Show the current state of a running mind.

Fetches a snapshot from the psyche API: mood, energy, confidence, drives,
goals, long-term memory size, and the tail of short-term memory.

Examples:
  psyche state
  psyche state --api-target http://localhost:8080`

const stateShortDesc string = "Show the mind's current state"

func NewStateCmd() *cobra.Command {
	cmder := &stateCommander{}

	cmd := &cobra.Command{
		Use:   "state",
		Short: stateShortDesc,
		Long:  stateLongDesc,
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

func (c *stateCommander) run() error {
	state, err := c.fetchState()
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s  %s\n", cliui.KeyStyle.Render("Mood:      "), cliui.NameStyle.Render(state.Mood))
	fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Energy:    "), cliui.Meter(state.Energy))
	fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Confidence:"), cliui.Meter(state.Confidence))
	fmt.Printf("  %s  %d memories  %s\n\n",
		cliui.KeyStyle.Render("Long-term: "),
		state.LongTermCount,
		cliui.DimStyle.Render(fmt.Sprintf("(phase: %s, idle ticks: %d)", state.DreamPhase, state.IdleTicks)),
	)

	if len(state.Drives) > 0 {
		fmt.Printf("  %s\n", cliui.KeyStyle.Render("Drives"))
		for _, d := range state.Drives {
			fmt.Printf("    %-12s %s\n", d.Name, cliui.Meter(d.Level))
		}
		fmt.Println()
	}

	if len(state.Goals) > 0 {
		fmt.Printf("  %s\n", cliui.KeyStyle.Render("Goals"))
		for _, g := range state.Goals {
			fmt.Printf("    %s %s\n",
				cliui.DimStyle.Render("["+g.Status+"]"),
				cliui.PreviewStyle.Render(g.Text),
			)
		}
		fmt.Println()
	}

	if len(state.ShortTerm) > 0 {
		fmt.Printf("  %s\n", cliui.KeyStyle.Render("Short-term memory"))
		for i, item := range state.ShortTerm {
			preview := utils.Truncate(item.Text, 72)
			fmt.Printf("    %s %s %s\n",
				cliui.DimStyle.Render(fmt.Sprintf("%d.", i+1)),
				cliui.DimStyle.Render("["+item.Speaker+"]"),
				cliui.PreviewStyle.Render(preview),
			)
		}
		fmt.Println()
	}

	return nil
}

func (c *stateCommander) fetchState() (*stateResponse, error) {
	url := c.apiTarget + "/v1/state"
	httpReq, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetching state: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	state := &stateResponse{}
	if err := json.Unmarshal(body, state); err != nil {
		return nil, fmt.Errorf("parsing state response: %w", err)
	}

	return state, nil
}
