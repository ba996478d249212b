// Package chatcmder provides the chat command for conversing with a running
// mind over the psyche API.
package chatcmder

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inwardlabs/psyche/pkg/cliui"
	"github.com/inwardlabs/psyche/pkg/config"
	"github.com/inwardlabs/psyche/pkg/dotdir"
	"github.com/inwardlabs/psyche/pkg/logger"
)

var (
	userPrompt   = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	psychePrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Render("psyche> ")
)

type chatCommander struct {
	apiTarget string
	markdown  bool
	debug     bool

	logger *zap.Logger
}

// turnRequest is the wire format for POST /v1/turn.
type turnRequest struct {
	Input string `json:"input"`
}

// turnResponse is the subset of the turn result the chat client displays.
type turnResponse struct {
	Reply      string  `json:"reply"`
	Mood       string  `json:"mood"`
	Energy     float64 `json:"energy"`
	Confidence float64 `json:"confidence"`
	Command    bool    `json:"command"`
}

// errorResponse is the API's error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

const chatLongDesc string = `Start an interactive conversation with a running mind.

The chat command sends each line to the psyche API as a turn. The mind
remembers what you tell it, reacts in mood and energy, and may bring up
relevant long-term memories on its own.

The transcript is persisted in the .psyche/ directory so the next chat
session shows where the conversation left off.

Some phrases are handled by the mind itself rather than answered in
conversation: "reflect", "dream", "add goal: <text>", and
"what do you know about <topic>". Two commands are handled locally:
  /new     Clear the saved transcript and start fresh
  /exit    Leave the chat

Examples:
  psyche chat
  psyche chat --api-target http://localhost:8080`

const chatShortDesc string = "Interactive conversation with a running mind"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
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
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.apiTarget, "api-target", "a", defaults.Client.APITarget, "Psyche API server URL")
	cmd.Flags().BoolVar(&cmder.markdown, "markdown", false, "Render replies as markdown")

	return cmd
}

func (c *chatCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	manager := dotdir.NewManager()

	// Session persistence only works when a .psyche dir is resolvable.
	sessionDir, err := manager.Target("")
	if err != nil {
		return fmt.Errorf("resolving .psyche directory: %w", err)
	}

	var session *dotdir.SessionState
	if sessionDir != "" {
		session, err = manager.LoadSessionState("")
		if err != nil {
			return fmt.Errorf("loading session state: %w", err)
		}
	}
	if session == nil {
		session = &dotdir.SessionState{}
	}

	fmt.Println()
	if len(session.Transcript) > 0 {
		fmt.Printf("  %s Resuming conversation %s\n",
			cliui.SuccessMark,
			cliui.DimStyle.Render(fmt.Sprintf("(%d messages)", len(session.Transcript))),
		)
		for _, msg := range lastMessages(session.Transcript, 4) {
			fmt.Printf("  %s %s\n",
				cliui.DimStyle.Render(msg.Speaker+">"),
				cliui.PreviewStyle.Render(msg.Text),
			)
		}
	} else {
		fmt.Printf("  %s New conversation\n", cliui.DimStyle.Render("●"))
	}

	fmt.Printf("  %s %s\n\n",
		cliui.KeyStyle.Render("Mind:"),
		cliui.NameStyle.Render(c.apiTarget),
	)
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}
		if input == "/new" {
			if sessionDir != "" {
				if err := manager.ClearSession(""); err != nil {
					fmt.Fprintf(os.Stderr, "  %s %v\n", cliui.FailMark, err)
					continue
				}
			}
			session = &dotdir.SessionState{}
			fmt.Printf("  %s Transcript cleared\n\n", cliui.SuccessMark)
			continue
		}

		result, err := c.sendTurn(input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s %v\n", cliui.FailMark, err)
			continue
		}

		reply := result.Reply
		if c.markdown {
			if rendered, err := cliui.RenderMarkdown(reply); err == nil {
				reply = strings.TrimRight(rendered, "\n")
			}
		}

		fmt.Printf("%s%s\n", psychePrompt, reply)
		fmt.Printf("  %s\n\n", cliui.DimStyle.Render(
			fmt.Sprintf("mood: %s  energy: %.2f  confidence: %.2f", result.Mood, result.Energy, result.Confidence),
		))

		// Slash commands don't belong in the transcript.
		if result.Command {
			continue
		}

		session.Transcript = append(session.Transcript,
			dotdir.SessionMessage{Speaker: "you", Text: input},
			dotdir.SessionMessage{Speaker: "psyche", Text: result.Reply},
		)
		if sessionDir != "" {
			if err := manager.SaveSession(session, ""); err != nil {
				c.logger.Warn("saving session state", zap.Error(err))
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}

// sendTurn sends one turn to the psyche API and returns the mind's reply.
func (c *chatCommander) sendTurn(input string) (turnResponse, error) {
	body, err := json.Marshal(turnRequest{Input: input})
	if err != nil {
		return turnResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	c.logger.Debug("sending turn",
		zap.String("api_target", c.apiTarget),
		zap.Int("input_len", len(input)),
	)

	url := c.apiTarget + "/v1/turn"
	httpReq, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return turnResponse{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		// The responder may be an LLM; turns can be slow.
		Timeout: 2 * time.Minute,
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return turnResponse{}, fmt.Errorf("sending turn to API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return turnResponse{}, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return turnResponse{}, fmt.Errorf("API returned status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return turnResponse{}, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result turnResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return turnResponse{}, fmt.Errorf("parsing turn response: %w", err)
	}

	return result, nil
}

// lastMessages returns up to n trailing messages from the transcript.
func lastMessages(msgs []dotdir.SessionMessage, n int) []dotdir.SessionMessage {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}
