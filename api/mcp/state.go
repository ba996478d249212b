package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inwardlabs/psyche/pkg/engine"
)

var (
	mindStateToolName    = "mind_state"
	mindStateDescription = "Inspect the mind's current state: mood, energy, confidence, short-term memory, drives, traits, goals, recent outcome trend, and the last dream. Use this to understand what the mind is feeling and attending to."
)

// MindStateInput represents the (empty) input arguments for the mind_state tool.
type MindStateInput struct{}

// MindStateOutput represents the structured output of a state inspection.
type MindStateOutput struct {
	State engine.Snapshot `json:"state"`
}

// handleMindState serves a snapshot of the mind via MCP.
func (s *Server) handleMindState(ctx context.Context, _ *mcp.CallToolRequest, _ MindStateInput) (*mcp.CallToolResult, MindStateOutput, error) {
	snapshot, err := s.config.Mind.Snapshot(ctx)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("State inspection failed: %v", err)},
			},
		}, MindStateOutput{}, nil
	}

	output := MindStateOutput{State: snapshot}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize results: %v", err)},
			},
		}, MindStateOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
