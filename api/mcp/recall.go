package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/inwardlabs/psyche/pkg/engine"
	"github.com/inwardlabs/psyche/pkg/memory"
)

var (
	recallToolName    = "recall"
	recallDescription = "Recall memories by meaning using semantic search. Returns the long-term memories most relevant to the query text, strongest match first. Use this when the exact topic tags are unknown."
)

// RecallInput represents the input arguments for the recall tool.
type RecallInput struct {
	Query string `json:"query" jsonschema:"the query text to find relevant memories"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of memories to return (default: 5)"`
}

// RecallOutput represents the structured output of a semantic recall.
type RecallOutput struct {
	Query    string        `json:"query"`
	Memories []memory.Item `json:"memories"`
	Count    int           `json:"count"`
}

// handleRecall processes a semantic recall request via MCP.
func (s *Server) handleRecall(ctx context.Context, _ *mcp.CallToolRequest, input RecallInput) (*mcp.CallToolResult, RecallOutput, error) {
	logger := s.config.Logger

	if input.Query == "" {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: "query is required"},
			},
		}, RecallOutput{}, nil
	}

	// Default topK if not specified
	topK := input.TopK
	if topK <= 0 {
		topK = 5
	}

	logger.Debug("MCP recall request",
		zap.String("query", input.Query),
		zap.Int("topK", topK),
	)

	items, err := s.config.Mind.Recall(ctx, input.Query, topK)
	if err != nil {
		if errors.Is(err, engine.ErrNoRecall) {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{
					&mcp.TextContent{Text: "semantic recall is not configured: vector driver and embedder are required"},
				},
			}, RecallOutput{}, nil
		}

		logger.Error("failed to recall memories", zap.Error(err))
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Recall failed: %v", err)},
			},
		}, RecallOutput{}, nil
	}

	if items == nil {
		items = []memory.Item{}
	}

	output := RecallOutput{
		Query:    input.Query,
		Memories: items,
		Count:    len(items),
	}

	// Serialize the structured output as JSON for the text field
	// Per MCP spec: tools returning structured content should also return
	// serialized JSON in a TextContent block for backwards compatibility
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal recall output", zap.Error(err))
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize results: %v", err)},
			},
		}, RecallOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
