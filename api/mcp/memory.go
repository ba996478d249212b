package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inwardlabs/psyche/pkg/memory"
)

var (
	memoryQueryToolName    = "memory_query"
	memoryQueryDescription = "Query the mind's long-term memory by tags. Returns non-retired memories matching any of the given tags, strongest first. Use this to retrieve what the mind knows about specific topics."
)

// MemoryQueryInput represents the input arguments for the memory_query tool.
type MemoryQueryInput struct {
	Tags  []string `json:"tags" jsonschema:"the topic tags to match memories against"`
	Limit int      `json:"limit,omitempty" jsonschema:"maximum number of memories to return (default: 10)"`
}

// MemoryQueryOutput represents the structured output of a memory query.
type MemoryQueryOutput struct {
	Memories []memory.Item `json:"memories"`
	Count    int           `json:"count"`
}

// handleMemoryQuery processes a tag-based memory query via MCP.
func (s *Server) handleMemoryQuery(ctx context.Context, _ *mcp.CallToolRequest, input MemoryQueryInput) (*mcp.CallToolResult, MemoryQueryOutput, error) {
	if len(input.Tags) == 0 {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: "tags are required"},
			},
		}, MemoryQueryOutput{}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	items, err := s.config.Mind.QueryMemories(ctx, input.Tags, limit)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Memory query failed: %v", err)},
			},
		}, MemoryQueryOutput{}, nil
	}

	if items == nil {
		items = []memory.Item{}
	}

	output := MemoryQueryOutput{Memories: items, Count: len(items)}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize results: %v", err)},
			},
		}, MemoryQueryOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
