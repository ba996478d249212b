package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/inwardlabs/psyche/pkg/dream"
	"github.com/inwardlabs/psyche/pkg/engine"
)

// defaultMemoryLimit bounds memory queries when no limit is given.
const defaultMemoryLimit = 10

// ErrorResponse is the JSON error envelope for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TurnRequest is the body of POST /v1/turn.
type TurnRequest struct {
	Input string `json:"input"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleTurn runs one conversational turn through the mind.
func (s *Server) handleTurn(c *fiber.Ctx) error {
	req := TurnRequest{}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	result, err := s.mind.ProcessTurn(c.Context(), req.Input)
	if err != nil {
		if errors.Is(err, engine.ErrEmptyInput) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "input is required"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(result)
}

// handleIdle advances the mind through one idle tick.
func (s *Server) handleIdle(c *fiber.Ctx) error {
	result, err := s.mind.IdleTick(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(result)
}

// handleDream forces a dream cycle, skipping the energy gate. A blocked dream
// (too few memories) maps to 409 so callers can tell it apart from a real
// failure.
func (s *Server) handleDream(c *fiber.Ctx) error {
	result, err := s.mind.Dream(c.Context())
	if err != nil {
		if errors.Is(err, dream.ErrInsufficientMemories) {
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(result)
}

// handleState returns a snapshot of the mind's observable state.
func (s *Server) handleState(c *fiber.Ctx) error {
	snapshot, err := s.mind.Snapshot(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(snapshot)
}

// handleMemories queries long-term memory by tags.
// Query parameters:
//   - tags (required): comma-separated tag list
//   - limit (optional, default 10): maximum items to return
func (s *Server) handleMemories(c *fiber.Ctx) error {
	rawTags := c.Query("tags")
	if rawTags == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "tags parameter is required"})
	}

	var tags []string
	for _, tag := range strings.Split(rawTags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	limit := defaultMemoryLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "limit must be a positive integer"})
		}
		limit = parsed
	}

	items, err := s.mind.QueryMemories(c.Context(), tags, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(fiber.Map{
		"count":    len(items),
		"memories": items,
	})
}

// handleRecall runs semantic search over long-term memory.
// Query parameters:
//   - query (required): the search query text
//   - top_k (optional, default 5): number of results to return
func (s *Server) handleRecall(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "query parameter is required"})
	}

	topK := 5
	if topKStr := c.Query("top_k"); topKStr != "" {
		parsed, err := strconv.Atoi(topKStr)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "top_k must be a positive integer"})
		}
		topK = parsed
	}

	items, err := s.mind.Recall(c.Context(), query, topK)
	if err != nil {
		if errors.Is(err, engine.ErrNoRecall) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
				Error: "recall is not configured: vector driver and embedder are required",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(fiber.Map{
		"query":    query,
		"count":    len(items),
		"memories": items,
	})
}
