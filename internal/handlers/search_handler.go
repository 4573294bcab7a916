package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/candidate-assistant/internal/models"
	"alfredoptarigan/candidate-assistant/internal/services"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 20
)

type SearchHandler struct {
	registry services.SessionRegistry
	index    services.PassageIndex
}

func NewSearchHandler(registry services.SessionRegistry, index services.PassageIndex) *SearchHandler {
	return &SearchHandler{
		registry: registry,
		index:    index,
	}
}

// HandleSearch handles GET /sessions/:id/search?q=&limit=
func (h *SearchHandler) HandleSearch(c *fiber.Ctx) error {
	session, err := lookupSession(c, h.registry)
	if err != nil {
		return err
	}

	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "q is required",
		})
	}

	limit := c.QueryInt("limit", defaultSearchLimit)
	if limit <= 0 || limit > maxSearchLimit {
		limit = defaultSearchLimit
	}

	passages, err := h.index.Search(c.UserContext(), session.ID(), query, limit)
	if err != nil {
		code := statusFor(err)
		if !errors.Is(err, services.ErrSearchDisabled) {
			code = fiber.StatusBadGateway
		}
		return errorResponse(c, code, err)
	}

	return c.JSON(models.SearchResponse{
		Query:    query,
		Passages: passages,
	})
}
