package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Harin-6044/Resume-Shortlister/internal/models"
	"github.com/Harin-6044/Resume-Shortlister/internal/services"
)

type SearchHandler struct {
	search services.CandidateSearchService
}

func NewSearchHandler(search services.CandidateSearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// HandleSearch handles GET /candidates/search?q=&limit=
func (h *SearchHandler) HandleSearch(c *fiber.Ctx) error {
	var req models.SearchRequest
	if err := c.QueryParser(&req); err != nil {
		return errorResponse(c, fiber.NewError(fiber.StatusBadRequest, "invalid query parameters"))
	}
	req.Query = strings.TrimSpace(req.Query)

	if err := req.Validate(); err != nil {
		return errorResponse(c, err)
	}

	hits, err := h.search.Search(c.UserContext(), req.Query, req.Limit)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"query":   req.Query,
		"results": hits,
	})
}
