package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/compliance-readiness/internal/compliance"
	"alfredoptarigan/compliance-readiness/internal/models"
	"alfredoptarigan/compliance-readiness/internal/services"
)

// RegulationHandler exposes regulation texts and circular search. A nil
// library disables search.
type RegulationHandler struct {
	rules   *compliance.RuleSet
	library services.RegulationLibrary
}

func NewRegulationHandler(rules *compliance.RuleSet, library services.RegulationLibrary) *RegulationHandler {
	return &RegulationHandler{
		rules:   rules,
		library: library,
	}
}

// HandleRegulationTexts handles GET /regulation_texts
func (h *RegulationHandler) HandleRegulationTexts(c *fiber.Ctx) error {
	return c.JSON(h.rules.RegulationTexts())
}

// HandleSearch handles GET /regulations/search
func (h *RegulationHandler) HandleSearch(c *fiber.Ctx) error {
	if h.library == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Regulation search is not configured",
		})
	}

	check := c.Query("check")
	if check == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "check is required",
		})
	}

	matches, err := h.library.Search(c.UserContext(), check, c.QueryInt("limit", 0))
	if err != nil {
		if errors.Is(err, services.ErrUnknownCheck) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		log.Printf("❌ Regulation search failed: %v\n", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Regulation search failed",
		})
	}

	excerpts := make([]models.RegulationExcerpt, 0, len(matches.Passages))
	for _, p := range matches.Passages {
		excerpts = append(excerpts, models.RegulationExcerpt{
			Source: p.Source,
			Score:  p.Score,
			Text:   p.Text,
		})
	}

	return c.JSON(models.RegulationSearchResponse{
		Check:    matches.Check,
		Query:    matches.Query,
		Excerpts: excerpts,
	})
}
