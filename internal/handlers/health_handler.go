package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/compliance-readiness/internal/compliance"
)

const apiVersion = "1.0.0"

type HealthHandler struct {
	rules             *compliance.RuleSet
	regulationsSearch bool
}

func NewHealthHandler(rules *compliance.RuleSet, regulationsSearch bool) *HealthHandler {
	return &HealthHandler{
		rules:             rules,
		regulationsSearch: regulationsSearch,
	}
}

// HandleHealth handles GET /health
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now(),
	})
}

// HandleStatus handles GET /status
func (h *HealthHandler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":             "Backend running",
		"version":            apiVersion,
		"checks":             len(h.rules.Checks),
		"max_score":          h.rules.Sections.Total(),
		"regulations_search": h.regulationsSearch,
	})
}
