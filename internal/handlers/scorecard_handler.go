package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/compliance-readiness/internal/compliance"
	"alfredoptarigan/compliance-readiness/internal/models"
	"alfredoptarigan/compliance-readiness/internal/repositories"
	"alfredoptarigan/compliance-readiness/internal/services"
)

// ScorecardHandler serves synchronous assessments.
type ScorecardHandler struct {
	assessor       *compliance.Assessor
	assessmentRepo repositories.AssessmentRepository
	extractor      services.TextExtractor
	maxFileSize    int64
}

func NewScorecardHandler(
	assessor *compliance.Assessor,
	assessmentRepo repositories.AssessmentRepository,
	extractor services.TextExtractor,
	maxFileSize int64,
) *ScorecardHandler {
	return &ScorecardHandler{
		assessor:       assessor,
		assessmentRepo: assessmentRepo,
		extractor:      extractor,
		maxFileSize:    maxFileSize,
	}
}

// HandleScorecard handles POST /scorecard
func (h *ScorecardHandler) HandleScorecard(c *fiber.Ctx) error {
	var req models.ScorecardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	return h.respond(c, req.Documents)
}

// HandleScorecardUpload handles POST /scorecard/upload
func (h *ScorecardHandler) HandleScorecardUpload(c *fiber.Ctx) error {
	files, ferr := formUploads(c, h.maxFileSize)
	if ferr != nil {
		return sendError(c, ferr)
	}

	sources, err := readUploads(files)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	text, err := h.extractor.ExtractAll(c.UserContext(), sources)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to extract document text: %v", err),
		})
	}

	return h.respond(c, text)
}

// HandleExtract handles POST /extract and returns only the extracted profile.
func (h *ScorecardHandler) HandleExtract(c *fiber.Ctx) error {
	var req models.ScorecardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	return c.JSON(h.assessor.Extract(req.Documents))
}

func (h *ScorecardHandler) respond(c *fiber.Ctx, text string) error {
	report := h.assessor.Assess(text)

	payload, err := json.Marshal(report)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to encode report",
		})
	}

	score := report.ReadinessScore
	assessment := &models.Assessment{
		ID:             uuid.New(),
		Status:         models.StatusCompleted,
		DocumentText:   text,
		ReadinessScore: &score,
		Report:         payload,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := h.assessmentRepo.Create(assessment); err != nil {
		log.Printf("❌ Failed to store assessment: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store assessment",
		})
	}

	return c.JSON(models.ScorecardResponse{
		AssessmentID: assessment.ID.String(),
		Report:       report,
	})
}
