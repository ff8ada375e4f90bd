package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/compliance-readiness/internal/compliance"
	"alfredoptarigan/compliance-readiness/internal/models"
	"alfredoptarigan/compliance-readiness/internal/repositories"
	"alfredoptarigan/compliance-readiness/internal/services"
)

type ReportHandler struct {
	assessor       *compliance.Assessor
	assessmentRepo repositories.AssessmentRepository
	renderer       services.ReportRenderer
}

func NewReportHandler(
	assessor *compliance.Assessor,
	assessmentRepo repositories.AssessmentRepository,
	renderer services.ReportRenderer,
) *ReportHandler {
	return &ReportHandler{
		assessor:       assessor,
		assessmentRepo: assessmentRepo,
		renderer:       renderer,
	}
}

// HandleReport handles POST /report
func (h *ReportHandler) HandleReport(c *fiber.Ctx) error {
	var req models.ReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	report, ferr := h.resolve(req)
	if ferr != nil {
		return sendError(c, ferr)
	}

	pdf, err := h.renderer.Render(*report)
	if err != nil {
		log.Printf("❌ Failed to render report: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to render report",
		})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="readiness-report.pdf"`)
	return c.Send(pdf)
}

func (h *ReportHandler) resolve(req models.ReportRequest) (*compliance.Report, *fiber.Error) {
	switch {
	case req.AssessmentID != "":
		id, err := uuid.Parse(req.AssessmentID)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid assessment ID format")
		}
		assessment, err := h.assessmentRepo.FindByID(id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fiber.NewError(fiber.StatusNotFound, "Assessment not found")
			}
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to load assessment")
		}
		if assessment.Status != models.StatusCompleted {
			return nil, fiber.NewError(fiber.StatusConflict, "Assessment is "+string(assessment.Status))
		}
		report, err := decodeReport(assessment)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return report, nil
	case req.Documents != nil:
		report := h.assessor.Assess(*req.Documents)
		return &report, nil
	case req.Result != nil:
		return req.Result, nil
	default:
		return nil, fiber.NewError(fiber.StatusBadRequest, "one of assessment_id, documents or result is required")
	}
}
