package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/compliance-readiness/internal/compliance"
	"alfredoptarigan/compliance-readiness/internal/models"
	"alfredoptarigan/compliance-readiness/internal/repositories"
	"alfredoptarigan/compliance-readiness/internal/services"
)

// AssessmentHandler accepts document bundles for background assessment.
type AssessmentHandler struct {
	assessmentRepo repositories.AssessmentRepository
	storageService services.StorageService
	worker         services.Worker
	maxFileSize    int64
}

func NewAssessmentHandler(
	assessmentRepo repositories.AssessmentRepository,
	storageService services.StorageService,
	worker services.Worker,
	maxFileSize int64,
) *AssessmentHandler {
	return &AssessmentHandler{
		assessmentRepo: assessmentRepo,
		storageService: storageService,
		worker:         worker,
		maxFileSize:    maxFileSize,
	}
}

// HandleCreate handles POST /assessments
func (h *AssessmentHandler) HandleCreate(c *fiber.Ctx) error {
	files, ferr := formUploads(c, h.maxFileSize)
	if ferr != nil {
		return sendError(c, ferr)
	}

	assessment := &models.Assessment{
		ID:        uuid.New(),
		Status:    models.StatusQueued,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	var saved []string
	cleanup := func() {
		for _, name := range saved {
			h.storageService.DeleteFile(name)
		}
	}

	for _, file := range files {
		filename, filePath, err := h.storageService.SaveFile(file, "assessment")
		if err != nil {
			cleanup()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to save %s: %v", file.Filename, err),
			})
		}
		saved = append(saved, filename)

		assessment.Documents = append(assessment.Documents, models.Document{
			ID:               uuid.New(),
			AssessmentID:     &assessment.ID,
			Filename:         filename,
			OriginalFileName: file.Filename,
			FileType:         strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), "."),
			FilePath:         filePath,
			CreatedAt:        time.Now(),
			UpdatedAt:        time.Now(),
		})
	}

	// Documents are inserted together with the assessment, so the poller never
	// sees a queued assessment without its files.
	if err := h.assessmentRepo.Create(assessment); err != nil {
		cleanup()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create assessment job",
		})
	}

	h.worker.EnqueueJob(assessment.ID)

	uploaded := make([]models.UploadedFile, 0, len(assessment.Documents))
	for _, doc := range assessment.Documents {
		uploaded = append(uploaded, models.UploadedFile{
			ID:           doc.ID.String(),
			Filename:     doc.Filename,
			OriginalName: doc.OriginalFileName,
			FileType:     doc.FileType,
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(models.AssessmentAcceptedResponse{
		ID:        assessment.ID.String(),
		Status:    string(models.StatusQueued),
		Documents: uploaded,
	})
}

// HandleGet handles GET /assessments/:id
func (h *AssessmentHandler) HandleGet(c *fiber.Ctx) error {
	assessmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid assessment ID format",
		})
	}

	assessment, err := h.assessmentRepo.FindByID(assessmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Assessment not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load assessment",
		})
	}

	response := models.AssessmentResponse{
		ID:     assessment.ID.String(),
		Status: string(assessment.Status),
	}

	if assessment.Status == models.StatusCompleted {
		report, err := decodeReport(assessment)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		response.Result = report
	}

	if assessment.Status == models.StatusFailed {
		response.ErrorMessage = assessment.ErrorMessage
	}

	return c.JSON(response)
}

func decodeReport(assessment *models.Assessment) (*compliance.Report, error) {
	var report compliance.Report
	if err := json.Unmarshal(assessment.Report, &report); err != nil {
		return nil, fmt.Errorf("stored report for %s is unreadable", assessment.ID)
	}
	return &report, nil
}
