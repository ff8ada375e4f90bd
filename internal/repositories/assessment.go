package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/compliance-readiness/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

type AssessmentRepository interface {
	Create(assessment *models.Assessment) error
	FindByID(id uuid.UUID) (*models.Assessment, error)
	ClaimQueued(id uuid.UUID) (bool, error)
	UpdateText(id uuid.UUID, text string) error
	UpdateResult(id uuid.UUID, readinessScore int, report json.RawMessage) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPendingJobs(limit int) ([]models.Assessment, error)
}

type assessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) Create(assessment *models.Assessment) error {
	if err := r.db.Create(assessment).Error; err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}
	return nil
}

func (r *assessmentRepository) FindByID(id uuid.UUID) (*models.Assessment, error) {
	var assessment models.Assessment
	if err := r.db.Where("id = ?", id).First(&assessment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("assessment %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find assessment: %w", err)
	}
	return &assessment, nil
}

// ClaimQueued moves a queued assessment to processing in one statement and
// reports whether this caller won the claim.
func (r *assessmentRepository) ClaimQueued(id uuid.UUID) (bool, error) {
	result := r.db.Model(&models.Assessment{}).
		Where("id = ? AND status = ?", id, models.StatusQueued).
		Updates(map[string]interface{}{
			"status":     models.StatusProcessing,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to claim assessment: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (r *assessmentRepository) UpdateText(id uuid.UUID, text string) error {
	return r.update(id, map[string]interface{}{
		"document_text": text,
	})
}

func (r *assessmentRepository) UpdateResult(id uuid.UUID, readinessScore int, report json.RawMessage) error {
	return r.update(id, map[string]interface{}{
		"status":          models.StatusCompleted,
		"readiness_score": readinessScore,
		"report":          report,
		"error_message":   nil,
	})
}

func (r *assessmentRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	return r.update(id, map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": errorMsg,
	})
}

func (r *assessmentRepository) update(id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result := r.db.Model(&models.Assessment{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update assessment: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("assessment %s: %w", id, ErrNotFound)
	}

	return nil
}

func (r *assessmentRepository) FindPendingJobs(limit int) ([]models.Assessment, error) {
	var assessments []models.Assessment
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&assessments).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}

	return assessments, nil
}
