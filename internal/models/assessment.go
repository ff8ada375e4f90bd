package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AssessmentStatus string

const (
	StatusQueued     AssessmentStatus = "queued"
	StatusProcessing AssessmentStatus = "processing"
	StatusCompleted  AssessmentStatus = "completed"
	StatusFailed     AssessmentStatus = "failed"
)

// Assessment is one readiness assessment of an applicant's document bundle.
// Report holds the serialized compliance.Report once the status is completed.
type Assessment struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Status         AssessmentStatus `gorm:"not null;default:'queued'" json:"status"`
	DocumentText   string           `gorm:"type:text" json:"-"`
	ReadinessScore *int             `json:"readiness_score,omitempty"`
	Report         json.RawMessage  `gorm:"type:jsonb" json:"report,omitempty"`
	ErrorMessage   *string          `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt      time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	Documents []Document `gorm:"foreignKey:AssessmentID" json:"-"`
}

func (Assessment) TableName() string {
	return "assessments"
}
