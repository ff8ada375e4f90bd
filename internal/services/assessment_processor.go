package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"alfredoptarigan/compliance-readiness/internal/compliance"
	"alfredoptarigan/compliance-readiness/internal/repositories"
)

type AssessmentProcessor interface {
	ProcessAssessment(ctx context.Context, assessmentID uuid.UUID) error
}

type assessmentProcessor struct {
	assessmentRepo repositories.AssessmentRepository
	docRepo        repositories.DocumentRepository
	storage        StorageService
	extractor      TextExtractor
	assessor       *compliance.Assessor
}

func NewAssessmentProcessor(
	assessmentRepo repositories.AssessmentRepository,
	docRepo repositories.DocumentRepository,
	storage StorageService,
	extractor TextExtractor,
	assessor *compliance.Assessor,
) AssessmentProcessor {
	return &assessmentProcessor{
		assessmentRepo: assessmentRepo,
		docRepo:        docRepo,
		storage:        storage,
		extractor:      extractor,
		assessor:       assessor,
	}
}

// ProcessAssessment assembles the text of every document attached to a
// queued assessment, runs the assessor and stores the report. The queued to
// processing transition is claimed atomically, so a job enqueued twice or
// picked up by two workers runs once.
func (p *assessmentProcessor) ProcessAssessment(ctx context.Context, assessmentID uuid.UUID) error {
	assessment, err := p.assessmentRepo.FindByID(assessmentID)
	if err != nil {
		return fmt.Errorf("failed to get assessment: %w", err)
	}

	claimed, err := p.assessmentRepo.ClaimQueued(assessmentID)
	if err != nil {
		return fmt.Errorf("failed to claim assessment: %w", err)
	}
	if !claimed {
		log.Printf("⏭️  Assessment %s is no longer queued, skipping\n", assessmentID)
		return nil
	}

	log.Printf("🔄 Starting assessment %s\n", assessmentID)

	text := assessment.DocumentText
	if text == "" {
		text, err = p.assembleText(ctx, assessmentID)
		if err != nil {
			return p.fail(assessmentID, err)
		}
		if err := p.assessmentRepo.UpdateText(assessmentID, text); err != nil {
			log.Printf("⚠️  Failed to store document text for %s: %v\n", assessmentID, err)
		}
	}

	report := p.assessor.Assess(text)

	payload, err := json.Marshal(report)
	if err != nil {
		return p.fail(assessmentID, fmt.Errorf("failed to encode report: %w", err))
	}

	if err := p.assessmentRepo.UpdateResult(assessmentID, report.ReadinessScore, payload); err != nil {
		return p.fail(assessmentID, fmt.Errorf("failed to save results: %w", err))
	}

	log.Printf("✅ Assessment %s completed with readiness score %d\n", assessmentID, report.ReadinessScore)
	return nil
}

func (p *assessmentProcessor) assembleText(ctx context.Context, assessmentID uuid.UUID) (string, error) {
	docs, err := p.docRepo.FindByAssessmentID(assessmentID)
	if err != nil {
		return "", fmt.Errorf("failed to load documents: %w", err)
	}
	if len(docs) == 0 {
		return "", fmt.Errorf("assessment has no documents")
	}

	log.Printf("📄 Extracting text from %d documents...\n", len(docs))

	files := make([]SourceFile, 0, len(docs))
	for _, doc := range docs {
		data, err := p.storage.ReadFile(doc.Filename)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", doc.OriginalFileName, err)
		}
		files = append(files, SourceFile{Name: doc.OriginalFileName, Data: data})
	}

	return p.extractor.ExtractAll(ctx, files)
}

func (p *assessmentProcessor) fail(assessmentID uuid.UUID, cause error) error {
	if err := p.assessmentRepo.UpdateError(assessmentID, cause.Error()); err != nil {
		log.Printf("⚠️  Failed to record error for %s: %v\n", assessmentID, err)
	}
	return cause
}
