package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/compliance-readiness/internal/compliance"
	"alfredoptarigan/compliance-readiness/internal/models"
	"alfredoptarigan/compliance-readiness/internal/repositories"
)

type memAssessmentRepo struct {
	mu              sync.Mutex
	assessments     map[uuid.UUID]*models.Assessment
	resultWrites    int
	updateResultErr error
}

func newMemAssessmentRepo(items ...*models.Assessment) *memAssessmentRepo {
	r := &memAssessmentRepo{assessments: make(map[uuid.UUID]*models.Assessment)}
	for _, a := range items {
		r.assessments[a.ID] = a
	}
	return r
}

func (r *memAssessmentRepo) Create(a *models.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assessments[a.ID] = a
	return nil
}

func (r *memAssessmentRepo) get(id uuid.UUID) (*models.Assessment, error) {
	a, ok := r.assessments[id]
	if !ok {
		return nil, fmt.Errorf("assessment %s: %w", id, repositories.ErrNotFound)
	}
	return a, nil
}

func (r *memAssessmentRepo) FindByID(id uuid.UUID) (*models.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, err := r.get(id)
	if err != nil {
		return nil, err
	}
	cp := *a
	return &cp, nil
}

func (r *memAssessmentRepo) ClaimQueued(id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, err := r.get(id)
	if err != nil || a.Status != models.StatusQueued {
		return false, nil
	}
	a.Status = models.StatusProcessing
	return true, nil
}

func (r *memAssessmentRepo) UpdateText(id uuid.UUID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, err := r.get(id)
	if err != nil {
		return err
	}
	a.DocumentText = text
	return nil
}

func (r *memAssessmentRepo) UpdateResult(id uuid.UUID, score int, report json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateResultErr != nil {
		return r.updateResultErr
	}
	r.resultWrites++
	a, err := r.get(id)
	if err != nil {
		return err
	}
	a.Status = models.StatusCompleted
	a.ReadinessScore = &score
	a.Report = report
	return nil
}

func (r *memAssessmentRepo) UpdateError(id uuid.UUID, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, err := r.get(id)
	if err != nil {
		return err
	}
	a.Status = models.StatusFailed
	a.ErrorMessage = &msg
	return nil
}

func (r *memAssessmentRepo) FindPendingJobs(limit int) ([]models.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Assessment
	for _, a := range r.assessments {
		if a.Status == models.StatusQueued && len(out) < limit {
			out = append(out, *a)
		}
	}
	return out, nil
}

type memDocumentRepo struct {
	docs []models.Document
	err  error
}

func (r *memDocumentRepo) Create(doc *models.Document) error {
	r.docs = append(r.docs, *doc)
	return nil
}

func (r *memDocumentRepo) FindByID(id uuid.UUID) (*models.Document, error) {
	for _, d := range r.docs {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memDocumentRepo) FindByAssessmentID(id uuid.UUID) ([]models.Document, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []models.Document
	for _, d := range r.docs {
		if d.AssessmentID != nil && *d.AssessmentID == id {
			out = append(out, d)
		}
	}
	return out, nil
}

type memStorage struct {
	files map[string][]byte
}

func (s *memStorage) SaveFile(file *multipart.FileHeader, prefix string) (string, string, error) {
	return "", "", errors.New("not supported")
}

func (s *memStorage) ReadFile(filename string) ([]byte, error) {
	data, ok := s.files[filename]
	if !ok {
		return nil, errors.New("no such file")
	}
	return data, nil
}

func (s *memStorage) GetFilePath(filename string) string { return filename }
func (s *memStorage) DeleteFile(filename string) error  { return nil }
func (s *memStorage) EnsureUploadDir() error            { return nil }

func processorRules() *compliance.RuleSet {
	return &compliance.RuleSet{
		Checks: compliance.CheckTable{
			{Name: compliance.CheckCapitalShortfall, Section: "Licensing & Capital"},
			{Name: compliance.CheckAoASubmission, Section: "Licensing & Capital"},
			{Name: compliance.CheckComplianceOfficer, Section: "Corporate Governance"},
			{Name: compliance.CheckFitAndProper, Section: "Corporate Governance"},
		},
		Sections: compliance.SectionWeights{"Licensing & Capital": 30, "Corporate Governance": 15},
		Thresholds: compliance.Thresholds{
			DefaultMinimumCapital: 7500000,
		},
	}
}

func newTestProcessor(repo *memAssessmentRepo, docs *memDocumentRepo, storage *memStorage) AssessmentProcessor {
	assessor := compliance.NewAssessor(compliance.NewExtractor(nil), processorRules(), nil)
	return NewAssessmentProcessor(repo, docs, storage, NewTextExtractor(2), assessor)
}

func TestAssessmentProcessor_CompletesFromDocuments(t *testing.T) {
	id := uuid.New()
	repo := newMemAssessmentRepo(&models.Assessment{ID: id, Status: models.StatusQueued})
	docs := &memDocumentRepo{docs: []models.Document{
		{ID: uuid.New(), AssessmentID: &id, Filename: "a.txt", OriginalFileName: "capital.txt"},
		{ID: uuid.New(), AssessmentID: &id, Filename: "b.txt", OriginalFileName: "governance.txt"},
	}}
	storage := &memStorage{files: map[string][]byte{
		"a.txt": []byte("Paid-Up Capital: QAR 8,000,000"),
		"b.txt": []byte("We have appointed Ms. Noor as Compliance Officer."),
	}}

	if err := newTestProcessor(repo, docs, storage).ProcessAssessment(context.Background(), id); err != nil {
		t.Fatalf("ProcessAssessment() error = %v", err)
	}

	a := repo.assessments[id]
	if a.Status != models.StatusCompleted {
		t.Fatalf("Status = %s, want completed", a.Status)
	}
	if a.ReadinessScore == nil || *a.ReadinessScore != 45 {
		t.Errorf("ReadinessScore = %v, want 45", a.ReadinessScore)
	}
	if a.DocumentText != "Paid-Up Capital: QAR 8,000,000\n\nWe have appointed Ms. Noor as Compliance Officer." {
		t.Errorf("DocumentText = %q", a.DocumentText)
	}

	var report compliance.Report
	if err := json.Unmarshal(a.Report, &report); err != nil {
		t.Fatalf("stored report is not JSON: %v", err)
	}
	if report.Profile.PaidUpCapital != 8000000 {
		t.Errorf("stored capital = %d, want 8000000", report.Profile.PaidUpCapital)
	}
}

func TestAssessmentProcessor_UsesStoredText(t *testing.T) {
	id := uuid.New()
	repo := newMemAssessmentRepo(&models.Assessment{ID: id, Status: models.StatusQueued, DocumentText: "We started with QAR 2,000,000."})

	if err := newTestProcessor(repo, &memDocumentRepo{}, &memStorage{}).ProcessAssessment(context.Background(), id); err != nil {
		t.Fatalf("ProcessAssessment() error = %v", err)
	}
	a := repo.assessments[id]
	// Capital fails, the officer pair fails, only AoA passes.
	if a.ReadinessScore == nil || *a.ReadinessScore != 15 {
		t.Errorf("ReadinessScore = %v, want 15", a.ReadinessScore)
	}
}

func TestAssessmentProcessor_Failures(t *testing.T) {
	tests := []struct {
		name    string
		docs    *memDocumentRepo
		storage *memStorage
	}{
		{"no documents", &memDocumentRepo{}, &memStorage{}},
		{"document lookup fails", &memDocumentRepo{err: errors.New("db down")}, &memStorage{}},
		{"file missing", nil, &memStorage{files: map[string][]byte{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			repo := newMemAssessmentRepo(&models.Assessment{ID: id, Status: models.StatusQueued})
			docs := tt.docs
			if docs == nil {
				docs = &memDocumentRepo{docs: []models.Document{{ID: uuid.New(), AssessmentID: &id, Filename: "gone.pdf"}}}
			}

			if err := newTestProcessor(repo, docs, tt.storage).ProcessAssessment(context.Background(), id); err == nil {
				t.Fatal("expected error")
			}
			a := repo.assessments[id]
			if a.Status != models.StatusFailed || a.ErrorMessage == nil {
				t.Errorf("assessment = %+v, want failed with message", a)
			}
		})
	}
}

func TestAssessmentProcessor_SkipsNonQueued(t *testing.T) {
	id := uuid.New()
	repo := newMemAssessmentRepo(&models.Assessment{ID: id, Status: models.StatusCompleted})

	if err := newTestProcessor(repo, &memDocumentRepo{}, &memStorage{}).ProcessAssessment(context.Background(), id); err != nil {
		t.Fatalf("ProcessAssessment() error = %v", err)
	}
	if repo.assessments[id].Status != models.StatusCompleted {
		t.Error("completed assessment was reprocessed")
	}
}

func TestAssessmentProcessor_ConcurrentRunsClaimOnce(t *testing.T) {
	id := uuid.New()
	repo := newMemAssessmentRepo(&models.Assessment{ID: id, Status: models.StatusQueued, DocumentText: "Paid-Up Capital: QAR 8,000,000"})
	proc := newTestProcessor(repo, &memDocumentRepo{}, &memStorage{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := proc.ProcessAssessment(context.Background(), id); err != nil {
				t.Errorf("ProcessAssessment() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if repo.resultWrites != 1 {
		t.Errorf("report stored %d times, want 1", repo.resultWrites)
	}
	if repo.assessments[id].Status != models.StatusCompleted {
		t.Errorf("Status = %s, want completed", repo.assessments[id].Status)
	}
}

func TestAssessmentProcessor_SaveFailureMarksFailed(t *testing.T) {
	id := uuid.New()
	repo := newMemAssessmentRepo(&models.Assessment{ID: id, Status: models.StatusQueued, DocumentText: "Paid-Up Capital: QAR 8,000,000"})
	repo.updateResultErr = errors.New("db down")

	err := newTestProcessor(repo, &memDocumentRepo{}, &memStorage{}).ProcessAssessment(context.Background(), id)
	if !errors.Is(err, repo.updateResultErr) {
		t.Fatalf("error = %v, want wrapped save error", err)
	}

	a := repo.assessments[id]
	if a.Status != models.StatusFailed {
		t.Errorf("Status = %s, want failed", a.Status)
	}
	if a.ErrorMessage == nil || *a.ErrorMessage != "failed to save results: db down" {
		t.Errorf("ErrorMessage = %v", a.ErrorMessage)
	}
}

func TestAssessmentProcessor_UnknownAssessment(t *testing.T) {
	err := newTestProcessor(newMemAssessmentRepo(), &memDocumentRepo{}, &memStorage{}).ProcessAssessment(context.Background(), uuid.New())
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

type recordingProcessor struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (p *recordingProcessor) ProcessAssessment(ctx context.Context, id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, id)
	return nil
}

func (p *recordingProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ids)
}

func TestWorker_ProcessesEnqueuedJobs(t *testing.T) {
	proc := &recordingProcessor{}
	w := NewWorker(newMemAssessmentRepo(), proc, 2, time.Hour)
	w.Start(context.Background())

	for i := 0; i < 5; i++ {
		w.EnqueueJob(uuid.New())
	}

	deadline := time.Now().Add(2 * time.Second)
	for proc.count() < 5 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()

	if got := proc.count(); got != 5 {
		t.Errorf("processed %d jobs, want 5", got)
	}
}

func TestWorker_PollsQueuedAssessments(t *testing.T) {
	id := uuid.New()
	repo := newMemAssessmentRepo(&models.Assessment{ID: id, Status: models.StatusQueued})
	proc := &recordingProcessor{}
	w := NewWorker(repo, proc, 1, 10*time.Millisecond)
	w.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for proc.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()

	if proc.count() == 0 {
		t.Fatal("poller never picked up the queued assessment")
	}
	if proc.ids[0] != id {
		t.Errorf("processed %s, want %s", proc.ids[0], id)
	}
}

func TestWorker_StopIsIdempotent(t *testing.T) {
	w := NewWorker(newMemAssessmentRepo(), &recordingProcessor{}, 1, time.Hour)
	w.Start(context.Background())
	w.Stop()
	w.Stop()
	w.EnqueueJob(uuid.New())
}
