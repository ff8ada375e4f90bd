package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/compliance-readiness/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(assessmentID uuid.UUID)
}

// pendingBatchSize is how many queued assessments one poll picks up.
const pendingBatchSize = 10

type worker struct {
	assessmentRepo repositories.AssessmentRepository
	processor      AssessmentProcessor
	jobQueue       chan uuid.UUID
	concurrency    int
	pollInterval   time.Duration
	wg             sync.WaitGroup
	stopChan       chan struct{}
	stopOnce       sync.Once
}

func NewWorker(
	assessmentRepo repositories.AssessmentRepository,
	processor AssessmentProcessor,
	concurrency int,
	pollInterval time.Duration,
) Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	return &worker{
		assessmentRepo: assessmentRepo,
		processor:      processor,
		jobQueue:       make(chan uuid.UUID, 100),
		concurrency:    concurrency,
		pollInterval:   pollInterval,
		stopChan:       make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting worker with %d concurrent workers\n", w.concurrency)

	// Start worker goroutines
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	// Start polling for pending jobs
	w.wg.Add(1)
	go w.pollPendingJobs(ctx)

	log.Println("✅ Worker started successfully")
}

// Stop implements Worker.
func (w *worker) Stop() {
	log.Println("🛑 Stopping worker...")
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.wg.Wait()
	log.Println("✅ Worker stopped")
}

// EnqueueJob implements Worker. A job that cannot be queued stays in the database as queued and is
// picked up by the poller.
func (w *worker) EnqueueJob(assessmentID uuid.UUID) {
	select {
	case w.jobQueue <- assessmentID:
		log.Printf("📥 Assessment %s enqueued\n", assessmentID)
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue assessment %s\n", assessmentID)
	default:
		log.Printf("⚠️  Queue full, assessment %s left for the poller\n", assessmentID)
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log.Printf("🚀 Worker %d started processing jobs\n", workerID)

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case <-ctx.Done():
			log.Printf("👷 Worker #%d context done\n", workerID)
			return
		case assessmentID := <-w.jobQueue:
			log.Printf("👷 Worker #%d processing assessment %s\n", workerID, assessmentID)
			if err := w.processor.ProcessAssessment(ctx, assessmentID); err != nil {
				log.Printf("❌ Worker #%d failed assessment %s: %v\n", workerID, assessmentID, err)
			}
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	log.Println("🔄 Starting pending jobs poller")

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Pending jobs poller stopped")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pendingJobs, err := w.assessmentRepo.FindPendingJobs(pendingBatchSize)
			if err != nil {
				log.Printf("⚠️  Failed to fetch pending jobs: %v\n", err)
				continue
			}

			if len(pendingJobs) > 0 {
				log.Printf("📋 Found %d queued assessments\n", len(pendingJobs))
			}

			for _, job := range pendingJobs {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
