package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Harin-6044/Resume-Shortlister/internal/repositories"
)

const defaultPollInterval = 10 * time.Second

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(sessionID uuid.UUID)
}

type worker struct {
	sessionRepo  repositories.SessionRepository
	processor    SessionProcessor
	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once

	// inFlight stops the poller from re-enqueueing a session that is already queued locally.
	mu       sync.Mutex
	inFlight map[uuid.UUID]bool
}

func NewWorker(
	sessionRepo repositories.SessionRepository,
	processor SessionProcessor,
	concurrency int,
) Worker {
	return newWorker(sessionRepo, processor, concurrency, defaultPollInterval)
}

func newWorker(sessionRepo repositories.SessionRepository, processor SessionProcessor, concurrency int, pollInterval time.Duration) *worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &worker{
		sessionRepo:  sessionRepo,
		processor:    processor,
		jobQueue:     make(chan uuid.UUID, 100),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		inFlight:     make(map[uuid.UUID]bool),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)

	log.Println("✅ Worker started successfully")
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping worker...")
		close(w.stopChan)
		w.wg.Wait()
		log.Println("✅ Worker stopped")
	})
}

// EnqueueJob implements Worker.
func (w *worker) EnqueueJob(sessionID uuid.UUID) {
	w.mu.Lock()
	if w.inFlight[sessionID] {
		w.mu.Unlock()
		return
	}
	w.inFlight[sessionID] = true
	w.mu.Unlock()

	select {
	case w.jobQueue <- sessionID:
		log.Printf("📥 Session %s enqueued\n", sessionID)
	case <-w.stopChan:
		w.done(sessionID)
		log.Printf("⚠️  Worker stopped, cannot enqueue session %s\n", sessionID)
	}
}

func (w *worker) done(sessionID uuid.UUID) {
	w.mu.Lock()
	delete(w.inFlight, sessionID)
	w.mu.Unlock()
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
			log.Printf("👷 Worker #%d stopped: %v\n", workerID, ctx.Err())
			return
		case sessionID := <-w.jobQueue:
			log.Printf("👷 Worker #%d processing session %s\n", workerID, sessionID)
			if err := w.processor.ProcessSession(ctx, sessionID); err != nil {
				log.Printf("❌ Worker #%d failed to process session %s: %v\n", workerID, sessionID, err)
			} else {
				log.Printf("✅ Worker #%d completed session %s\n", workerID, sessionID)
			}
			w.done(sessionID)
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	log.Println("🔄 Starting pending sessions poller")

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Pending sessions poller stopped")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := w.sessionRepo.FindPendingSessions(10)
			if err != nil {
				log.Printf("⚠️  Failed to fetch pending sessions: %v\n", err)
				continue
			}

			if len(pending) > 0 {
				log.Printf("📋 Found %d pending sessions\n", len(pending))
			}

			for _, session := range pending {
				w.EnqueueJob(session.ID)
			}
		}
	}
}
