package service

import (
	"context"
	"log"
	"time"

	"github.com/taskmaster/taskmaster/internal/domain"
	"github.com/taskmaster/taskmaster/internal/repository"
)

// SweeperService periodically promotes pending tasks whose due time has
// passed to OVERDUE. Tasks already completed, cancelled or overdue are never
// touched.
type SweeperService struct {
	taskRepo repository.TaskRepository
	interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewSweeperService creates a sweeper running at the given interval.
// If interval is 0 or negative, defaults to 10 hours.
func NewSweeperService(taskRepo repository.TaskRepository, interval time.Duration) *SweeperService {
	if interval <= 0 {
		interval = 10 * time.Hour
	}
	return &SweeperService{
		taskRepo: taskRepo,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *SweeperService) Start() {
	go s.run()
	log.Printf("overdue sweeper started (interval %s)", s.interval)
}

// Stop shuts down the background worker, blocking until any in-progress
// sweep has finished.
func (s *SweeperService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	log.Printf("overdue sweeper stopped")
}

func (s *SweeperService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run once immediately so a long interval doesn't delay the first sweep.
	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep performs a single pass. Individual update failures are logged and
// skipped; a failed scan is logged and left for the next scheduled run.
func (s *SweeperService) Sweep(ctx context.Context) {
	tasks, err := s.taskRepo.FindDuePending(ctx, time.Now())
	if err != nil {
		log.Printf("ERROR [sweeper.Sweep] failed to scan for due tasks: %v", err)
		return
	}
	if len(tasks) == 0 {
		return
	}

	swept := 0
	for _, task := range tasks {
		if err := s.taskRepo.UpdateStatus(ctx, task.ID, domain.TaskStatusOverdue); err != nil {
			log.Printf("ERROR [sweeper.Sweep] failed to mark task %s overdue: %v", task.ID, err)
			continue
		}
		swept++
	}
	log.Printf("overdue sweep marked %d of %d due tasks", swept, len(tasks))
}
