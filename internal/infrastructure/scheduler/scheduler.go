// Package scheduler implements background job scheduling for the
// performance hub. Its one production job is periodic model retraining,
// but the scheduler itself is job-agnostic.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job defines the interface that all scheduled jobs must implement.
type Job interface {
	// Name returns the unique name of the job.
	Name() string

	// Run executes the job. The context is cancelled when the scheduler
	// is stopping.
	Run(ctx context.Context) error
}

// entry pairs a job with its run interval.
type entry struct {
	job      Job
	interval time.Duration
}

// Scheduler runs registered jobs at fixed intervals, one goroutine per job.
type Scheduler struct {
	mu      sync.Mutex
	logger  *slog.Logger
	entries []entry
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a Scheduler.
func New(log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{logger: log}
}

// Register adds a job to run every interval. Must be called before Start.
func (s *Scheduler) Register(job Job, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry{job: job, interval: interval})
}

// Start launches all registered jobs. The first run happens one full
// interval after start, not immediately - the caller has typically just
// performed the work (e.g. initial training) itself.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	ctx, s.cancel = context.WithCancel(ctx)

	for _, e := range s.entries {
		s.wg.Add(1)
		go s.runLoop(ctx, e)
	}

	s.logger.Info("scheduler started", "jobs", len(s.entries))
}

// Stop cancels all job loops and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runLoop(ctx context.Context, e entry) {
	defer s.wg.Done()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			if err := e.job.Run(ctx); err != nil {
				s.logger.Error("scheduled job failed",
					"job", e.job.Name(),
					"error", err,
					"duration", time.Since(start).String(),
				)
				continue
			}
			s.logger.Info("scheduled job completed",
				"job", e.job.Name(),
				"duration", time.Since(start).String(),
			)
		}
	}
}
