package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs the sequence-dispatch task on a fixed interval. It stands
// in for the external cron the funnel otherwise relies on: the task fires
// once immediately on Start and then on every tick until Stop or context
// cancellation.
type Scheduler struct {
	logger   *zap.Logger
	interval time.Duration
	task     func(context.Context) error

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewScheduler creates a scheduler that will invoke task every interval.
func NewScheduler(logger *zap.Logger, interval time.Duration, task func(context.Context) error) *Scheduler {
	return &Scheduler{
		logger:   logger,
		interval: interval,
		task:     task,
	}
}

// Start launches the dispatch loop. It returns ErrSchedulerAlreadyRunning
// when called twice without an intervening Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSchedulerAlreadyRunning
	}

	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.loop(ctx, s.stopCh, s.doneCh)

	s.logger.Info("Sequence dispatcher started", zap.Duration("interval", s.interval))
	return nil
}

// Stop signals the loop and waits for the in-flight tick to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh

	s.logger.Info("Sequence dispatcher stopped")
	return nil
}

// IsRunning reports whether the dispatch loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Scheduler) loop(ctx context.Context, stopCh, doneCh chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(doneCh)
	}()

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sequence dispatcher context canceled")
			return
		case <-stopCh:
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce bounds a single dispatch so a slow batch cannot pile up behind
// the next tick.
func (s *Scheduler) runOnce(ctx context.Context) {
	timeout := s.interval
	if timeout > 2*time.Second {
		timeout -= time.Second
	}

	tickCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.task(tickCtx); err != nil {
		s.logger.Error("Sequence dispatch tick failed", zap.Error(err))
	}
}
