package util

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs a tick function on a timer. The interval is re-read before
// every wait, so cadence changes are observed within one old interval. Stop
// cancels the loop's context: a tick already in flight sees the cancellation
// through its context, and no further tick fires afterwards. Cancelling the
// parent context passed to Start has the same effect.
type Scheduler struct {
	name     string
	interval func() time.Duration
	tick     func(ctx context.Context)
	logger   *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func NewScheduler(name string, interval func() time.Duration, tick func(ctx context.Context), logger *zap.Logger) *Scheduler {
	return &Scheduler{
		name:     name,
		interval: interval,
		tick:     tick,
		logger:   logger,
	}
}

// Start launches the loop. Calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.running = true

	s.logger.Info("Scheduler started",
		zap.String("scheduler", s.name),
		zap.Duration("interval", s.interval()),
	)

	go s.run(loopCtx, done)
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer s.clear(done)

	timer := time.NewTimer(s.interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped", zap.String("scheduler", s.name))
			return
		case <-timer.C:
			s.tick(ctx)
			timer.Reset(s.interval())
		}
	}
}

// clear resets the state when the loop exits on its own, typically because
// the parent context was cancelled, so Running reports false and a later Start
// spawns a fresh loop. The generation check keeps an already-replaced loop
// from clobbering its successor's state.
func (s *Scheduler) clear(done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != done {
		return
	}
	s.running = false
	s.cancel = nil
	s.done = nil
}

// Stop cancels the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.running = false
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	cancel()
	<-done
}

// Restart stops a running loop and starts a fresh one, picking up a changed
// interval immediately instead of on the next tick.
func (s *Scheduler) Restart(ctx context.Context) {
	s.Stop()
	s.Start(ctx)
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
