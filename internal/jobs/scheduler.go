package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/sgacademico/etl-backend/internal/logger"
)

// DefaultBackoff is the retry ladder applied within one scheduled firing:
// after a failed attempt the scheduler waits the next delay and retries, so
// a firing that exhausts the ladder has been failing for ~21 minutes before
// it is declared terminal. No automatic recovery happens after that; the
// next scheduled firing starts a fresh ladder, and since the watermark only
// advances on success nothing is lost in between.
var DefaultBackoff = []time.Duration{1 * time.Minute, 5 * time.Minute, 15 * time.Minute}

// SleepFunc waits for d or until ctx is done. Injectable so the ladder can
// be tested without real minutes passing.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// TerminalFailureFunc is invoked once per firing whose retries are
// exhausted. Operator intervention or the next firing takes it from there.
type TerminalFailureFunc func(proceso, runID string, attempts int, err error)

type Scheduler struct {
	log            *logger.Logger
	cron           *cron.Cron
	registry       *Registry
	backoff        []time.Duration
	attemptTimeout time.Duration
	sleep          SleepFunc
	onTerminal     TerminalFailureFunc

	mu      sync.Mutex
	running map[string]*sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
}

type SchedulerOption func(*Scheduler)

func WithBackoff(ladder []time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.backoff = ladder }
}

func WithAttemptTimeout(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.attemptTimeout = d }
}

func WithSleep(f SleepFunc) SchedulerOption {
	return func(s *Scheduler) { s.sleep = f }
}

func WithTerminalFailure(f TerminalFailureFunc) SchedulerOption {
	return func(s *Scheduler) { s.onTerminal = f }
}

func NewScheduler(registry *Registry, baseLog *logger.Logger, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		log:            baseLog.With("component", "Scheduler"),
		cron:           cron.New(),
		registry:       registry,
		backoff:        DefaultBackoff,
		attemptTimeout: 10 * time.Minute,
		sleep:          sleepWithContext,
		running:        make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start schedules every registered handler and starts the cron loop. The
// scheduler stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	for _, h := range s.registry.All() {
		handler := h
		s.mu.Lock()
		s.running[handler.Proceso()] = &sync.Mutex{}
		s.mu.Unlock()
		if _, err := s.cron.AddFunc(handler.Schedule(), func() {
			s.Fire(handler)
		}); err != nil {
			return err
		}
		s.log.Info("Scheduled proceso", "proceso", handler.Proceso(), "schedule", handler.Schedule())
	}
	s.cron.Start()
	go func() {
		<-s.ctx.Done()
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
	}()
	return nil
}

func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Fire executes one scheduled firing of the handler: an initial attempt plus
// one retry per backoff delay. A firing that is still retrying when the next
// interval arrives is not stacked; the new firing is skipped.
func (s *Scheduler) Fire(h Handler) {
	proceso := h.Proceso()

	s.mu.Lock()
	gate, ok := s.running[proceso]
	if !ok {
		gate = &sync.Mutex{}
		s.running[proceso] = gate
	}
	s.mu.Unlock()

	if !gate.TryLock() {
		s.log.Warn("Previous firing still in flight, skipping", "proceso", proceso)
		return
	}
	defer gate.Unlock()

	runID := uuid.New().String()
	log := s.log.With("proceso", proceso, "run_id", runID)

	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	maxAttempts := len(s.backoff) + 1
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		n, err := s.runAttempt(ctx, h)
		if err == nil {
			if attempt > 1 {
				log.Info("Attempt succeeded after retries", "attempt", attempt, "registros", n)
			}
			return
		}
		lastErr = err
		log.Warn("Attempt failed", "attempt", attempt, "error", err)

		if attempt == maxAttempts {
			break
		}
		if err := s.sleep(ctx, s.backoff[attempt-1]); err != nil {
			log.Warn("Backoff interrupted, abandoning firing", "error", err)
			return
		}
	}

	log.Error("Retries exhausted, firing permanently failed", "attempts", maxAttempts, "error", lastErr)
	if s.onTerminal != nil {
		s.onTerminal(proceso, runID, maxAttempts, lastErr)
	}
}

// runAttempt bounds one attempt with the wall-clock timeout; a timeout is
// indistinguishable from any other failed attempt.
func (s *Scheduler) runAttempt(ctx context.Context, h Handler) (int, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
	defer cancel()
	return h.Run(attemptCtx)
}
