package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sgacademico/etl-backend/internal/logger"
)

type fakeJob struct {
	proceso  string
	schedule string
	failN    int
	calls    int
}

func (j *fakeJob) Proceso() string  { return j.proceso }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) (int, error) {
	j.calls++
	if j.calls <= j.failN {
		return 0, errors.New("transient store error")
	}
	return 5, nil
}

type terminalRecord struct {
	proceso  string
	attempts int
	err      error
}

func newTestScheduler(t *testing.T, sleeps *[]time.Duration, terminal *[]terminalRecord) (*Scheduler, *Registry) {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	registry := NewRegistry()
	s := NewScheduler(registry, log,
		WithSleep(func(ctx context.Context, d time.Duration) error {
			*sleeps = append(*sleeps, d)
			return nil
		}),
		WithTerminalFailure(func(proceso, runID string, attempts int, err error) {
			*terminal = append(*terminal, terminalRecord{proceso: proceso, attempts: attempts, err: err})
		}),
	)
	return s, registry
}

func TestFireWalksFullBackoffLadderThenFailsTerminally(t *testing.T) {
	var sleeps []time.Duration
	var terminal []terminalRecord
	s, _ := newTestScheduler(t, &sleeps, &terminal)

	job := &fakeJob{proceso: "sync_asistencias", schedule: "@every 5m", failN: 99}
	s.Fire(job)

	wantSleeps := []time.Duration{1 * time.Minute, 5 * time.Minute, 15 * time.Minute}
	if len(sleeps) != len(wantSleeps) {
		t.Fatalf("sleeps: got %v, want %v", sleeps, wantSleeps)
	}
	for i := range wantSleeps {
		if sleeps[i] != wantSleeps[i] {
			t.Fatalf("sleep %d: got %v, want %v", i, sleeps[i], wantSleeps[i])
		}
	}
	if job.calls != 4 {
		t.Fatalf("attempts: got %d, want 4 (initial + one retry per ladder step)", job.calls)
	}
	if len(terminal) != 1 {
		t.Fatalf("terminal handler fired %d times, want 1", len(terminal))
	}
	if terminal[0].proceso != "sync_asistencias" || terminal[0].attempts != 4 || terminal[0].err == nil {
		t.Fatalf("terminal record: %+v", terminal[0])
	}
}

func TestFireStopsLadderOnSuccess(t *testing.T) {
	var sleeps []time.Duration
	var terminal []terminalRecord
	s, _ := newTestScheduler(t, &sleeps, &terminal)

	job := &fakeJob{proceso: "sync_notas", schedule: "@every 5m", failN: 1}
	s.Fire(job)

	if job.calls != 2 {
		t.Fatalf("attempts: got %d, want 2", job.calls)
	}
	if len(sleeps) != 1 || sleeps[0] != 1*time.Minute {
		t.Fatalf("sleeps: got %v, want [1m]", sleeps)
	}
	if len(terminal) != 0 {
		t.Fatalf("terminal handler must not fire on recovery")
	}
}

func TestFireSkipsWhenPreviousFiringStillRunning(t *testing.T) {
	var sleeps []time.Duration
	var terminal []terminalRecord
	s, _ := newTestScheduler(t, &sleeps, &terminal)

	blocker := &blockingJob{started: make(chan struct{}), release: make(chan struct{})}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Fire(blocker)
	}()
	<-blocker.started

	s.Fire(blocker) // must skip, not stack
	close(blocker.release)
	wg.Wait()

	if blocker.calls != 1 {
		t.Fatalf("overlapping firing ran the job %d times, want 1", blocker.calls)
	}
}

type blockingJob struct {
	calls   int
	started chan struct{}
	release chan struct{}
}

func (j *blockingJob) Proceso() string  { return "refresh_dimensiones" }
func (j *blockingJob) Schedule() string { return "@every 1h" }

func (j *blockingJob) Run(ctx context.Context) (int, error) {
	j.calls++
	close(j.started)
	<-j.release
	return 0, nil
}
