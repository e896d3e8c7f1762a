package interview

import (
	"context"
	"sync"
	"testing"
	"time"

	"hireloop/internal/store"
	"hireloop/pkg/models"
)

type countingDispatcher struct {
	mu      sync.Mutex
	calls   map[string]int
	failAll bool
}

func newCountingDispatcher() *countingDispatcher {
	return &countingDispatcher{calls: make(map[string]int)}
}

func (d *countingDispatcher) Dispatch(ctx context.Context, candidateID, meetingLink string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls[candidateID]++
	if d.failAll {
		return context.DeadlineExceeded
	}
	return nil
}

func (d *countingDispatcher) count(candidateID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[candidateID]
}

func seedScheduled(t *testing.T, st *store.MemoryStore, id string, when time.Time) {
	t.Helper()
	err := st.Create(context.Background(), &models.Candidate{
		ID:                id,
		OrganizationID:    "org-1",
		JobID:             "job-1",
		InterviewStatus:   models.StatusScheduled,
		InterviewDatetime: &when,
		MeetingLink:       "https://meet.example.com/" + id,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func TestSweepDispatchesDueInterviews(t *testing.T) {
	cfg := testConfig()
	cfg.Scheduler.BatchSize = 50
	cfg.Scheduler.DispatchTimeout = time.Second
	cfg.Scheduler.MaxInterviewDuration = 2 * time.Hour

	st := store.NewMemoryStore()
	past := time.Now().UTC().Add(-time.Minute)
	future := time.Now().UTC().Add(time.Hour)
	seedScheduled(t, st, "due-1", past)
	seedScheduled(t, st, "due-2", past)
	seedScheduled(t, st, "later", future)

	dispatcher := newCountingDispatcher()
	s := NewScheduler(cfg, st, dispatcher, nil)
	s.Sweep(context.Background())

	for _, id := range []string{"due-1", "due-2"} {
		if got := dispatcher.count(id); got != 1 {
			t.Errorf("dispatch count for %s = %d, want 1", id, got)
		}
		candidate, _ := st.Get(context.Background(), id)
		if candidate.InterviewStatus != models.StatusInProgress {
			t.Errorf("%s status = %s, want in_progress", id, candidate.InterviewStatus)
		}
		if candidate.ClaimedAt == nil {
			t.Errorf("%s has no claim timestamp", id)
		}
	}

	if got := dispatcher.count("later"); got != 0 {
		t.Errorf("future interview dispatched %d times", got)
	}
}

// TestConcurrentSweepsDispatchOnce runs two scheduler replicas over the same
// store; the conditional claim must give each interview to exactly one.
func TestConcurrentSweepsDispatchOnce(t *testing.T) {
	cfg := testConfig()
	cfg.Scheduler.BatchSize = 100
	cfg.Scheduler.DispatchTimeout = time.Second
	cfg.Scheduler.MaxInterviewDuration = 2 * time.Hour

	st := store.NewMemoryStore()
	past := time.Now().UTC().Add(-time.Minute)
	ids := []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8"}
	for _, id := range ids {
		seedScheduled(t, st, id, past)
	}

	dispatcher := newCountingDispatcher()
	a := NewScheduler(cfg, st, dispatcher, nil)
	b := NewScheduler(cfg, st, dispatcher, nil)

	var wg sync.WaitGroup
	for _, s := range []*Scheduler{a, b} {
		wg.Add(1)
		go func(s *Scheduler) {
			defer wg.Done()
			s.Sweep(context.Background())
		}(s)
	}
	wg.Wait()

	for _, id := range ids {
		if got := dispatcher.count(id); got != 1 {
			t.Errorf("dispatch count for %s = %d, want exactly 1", id, got)
		}
	}
}

func TestSweepCancelsStuckInterviews(t *testing.T) {
	cfg := testConfig()
	cfg.Scheduler.BatchSize = 50
	cfg.Scheduler.DispatchTimeout = time.Second
	cfg.Scheduler.MaxInterviewDuration = 2 * time.Hour

	st := store.NewMemoryStore()
	stale := time.Now().UTC().Add(-3 * time.Hour)
	fresh := time.Now().UTC().Add(-10 * time.Minute)
	for id, claimed := range map[string]time.Time{"stuck": stale, "running": fresh} {
		c := claimed
		err := st.Create(context.Background(), &models.Candidate{
			ID:              id,
			OrganizationID:  "org-1",
			JobID:           "job-1",
			InterviewStatus: models.StatusInProgress,
			ClaimedAt:       &c,
		})
		if err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}

	s := NewScheduler(cfg, st, newCountingDispatcher(), nil)
	s.Sweep(context.Background())

	stuck, _ := st.Get(context.Background(), "stuck")
	if stuck.InterviewStatus != models.StatusCancelled {
		t.Errorf("stuck status = %s, want cancelled", stuck.InterviewStatus)
	}
	running, _ := st.Get(context.Background(), "running")
	if running.InterviewStatus != models.StatusInProgress {
		t.Errorf("running status = %s, want in_progress", running.InterviewStatus)
	}
}

// TestDispatchFailureKeepsClaim verifies a failed agent call leaves the
// candidate claimed for the stuck sweep rather than retrying immediately.
func TestDispatchFailureKeepsClaim(t *testing.T) {
	cfg := testConfig()
	cfg.Scheduler.BatchSize = 50
	cfg.Scheduler.DispatchTimeout = time.Second
	cfg.Scheduler.MaxInterviewDuration = 2 * time.Hour

	st := store.NewMemoryStore()
	seedScheduled(t, st, "flaky", time.Now().UTC().Add(-time.Minute))

	dispatcher := newCountingDispatcher()
	dispatcher.failAll = true
	s := NewScheduler(cfg, st, dispatcher, nil)
	s.Sweep(context.Background())

	candidate, _ := st.Get(context.Background(), "flaky")
	if candidate.InterviewStatus != models.StatusInProgress {
		t.Errorf("status = %s, want in_progress after failed dispatch", candidate.InterviewStatus)
	}

	// A second sweep must not re-dispatch a claimed interview
	s.Sweep(context.Background())
	if got := dispatcher.count("flaky"); got != 1 {
		t.Errorf("dispatch count = %d, want 1", got)
	}
}
