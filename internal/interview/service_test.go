package interview

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"hireloop/internal/config"
	"hireloop/internal/llm"
	"hireloop/internal/store"
	"hireloop/pkg/models"
	"hireloop/pkg/utils"
)

type recordingNotifier struct {
	mu            sync.Mutex
	invites       int
	confirmations int
	results       int
}

func (n *recordingNotifier) SendSchedulingInvite(ctx context.Context, c *models.Candidate, jobTitle, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invites++
	return nil
}

func (n *recordingNotifier) SendScheduleConfirmation(ctx context.Context, c *models.Candidate) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations++
	return nil
}

func (n *recordingNotifier) SendResultsNotice(ctx context.Context, c *models.Candidate) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.results++
	return nil
}

func (n *recordingNotifier) resultCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.results
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.PublicURL = "http://localhost:8080"
	cfg.Meetings.BaseURL = "https://meet.example.com"
	cfg.Notifications.Timeout = time.Second
	cfg.LLM.Timeout = time.Second
	return cfg
}

// newTestService wires a service on the in-memory store with no AI provider,
// so extraction and matching run on the heuristic engine.
func newTestService(t *testing.T) (*Service, *store.MemoryStore, *recordingNotifier) {
	t.Helper()
	cfg := testConfig()
	st := store.NewMemoryStore()
	st.AddJob(&models.Job{
		ID:             "job-1",
		OrganizationID: "org-1",
		Title:          "Backend Engineer",
		Description:    "Build services",
		RequiredSkills: []string{"Go", "PostgreSQL", "Docker"},
	})
	notifier := &recordingNotifier{}
	svc := NewService(cfg, st, llm.NewManager(cfg), notifier)
	return svc, st, notifier
}

func seedCandidate(t *testing.T, st *store.MemoryStore, status models.InterviewStatus) *models.Candidate {
	t.Helper()
	candidate := &models.Candidate{
		ID:              "cand-1",
		OrganizationID:  "org-1",
		JobID:           "job-1",
		Name:            "Jordan Reyes",
		Email:           "jordan@example.com",
		InterviewStatus: status,
	}
	if err := st.Create(context.Background(), candidate); err != nil {
		t.Fatalf("seed candidate: %v", err)
	}
	return candidate
}

const sampleResume = `Jordan Reyes
jordan@example.com

SUMMARY
Backend engineer focused on reliable systems.

Senior Engineer | Initech | 2019 - 2024
Built Go services backed by PostgreSQL and Docker.

8 years of experience overall.`

var operator = Operator{OrganizationID: "org-1"}

func TestMarkReviewed(t *testing.T) {
	svc, st, _ := newTestService(t)
	seedCandidate(t, st, models.StatusApplied)

	outcome, err := svc.MarkReviewed(context.Background(), operator, "cand-1", sampleResume)
	if err != nil {
		t.Fatalf("MarkReviewed: %v", err)
	}
	if outcome.Candidate.InterviewStatus != models.StatusResumeReviewed {
		t.Errorf("status = %s, want resume_reviewed", outcome.Candidate.InterviewStatus)
	}
	if outcome.UsedLLM {
		t.Error("expected heuristic path with no AI provider")
	}
	if outcome.Profile.Email != "jordan@example.com" {
		t.Errorf("extracted email = %q", outcome.Profile.Email)
	}
	if outcome.Match.MatchPercentage <= 0 {
		t.Errorf("match percentage = %v, want > 0", outcome.Match.MatchPercentage)
	}
	if outcome.Match.CandidateID != "cand-1" {
		t.Errorf("match candidate id = %q", outcome.Match.CandidateID)
	}

	stored, _ := st.Get(context.Background(), "cand-1")
	if stored.ResumeText != sampleResume {
		t.Error("resume text was not persisted with the transition")
	}
}

func TestMarkReviewedWrongStatus(t *testing.T) {
	svc, st, _ := newTestService(t)
	seedCandidate(t, st, models.StatusScheduled)

	_, err := svc.MarkReviewed(context.Background(), operator, "cand-1", sampleResume)
	if utils.KindOf(err) != utils.KindConflict {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestOrganizationScoping(t *testing.T) {
	svc, st, _ := newTestService(t)
	seedCandidate(t, st, models.StatusApplied)

	_, err := svc.Get(context.Background(), Operator{OrganizationID: "org-2"}, "cand-1")
	if utils.KindOf(err) != utils.KindForbidden {
		t.Fatalf("cross-org read: err = %v, want forbidden", err)
	}
}

func TestTriggerMintsToken(t *testing.T) {
	svc, st, _ := newTestService(t)
	seedCandidate(t, st, models.StatusResumeReviewed)

	candidate, link, err := svc.Trigger(context.Background(), operator, "cand-1")
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if candidate.InterviewStatus != models.StatusInterviewRequested {
		t.Errorf("status = %s, want interview_requested", candidate.InterviewStatus)
	}
	if candidate.SchedulerToken == "" {
		t.Fatal("no scheduler token minted")
	}
	if !strings.Contains(link, candidate.SchedulerToken) {
		t.Errorf("link %q does not embed the token", link)
	}

	if _, err := st.GetByToken(context.Background(), candidate.SchedulerToken); err != nil {
		t.Errorf("token does not resolve: %v", err)
	}
}

func TestScheduleConsumesToken(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	seedCandidate(t, st, models.StatusResumeReviewed)
	candidate, _, err := svc.Trigger(ctx, operator, "cand-1")
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	token := candidate.SchedulerToken
	when := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)

	scheduled, err := svc.Schedule(ctx, token, when)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if scheduled.InterviewStatus != models.StatusScheduled {
		t.Errorf("status = %s, want scheduled", scheduled.InterviewStatus)
	}
	if scheduled.MeetingLink == "" || !strings.HasPrefix(scheduled.MeetingLink, "https://meet.example.com/") {
		t.Errorf("meeting link = %q", scheduled.MeetingLink)
	}
	if scheduled.InterviewDatetime == nil || !scheduled.InterviewDatetime.Equal(when) {
		t.Errorf("interview datetime = %v, want %v", scheduled.InterviewDatetime, when)
	}

	// The same link must not book twice
	_, err = svc.Schedule(ctx, token, when.Add(time.Hour))
	if utils.KindOf(err) != utils.KindNotFound {
		t.Fatalf("token reuse: err = %v, want not_found", err)
	}
}

func TestSchedulePastTimeRejected(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	seedCandidate(t, st, models.StatusResumeReviewed)
	candidate, _, err := svc.Trigger(ctx, operator, "cand-1")
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}

	_, err = svc.Schedule(ctx, candidate.SchedulerToken, time.Now().Add(-time.Hour))
	if utils.KindOf(err) != utils.KindValidation {
		t.Fatalf("past time: err = %v, want validation", err)
	}

	// A rejected attempt must leave the token usable
	if _, err := svc.Schedule(ctx, candidate.SchedulerToken, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("token should survive a rejected attempt: %v", err)
	}
}

func TestScheduleUnknownToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Schedule(context.Background(), "nonsense-token", time.Now().Add(time.Hour))
	if utils.KindOf(err) != utils.KindNotFound {
		t.Fatalf("err = %v, want not_found", err)
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	svc, st, notifier := newTestService(t)
	ctx := context.Background()

	claimedAt := time.Now().UTC().Add(-10 * time.Minute)
	candidate := &models.Candidate{
		ID:              "cand-1",
		OrganizationID:  "org-1",
		JobID:           "job-1",
		InterviewStatus: models.StatusInProgress,
		ClaimedAt:       &claimedAt,
	}
	if err := st.Create(ctx, candidate); err != nil {
		t.Fatalf("seed: %v", err)
	}

	first, alreadyDone, err := svc.Complete(ctx, "cand-1", "https://cdn.example.com/t.txt", "https://cdn.example.com/r.pdf")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if alreadyDone {
		t.Error("first completion flagged as duplicate")
	}
	if first.InterviewStatus != models.StatusCompleted || first.CompletedAt == nil {
		t.Errorf("candidate = %+v, want completed with timestamp", first)
	}
	if first.TranscriptURL != "https://cdn.example.com/t.txt" {
		t.Errorf("transcript url = %q", first.TranscriptURL)
	}

	second, alreadyDone, err := svc.Complete(ctx, "cand-1", "https://cdn.example.com/other.txt", "")
	if err != nil {
		t.Fatalf("duplicate Complete: %v", err)
	}
	if !alreadyDone {
		t.Error("duplicate completion not flagged")
	}
	if second.TranscriptURL != "https://cdn.example.com/t.txt" {
		t.Error("duplicate callback overwrote the stored results")
	}

	// Only the first completion notifies
	deadline := time.Now().Add(time.Second)
	for notifier.resultCount() < 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	if got := notifier.resultCount(); got != 1 {
		t.Errorf("results notices = %d, want 1", got)
	}
}

func TestCancel(t *testing.T) {
	cases := []struct {
		name     string
		status   models.InterviewStatus
		wantKind utils.ErrorKind
	}{
		{"from applied", models.StatusApplied, ""},
		{"from scheduled", models.StatusScheduled, ""},
		{"from in progress", models.StatusInProgress, ""},
		{"from completed", models.StatusCompleted, utils.KindConflict},
		{"from cancelled", models.StatusCancelled, utils.KindConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, st, _ := newTestService(t)
			seedCandidate(t, st, tc.status)

			candidate, err := svc.Cancel(context.Background(), operator, "cand-1")
			if tc.wantKind != "" {
				if utils.KindOf(err) != tc.wantKind {
					t.Fatalf("err = %v, want %s", err, tc.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("Cancel: %v", err)
			}
			if candidate.InterviewStatus != models.StatusCancelled {
				t.Errorf("status = %s, want cancelled", candidate.InterviewStatus)
			}
		})
	}
}

func TestGenerateQuestionsRequiresAI(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	seedCandidate(t, st, models.StatusApplied)

	if _, err := svc.MarkReviewed(ctx, operator, "cand-1", sampleResume); err != nil {
		t.Fatalf("MarkReviewed: %v", err)
	}

	// No AI provider is running, and question generation has no fallback
	_, err := svc.GenerateQuestions(ctx, operator, "cand-1", nil)
	if utils.KindOf(err) != utils.KindUpstream {
		t.Fatalf("err = %v, want upstream_unavailable", err)
	}
}

func TestGenerateQuestionsNeedsReviewedResume(t *testing.T) {
	svc, st, _ := newTestService(t)
	seedCandidate(t, st, models.StatusApplied)

	_, err := svc.GenerateQuestions(context.Background(), operator, "cand-1", nil)
	if utils.KindOf(err) != utils.KindConflict {
		t.Fatalf("err = %v, want conflict", err)
	}
}

// TestLifecycleEndToEnd walks one candidate through the whole pipeline
func TestLifecycleEndToEnd(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	seedCandidate(t, st, models.StatusApplied)

	if _, err := svc.MarkReviewed(ctx, operator, "cand-1", sampleResume); err != nil {
		t.Fatalf("review: %v", err)
	}
	candidate, _, err := svc.Trigger(ctx, operator, "cand-1")
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	scheduled, err := svc.Schedule(ctx, candidate.SchedulerToken, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	claimedAt := time.Now().UTC()
	if _, err := st.ConditionalTransition(ctx, scheduled.ID,
		models.StatusScheduled, models.StatusInProgress,
		&store.TransitionFields{ClaimedAt: &claimedAt}); err != nil {
		t.Fatalf("claim: %v", err)
	}

	final, _, err := svc.Complete(ctx, "cand-1", "https://cdn.example.com/t.txt", "https://cdn.example.com/r.pdf")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if final.InterviewStatus != models.StatusCompleted {
		t.Errorf("final status = %s, want completed", final.InterviewStatus)
	}
}
