package interview

import (
	"testing"

	"hireloop/pkg/models"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from models.InterviewStatus
		to   models.InterviewStatus
		want bool
	}{
		{"applied to reviewed", models.StatusApplied, models.StatusResumeReviewed, true},
		{"reviewed to requested", models.StatusResumeReviewed, models.StatusInterviewRequested, true},
		{"requested to scheduled", models.StatusInterviewRequested, models.StatusScheduled, true},
		{"scheduled to in progress", models.StatusScheduled, models.StatusInProgress, true},
		{"in progress to completed", models.StatusInProgress, models.StatusCompleted, true},
		{"applied skips to scheduled", models.StatusApplied, models.StatusScheduled, false},
		{"reviewed skips to completed", models.StatusResumeReviewed, models.StatusCompleted, false},
		{"backward move", models.StatusScheduled, models.StatusResumeReviewed, false},
		{"self transition", models.StatusScheduled, models.StatusScheduled, false},
		{"cancel from applied", models.StatusApplied, models.StatusCancelled, true},
		{"cancel from scheduled", models.StatusScheduled, models.StatusCancelled, true},
		{"cancel from in progress", models.StatusInProgress, models.StatusCancelled, true},
		{"cancel from completed", models.StatusCompleted, models.StatusCancelled, false},
		{"cancel from cancelled", models.StatusCancelled, models.StatusCancelled, false},
		{"resume after completion", models.StatusCompleted, models.StatusInProgress, false},
		{"resume after cancellation", models.StatusCancelled, models.StatusResumeReviewed, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTransition(tc.from, tc.to); got != tc.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []models.InterviewStatus{
		models.StatusApplied, models.StatusResumeReviewed, models.StatusInterviewRequested,
		models.StatusScheduled, models.StatusInProgress,
	} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	if !models.StatusCompleted.IsTerminal() {
		t.Error("completed should be terminal")
	}
	if !models.StatusCancelled.IsTerminal() {
		t.Error("cancelled should be terminal")
	}
}
