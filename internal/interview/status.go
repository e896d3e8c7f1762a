package interview

import (
	"hireloop/pkg/models"
	"hireloop/pkg/utils"
)

// forwardTransitions is the lifecycle transition table. Cancellation is handled
// separately: it is reachable from any non-terminal status.
var forwardTransitions = map[models.InterviewStatus]models.InterviewStatus{
	models.StatusApplied:            models.StatusResumeReviewed,
	models.StatusResumeReviewed:     models.StatusInterviewRequested,
	models.StatusInterviewRequested: models.StatusScheduled,
	models.StatusScheduled:          models.StatusInProgress,
	models.StatusInProgress:         models.StatusCompleted,
}

// CanTransition reports whether moving from one status to another is allowed
func CanTransition(from, to models.InterviewStatus) bool {
	if to == models.StatusCancelled {
		return !from.IsTerminal()
	}
	return forwardTransitions[from] == to
}

// checkTransition returns a conflict error for a disallowed transition. The
// store enforces the same guard atomically; this gives callers a precise error
// before attempting the write.
func checkTransition(from, to models.InterviewStatus) error {
	if !CanTransition(from, to) {
		return utils.NewConflictError(string(from) + " cannot transition to " + string(to))
	}
	return nil
}
