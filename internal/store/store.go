package store

import (
	"context"
	"time"

	"hireloop/pkg/models"
)

// TransitionFields carries the record fields written atomically with a status
// transition. Nil pointers are left untouched; pointing at a zero value clears
// the column (used to invalidate a consumed scheduler token).
type TransitionFields struct {
	ResumeText        *string
	SchedulerToken    *string
	InterviewDatetime *time.Time
	MeetingLink       *string
	TranscriptURL     *string
	ReportURL         *string
	ClaimedAt         *time.Time
	CompletedAt       *time.Time
}

// Store is the Interview State Store. ConditionalTransition is the single
// compare-and-set primitive every lifecycle transition goes through; it must
// fail with a conflict, never silently overwrite, when the current status does
// not match the expected one.
type Store interface {
	// Create inserts a new candidate record
	Create(ctx context.Context, candidate *models.Candidate) error

	// Get retrieves a candidate by id
	Get(ctx context.Context, id string) (*models.Candidate, error)

	// GetByToken resolves an active scheduler token to its candidate
	GetByToken(ctx context.Context, token string) (*models.Candidate, error)

	// ListReady returns scheduled candidates whose interview time has arrived
	ListReady(ctx context.Context, now time.Time, limit int) ([]*models.Candidate, error)

	// ListStuck returns in-progress candidates claimed before the given cutoff
	ListStuck(ctx context.Context, claimedBefore time.Time, limit int) ([]*models.Candidate, error)

	// ConditionalTransition atomically moves a candidate from expected to next,
	// applying fields in the same write. Returns a conflict error if the current
	// status differs from expected, a not-found error for unknown ids.
	ConditionalTransition(ctx context.Context, id string, expected, next models.InterviewStatus, fields *TransitionFields) (*models.Candidate, error)

	// GetJob retrieves the job requisition a candidate applied to
	GetJob(ctx context.Context, id string) (*models.Job, error)

	// Ping checks store connectivity
	Ping(ctx context.Context) error

	// Close releases store resources
	Close() error
}

// applyFields copies the non-nil transition fields onto a candidate record
func applyFields(c *models.Candidate, fields *TransitionFields) {
	if fields == nil {
		return
	}
	if fields.ResumeText != nil {
		c.ResumeText = *fields.ResumeText
	}
	if fields.SchedulerToken != nil {
		c.SchedulerToken = *fields.SchedulerToken
	}
	if fields.InterviewDatetime != nil {
		t := *fields.InterviewDatetime
		c.InterviewDatetime = &t
	}
	if fields.MeetingLink != nil {
		c.MeetingLink = *fields.MeetingLink
	}
	if fields.TranscriptURL != nil {
		c.TranscriptURL = *fields.TranscriptURL
	}
	if fields.ReportURL != nil {
		c.ReportURL = *fields.ReportURL
	}
	if fields.ClaimedAt != nil {
		t := *fields.ClaimedAt
		c.ClaimedAt = &t
	}
	if fields.CompletedAt != nil {
		t := *fields.CompletedAt
		c.CompletedAt = &t
	}
}
