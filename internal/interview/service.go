package interview

import (
	"context"
	"time"

	"hireloop/internal/config"
	"hireloop/internal/llm"
	"hireloop/internal/logging"
	"hireloop/internal/notify"
	"hireloop/internal/store"
	"hireloop/pkg/models"
	"hireloop/pkg/utils"
)

// tokenAttempts bounds the scheduler token uniqueness loop. With 192-bit
// tokens a collision is effectively impossible; the retry exists so a
// duplicate insert degrades to another draw instead of a failed request.
const tokenAttempts = 5

// Operator identifies the authenticated operator making a request. Candidate
// access is scoped to the operator's organization.
type Operator struct {
	OrganizationID string
}

// ReviewOutcome is the result of a resume review: the transitioned candidate
// plus the extraction and match artifacts produced along the way.
type ReviewOutcome struct {
	Candidate *models.Candidate
	Profile   *models.CandidateProfile
	Match     *models.MatchResult
	UsedLLM   bool
}

// Service implements the interview lifecycle operations. Every status change
// funnels through the store's conditional transition, so concurrent operators,
// candidates, and sweeps resolve races to exactly one winner.
type Service struct {
	config   *config.Config
	store    store.Store
	llm      *llm.Manager
	notifier notify.Notifier
	logger   logging.Logger
}

// NewService creates the interview service
func NewService(cfg *config.Config, st store.Store, manager *llm.Manager, notifier notify.Notifier) *Service {
	return &Service{
		config:   cfg,
		store:    st,
		llm:      manager,
		notifier: notifier,
		logger:   logging.GetGlobalLogger(),
	}
}

// authorize checks that the candidate belongs to the operator's organization
func (s *Service) authorize(op Operator, candidate *models.Candidate) error {
	if candidate.OrganizationID != op.OrganizationID {
		return utils.NewForbiddenError("candidate " + candidate.ID + " belongs to another organization")
	}
	return nil
}

// Get returns a candidate visible to the operator
func (s *Service) Get(ctx context.Context, op Operator, id string) (*models.Candidate, error) {
	candidate, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(op, candidate); err != nil {
		return nil, err
	}
	return candidate, nil
}

// MarkReviewed runs resume extraction and match scoring, stores the resume
// text, and moves the candidate from applied to resume_reviewed.
func (s *Service) MarkReviewed(ctx context.Context, op Operator, id, resumeText string) (*ReviewOutcome, error) {
	candidate, err := s.Get(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(candidate.InterviewStatus, models.StatusResumeReviewed); err != nil {
		return nil, err
	}

	job, err := s.store.GetJob(ctx, candidate.JobID)
	if err != nil {
		return nil, err
	}

	profile, usedLLM, err := s.llm.ExtractProfile(ctx, resumeText)
	if err != nil {
		return nil, err
	}

	match, _, err := s.llm.ScoreMatch(ctx, profile, job)
	if err != nil {
		return nil, err
	}
	match.CandidateID = candidate.ID

	updated, err := s.store.ConditionalTransition(ctx, id,
		models.StatusApplied, models.StatusResumeReviewed,
		&store.TransitionFields{ResumeText: &resumeText})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Resume reviewed", map[string]interface{}{
		"candidate_id":     id,
		"match_percentage": match.MatchPercentage,
		"used_llm":         usedLLM,
	})

	return &ReviewOutcome{
		Candidate: updated,
		Profile:   profile,
		Match:     match,
		UsedLLM:   usedLLM,
	}, nil
}

// Trigger requests an interview for a reviewed candidate: mints a one-time
// scheduler token, transitions to interview_requested, and sends the candidate
// their scheduling link.
func (s *Service) Trigger(ctx context.Context, op Operator, id string) (*models.Candidate, string, error) {
	candidate, err := s.Get(ctx, op, id)
	if err != nil {
		return nil, "", err
	}
	if err := checkTransition(candidate.InterviewStatus, models.StatusInterviewRequested); err != nil {
		return nil, "", err
	}

	var updated *models.Candidate
	var token string
	for attempt := 0; attempt < tokenAttempts; attempt++ {
		token, err = utils.GenerateSchedulerToken()
		if err != nil {
			return nil, "", utils.NewInternalServerError("failed to generate scheduler token")
		}
		if _, lookupErr := s.store.GetByToken(ctx, token); utils.KindOf(lookupErr) != utils.KindNotFound {
			continue
		}

		updated, err = s.store.ConditionalTransition(ctx, id,
			models.StatusResumeReviewed, models.StatusInterviewRequested,
			&store.TransitionFields{SchedulerToken: &token})
		if err == nil {
			break
		}
		if utils.KindOf(err) == utils.KindConflict && attempt+1 < tokenAttempts {
			// Could be a duplicate-token insert on Postgres; draw again.
			// A genuine status race will conflict on every attempt.
			continue
		}
		return nil, "", err
	}
	if updated == nil {
		return nil, "", utils.NewInternalServerError("failed to mint a unique scheduler token")
	}

	link := s.config.Server.PublicURL + "/schedule?token=" + token

	jobTitle := ""
	if job, jobErr := s.store.GetJob(ctx, candidate.JobID); jobErr == nil {
		jobTitle = job.Title
	}
	s.sendNotification(func(nctx context.Context) error {
		return s.notifier.SendSchedulingInvite(nctx, updated, jobTitle, link)
	})

	s.logger.Info("Interview requested", map[string]interface{}{
		"candidate_id": id,
	})
	return updated, link, nil
}

// Schedule books an interview slot through a scheduler token. The token is
// consumed in the same conditional write that books the slot, so a reused link
// and a double submit both lose cleanly.
func (s *Service) Schedule(ctx context.Context, token string, when time.Time) (*models.Candidate, error) {
	candidate, err := s.store.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if !when.After(time.Now()) {
		return nil, utils.NewValidationError("interview time must be in the future")
	}

	meetingLink := s.config.Meetings.BaseURL + "/" + utils.GenerateMeetingRoomID()
	consumed := ""
	updated, err := s.store.ConditionalTransition(ctx, candidate.ID,
		models.StatusInterviewRequested, models.StatusScheduled,
		&store.TransitionFields{
			SchedulerToken:    &consumed,
			InterviewDatetime: &when,
			MeetingLink:       &meetingLink,
		})
	if err != nil {
		return nil, err
	}

	s.sendNotification(func(nctx context.Context) error {
		return s.notifier.SendScheduleConfirmation(nctx, updated)
	})

	s.logger.Info("Interview scheduled", map[string]interface{}{
		"candidate_id": candidate.ID,
		"datetime":     when.Format(time.RFC3339),
	})
	return updated, nil
}

// Complete records interview results reported by the agent and moves the
// candidate to completed. The operation is idempotent: repeating the callback
// for an already completed candidate succeeds without re-notifying.
func (s *Service) Complete(ctx context.Context, id, transcriptURL, reportURL string) (*models.Candidate, bool, error) {
	candidate, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if candidate.InterviewStatus == models.StatusCompleted {
		return candidate, true, nil
	}

	now := time.Now().UTC()
	updated, err := s.store.ConditionalTransition(ctx, id,
		models.StatusInProgress, models.StatusCompleted,
		&store.TransitionFields{
			TranscriptURL: &transcriptURL,
			ReportURL:     &reportURL,
			CompletedAt:   &now,
		})
	if err != nil {
		if utils.KindOf(err) == utils.KindConflict {
			// Lost a race with a duplicate callback; completed still counts.
			current, getErr := s.store.Get(ctx, id)
			if getErr == nil && current.InterviewStatus == models.StatusCompleted {
				return current, true, nil
			}
		}
		return nil, false, err
	}

	s.sendNotification(func(nctx context.Context) error {
		return s.notifier.SendResultsNotice(nctx, updated)
	})

	s.logger.Info("Interview completed", map[string]interface{}{
		"candidate_id": id,
	})
	return updated, false, nil
}

// Cancel moves a candidate to cancelled from any non-terminal status. The
// current status is re-read on conflict so cancellation wins against
// concurrent forward progress, but never resurrects a terminal candidate.
func (s *Service) Cancel(ctx context.Context, op Operator, id string) (*models.Candidate, error) {
	candidate, err := s.Get(ctx, op, id)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < 3; attempt++ {
		if err := checkTransition(candidate.InterviewStatus, models.StatusCancelled); err != nil {
			return nil, err
		}

		updated, err := s.store.ConditionalTransition(ctx, id,
			candidate.InterviewStatus, models.StatusCancelled, nil)
		if err == nil {
			s.logger.Info("Interview cancelled", map[string]interface{}{
				"candidate_id": id,
				"from_status":  string(candidate.InterviewStatus),
			})
			return updated, nil
		}
		if utils.KindOf(err) != utils.KindConflict {
			return nil, err
		}

		candidate, err = s.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
	}
	return nil, utils.NewConflictError("candidate " + id + " status kept changing, try again")
}

// GenerateQuestions produces interview questions for a reviewed candidate.
// Requires the AI backend; there is no deterministic fallback.
func (s *Service) GenerateQuestions(ctx context.Context, op Operator, id string, focusAreas []string) (*models.QuestionSet, error) {
	candidate, err := s.Get(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if candidate.ResumeText == "" {
		return nil, utils.NewConflictError("candidate " + id + " has no reviewed resume")
	}

	job, err := s.store.GetJob(ctx, candidate.JobID)
	if err != nil {
		return nil, err
	}
	if len(focusAreas) > 0 {
		job.RequiredSkills = append(append([]string{}, job.RequiredSkills...), focusAreas...)
	}

	profile, _, err := s.llm.ExtractProfile(ctx, candidate.ResumeText)
	if err != nil {
		return nil, err
	}

	return s.llm.GenerateQuestions(ctx, profile, job)
}

// sendNotification dispatches a notification off the request path. Failures
// are logged and never surfaced to the caller.
func (s *Service) sendNotification(send func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.Notifications.Timeout+5*time.Second)
		defer cancel()
		if err := send(ctx); err != nil {
			s.logger.Warn("Notification delivery failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()
}
