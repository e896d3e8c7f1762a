package models

import "time"

// InterviewStatus represents a candidate's position in the interview lifecycle
type InterviewStatus string

const (
	StatusApplied            InterviewStatus = "applied"
	StatusResumeReviewed     InterviewStatus = "resume_reviewed"
	StatusInterviewRequested InterviewStatus = "interview_requested"
	StatusScheduled          InterviewStatus = "scheduled"
	StatusInProgress         InterviewStatus = "in_progress"
	StatusCompleted          InterviewStatus = "completed"
	StatusCancelled          InterviewStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed from the status
func (s InterviewStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Candidate is the persisted interview record for a single applicant
type Candidate struct {
	ID             string `json:"id" gorm:"primaryKey"`
	OrganizationID string `json:"organization_id" gorm:"index"`
	JobID          string `json:"job_id" gorm:"index"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ResumeText     string `json:"-" gorm:"type:text"`

	InterviewStatus   InterviewStatus `json:"interview_status" gorm:"index;default:'applied'"`
	InterviewDatetime *time.Time      `json:"interview_datetime,omitempty"`
	MeetingLink       string          `json:"meeting_link,omitempty"`
	SchedulerToken    string          `json:"-" gorm:"uniqueIndex:idx_candidates_scheduler_token,where:scheduler_token <> ''"`
	TranscriptURL     string          `json:"transcript_url,omitempty"`
	ReportURL         string          `json:"report_url,omitempty"`

	// ClaimedAt is set when the scheduler claims the interview; the stuck-interview
	// sweep keys off it.
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Job is the requisition context a candidate applied to. Owned by the wider
// recruiting application; read-only here.
type Job struct {
	ID             string   `json:"id" gorm:"primaryKey"`
	OrganizationID string   `json:"organization_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description" gorm:"type:text"`
	RequiredSkills []string `json:"required_skills" gorm:"serializer:json"`
}

// ExperienceEntry is a single position in a candidate's work history
type ExperienceEntry struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	Duration    string `json:"duration"`
	StartYear   int    `json:"start_year,omitempty"`
	EndYear     int    `json:"end_year,omitempty"`
	Description string `json:"description,omitempty"`
}

// CandidateProfile is the structured output of resume extraction. Produced fresh
// per extraction call and never persisted here.
type CandidateProfile struct {
	Name            string            `json:"name"`
	Email           string            `json:"email"`
	PortfolioLinks  []string          `json:"portfolio_links"`
	Skills          []string          `json:"skills"`
	Experience      []ExperienceEntry `json:"experience"`
	TotalExperience string            `json:"total_experience"`
	Summary         string            `json:"summary"`
}

// MatchResult is the output of match scoring. Ephemeral.
type MatchResult struct {
	CandidateID     string   `json:"candidate_id"`
	CandidateName   string   `json:"candidate_name"`
	CandidateEmail  string   `json:"candidate_email"`
	MatchPercentage float64  `json:"match_percentage"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
}

// QuestionSet holds the three generated interview question categories
type QuestionSet struct {
	Technical   []string `json:"technical"`
	Behavioral  []string `json:"behavioral"`
	JobSpecific []string `json:"job_specific"`
}
