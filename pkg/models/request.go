package models

// ReviewRequest carries the resume text for the review operation
type ReviewRequest struct {
	ResumeText string `json:"resume_text" validate:"required,min=10"`
}

// ScheduleRequest is the public scheduling payload. Datetime is RFC3339.
type ScheduleRequest struct {
	Token    string `json:"token" validate:"required"`
	Datetime string `json:"datetime" validate:"required"`
}

// AgentCallbackRequest is the machine callback payload from the interview agent
type AgentCallbackRequest struct {
	CandidateID   string `json:"candidate_id" validate:"required"`
	TranscriptURL string `json:"transcript_url" validate:"omitempty,url"`
	ReportURL     string `json:"report_url" validate:"omitempty,url"`
}

// QuestionsRequest optionally narrows question generation to a subset of focus areas
type QuestionsRequest struct {
	FocusAreas []string `json:"focus_areas,omitempty"`
}
