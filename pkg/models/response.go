package models

import "time"

// ReviewResponse is returned by the review operation
type ReviewResponse struct {
	Success       bool              `json:"success"`
	Status        InterviewStatus   `json:"status"`
	Profile       *CandidateProfile `json:"profile,omitempty"`
	Match         *MatchResult      `json:"match,omitempty"`
	UsedLLM       bool              `json:"used_llm"`
	RequestID     string            `json:"request_id"`
	ProcessedTime time.Duration     `json:"processing_time"`
}

// TriggerResponse is returned by the interview trigger operation
type TriggerResponse struct {
	Success   bool            `json:"success"`
	Status    InterviewStatus `json:"status"`
	RequestID string          `json:"request_id"`
}

// ScheduleResponse is returned by the public scheduling surface
type ScheduleResponse struct {
	Success     bool      `json:"success"`
	MeetingLink string    `json:"meeting_link,omitempty"`
	Datetime    time.Time `json:"datetime"`
}

// CallbackResponse acknowledges an agent result callback
type CallbackResponse struct {
	Success       bool            `json:"success"`
	Status        InterviewStatus `json:"status"`
	TranscriptURL string          `json:"transcript_url,omitempty"`
	ReportURL     string          `json:"report_url,omitempty"`
}

// QuestionsResponse carries a generated question set
type QuestionsResponse struct {
	Success   bool         `json:"success"`
	Questions *QuestionSet `json:"questions,omitempty"`
	RequestID string       `json:"request_id"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
