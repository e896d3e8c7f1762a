package llm

import (
	"context"

	"hireloop/pkg/models"
)

// Provider defines the interface for AI completion backends. Extraction and
// match scoring degrade to a deterministic fallback when the provider is
// unavailable; question generation does not.
type Provider interface {
	// ExtractProfile converts raw resume text into a structured candidate profile
	ExtractProfile(ctx context.Context, resumeText string) (*models.CandidateProfile, error)

	// ScoreMatch computes compatibility between a candidate profile and a job
	ScoreMatch(ctx context.Context, profile *models.CandidateProfile, job *models.Job) (*models.MatchResult, error)

	// GenerateQuestions produces technical, behavioral, and job-specific
	// interview questions for a candidate and job pair
	GenerateQuestions(ctx context.Context, profile *models.CandidateProfile, job *models.Job) (*models.QuestionSet, error)

	// IsHealthy checks if the provider is healthy and available
	IsHealthy(ctx context.Context) error

	// GetProviderName returns the name of the provider
	GetProviderName() string
}
