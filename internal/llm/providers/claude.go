package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"hireloop/internal/config"
	"hireloop/internal/logging"
	"hireloop/pkg/models"
)

// ClaudeProvider implements the LLM provider interface using Anthropic's Claude
type ClaudeProvider struct {
	client anthropic.Client
	config *config.Config
	logger logging.Logger
}

// NewClaudeProvider creates a new Claude provider instance
func NewClaudeProvider(cfg *config.Config) *ClaudeProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.LLM.APIKey),
	)

	return &ClaudeProvider{
		client: client,
		config: cfg,
		logger: logging.GetGlobalLogger(),
	}
}

// ExtractProfile converts raw resume text into a structured candidate profile using Claude
func (cp *ClaudeProvider) ExtractProfile(ctx context.Context, resumeText string) (*models.CandidateProfile, error) {
	startTime := time.Now()

	cp.logger.Info("Starting resume extraction with Claude", map[string]interface{}{
		"resume_length": len(resumeText),
		"provider":      "claude",
	})

	// Truncate to fit token limits, roughly 3 chars per token
	maxContentLength := cp.config.LLM.MaxTokens * 3
	if len(resumeText) > maxContentLength {
		resumeText = resumeText[:maxContentLength] + "..."
		cp.logger.Debug("Resume text truncated to fit token limits")
	}

	responseText, err := cp.complete(ctx, cp.buildExtractionPrompt(resumeText))
	if err != nil {
		return nil, err
	}

	var profile models.CandidateProfile
	if err := json.Unmarshal([]byte(responseText), &profile); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response from Claude: %w", err)
	}

	if profile.Name == "" {
		profile.Name = "Unknown Candidate"
	}

	cp.logger.Info("Resume extraction completed", map[string]interface{}{
		"candidate_name":  profile.Name,
		"skills_count":    len(profile.Skills),
		"processing_time": time.Since(startTime).String(),
		"provider":        "claude",
	})

	return &profile, nil
}

// ScoreMatch computes candidate/job compatibility using Claude
func (cp *ClaudeProvider) ScoreMatch(ctx context.Context, profile *models.CandidateProfile, job *models.Job) (*models.MatchResult, error) {
	responseText, err := cp.complete(ctx, cp.buildMatchPrompt(profile, job))
	if err != nil {
		return nil, err
	}

	var result models.MatchResult
	if err := json.Unmarshal([]byte(responseText), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response from Claude: %w", err)
	}

	if result.MatchPercentage < 0 {
		result.MatchPercentage = 0
	}
	if result.MatchPercentage > 100 {
		result.MatchPercentage = 100
	}
	result.CandidateName = profile.Name
	result.CandidateEmail = profile.Email

	return &result, nil
}

// GenerateQuestions produces the three interview question categories using Claude
func (cp *ClaudeProvider) GenerateQuestions(ctx context.Context, profile *models.CandidateProfile, job *models.Job) (*models.QuestionSet, error) {
	responseText, err := cp.complete(ctx, cp.buildQuestionsPrompt(profile, job))
	if err != nil {
		return nil, err
	}

	var questions models.QuestionSet
	if err := json.Unmarshal([]byte(responseText), &questions); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response from Claude: %w", err)
	}

	if len(questions.Technical) == 0 || len(questions.Behavioral) == 0 || len(questions.JobSpecific) == 0 {
		return nil, fmt.Errorf("Claude returned an incomplete question set")
	}

	return &questions, nil
}

// complete sends a prompt to Claude and returns the cleaned response text
func (cp *ClaudeProvider) complete(ctx context.Context, prompt string) (string, error) {
	response, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(cp.config.LLM.Model),
		MaxTokens:   int64(cp.config.LLM.MaxTokens),
		Temperature: anthropic.Float(float64(cp.config.LLM.Temperature)),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call Claude API: %w", err)
	}

	if len(response.Content) == 0 {
		return "", fmt.Errorf("empty response from Claude")
	}

	var responseText string
	for _, content := range response.Content {
		textContent := content.AsText()
		responseText = textContent.Text
		break
	}
	if responseText == "" {
		return "", fmt.Errorf("no text content in Claude response")
	}

	// Remove markdown code fences if present
	responseText = strings.TrimSpace(responseText)
	if strings.HasPrefix(responseText, "```json") {
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)
	} else if strings.HasPrefix(responseText, "```") {
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)
	}

	return responseText, nil
}

// buildExtractionPrompt creates the prompt for Claude to extract a candidate profile
func (cp *ClaudeProvider) buildExtractionPrompt(resumeText string) string {
	return fmt.Sprintf(`You are a resume analyzer. Extract structured candidate information from the provided resume text and return it as a JSON object.

Return a valid JSON object with exactly these fields:

{
  "name": "string - The candidate's full name",
  "email": "string - The candidate's email address",
  "portfolio_links": ["array of strings - personal site, GitHub, LinkedIn URLs"],
  "skills": ["array of strings - technologies and skills, deduplicated"],
  "experience": [
    {
      "company": "string",
      "position": "string",
      "duration": "string - as written in the resume",
      "start_year": number - 0 if not determinable,
      "end_year": number - 0 if ongoing or not determinable,
      "description": "string - one sentence summary"
    }
  ],
  "total_experience": "string - e.g. '7 years total'",
  "summary": "string - professional summary, 2-3 sentences"
}

IMPORTANT RULES:
1. Return ONLY valid JSON, no additional text or explanation
2. If information is not found, use empty string "" for strings, empty array [] for arrays, and 0 for numbers
3. Deduplicate skills case-insensitively
4. total_experience reflects the candidate's overall years of work

RESUME TEXT:
%s`, resumeText)
}

// buildMatchPrompt creates the prompt for Claude to score a candidate against a job
func (cp *ClaudeProvider) buildMatchPrompt(profile *models.CandidateProfile, job *models.Job) string {
	profileJSON, _ := json.Marshal(profile)
	return fmt.Sprintf(`You are a recruiting analyst. Score how well the candidate below matches the job and return a JSON object.

Return a valid JSON object with exactly these fields:

{
  "match_percentage": number - integer 0 to 100,
  "strengths": ["array of strings - 2-5 concrete strength statements"],
  "improvements": ["array of strings - 2-5 concrete gap statements"]
}

IMPORTANT RULES:
1. Return ONLY valid JSON, no additional text or explanation
2. Base the score primarily on required-skill coverage, then relevant experience
3. Statements must reference specifics from the candidate profile or job

JOB:
Title: %s
Description: %s
Required skills: %s

CANDIDATE PROFILE:
%s`, job.Title, job.Description, strings.Join(job.RequiredSkills, ", "), string(profileJSON))
}

// buildQuestionsPrompt creates the prompt for Claude to generate interview questions
func (cp *ClaudeProvider) buildQuestionsPrompt(profile *models.CandidateProfile, job *models.Job) string {
	profileJSON, _ := json.Marshal(profile)
	return fmt.Sprintf(`You are an interview designer. Create interview questions for the candidate and job below and return a JSON object.

Return a valid JSON object with exactly these fields:

{
  "technical": ["array of strings - 5 technical questions grounded in the required skills"],
  "behavioral": ["array of strings - 5 behavioral questions"],
  "job_specific": ["array of strings - 5 questions specific to this role and the candidate's background"]
}

IMPORTANT RULES:
1. Return ONLY valid JSON, no additional text or explanation
2. Every category must contain at least 3 questions
3. Questions must be answerable in a spoken interview

JOB:
Title: %s
Description: %s
Required skills: %s

CANDIDATE PROFILE:
%s`, job.Title, job.Description, strings.Join(job.RequiredSkills, ", "), string(profileJSON))
}

// IsHealthy checks if the Claude provider is healthy and available
func (cp *ClaudeProvider) IsHealthy(ctx context.Context) error {
	if cp.config.LLM.APIKey == "" {
		return fmt.Errorf("Claude API key not configured - set LLM_API_KEY environment variable")
	}

	_, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(cp.config.LLM.Model),
		MaxTokens: 64,
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: "Hello"},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return fmt.Errorf("Claude API health check failed: %w", err)
	}

	return nil
}

// GetProviderName returns the name of the LLM provider
func (cp *ClaudeProvider) GetProviderName() string {
	return "claude"
}
