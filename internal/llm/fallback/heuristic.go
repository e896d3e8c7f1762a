package fallback

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"hireloop/pkg/models"
)

// Placeholder values returned when the corresponding field cannot be located
// in the resume text. Absence of a field never aborts extraction.
const (
	PlaceholderName       = "Unknown Candidate"
	PlaceholderEmail      = "not-found@placeholder.invalid"
	PlaceholderSummary    = "Experienced professional with a diverse background."
	PlaceholderExperience = "Experience not specified"
)

var (
	nameLineRe   = regexp.MustCompile(`^([A-Z][A-Za-z'.-]+)(\s+[A-Z][A-Za-z'.-]+){1,3}$`)
	emailRe      = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	linkRe       = regexp.MustCompile(`https?://[^\s)>\]]+`)
	yearsRe      = regexp.MustCompile(`(?i)(\d+)\+?\s*years?`)
	yearRangeRe  = regexp.MustCompile(`(\d{4})\s*[-–]\s*((\d{4})|(?i:present|current))`)
	summaryHeads = []string{"summary", "professional summary", "profile", "overview"}
)

// skillVocabulary is the fixed keyword list matched case-insensitively against
// resume text. Matches are deduplicated.
var skillVocabulary = []string{
	"Go", "Golang", "Python", "Java", "JavaScript", "TypeScript", "C++", "C#",
	"Ruby", "Rust", "Kotlin", "Swift", "PHP", "Scala", "SQL",
	"React", "Vue", "Angular", "Node.js", "Django", "Flask", "Spring",
	"Docker", "Kubernetes", "Terraform", "Jenkins", "CI/CD", "Git",
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "Elasticsearch", "Kafka",
	"AWS", "Azure", "GCP", "Linux", "GraphQL", "REST", "gRPC",
	"Microservices", "Machine Learning", "Data Science", "DevOps", "Agile",
}

// HeuristicEngine implements deterministic resume extraction and match scoring
// with no external dependency. It never fails for well-formed UTF-8 input.
type HeuristicEngine struct{}

// NewHeuristicEngine creates the deterministic fallback engine
func NewHeuristicEngine() *HeuristicEngine {
	return &HeuristicEngine{}
}

// GetProviderName returns the name of the fallback engine
func (e *HeuristicEngine) GetProviderName() string {
	return "heuristic"
}

// ExtractProfile parses resume text into a structured candidate profile using
// fixed patterns. Missing fields yield placeholders, never errors.
func (e *HeuristicEngine) ExtractProfile(ctx context.Context, resumeText string) (*models.CandidateProfile, error) {
	lines := strings.Split(resumeText, "\n")

	profile := &models.CandidateProfile{
		Name:            extractName(lines),
		Email:           extractEmail(resumeText),
		PortfolioLinks:  extractLinks(resumeText),
		Skills:          extractSkills(resumeText),
		Experience:      extractExperience(lines),
		TotalExperience: extractTotalExperience(resumeText),
		Summary:         extractSummary(lines),
	}
	return profile, nil
}

func extractName(lines []string) string {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if nameLineRe.MatchString(trimmed) {
			return trimmed
		}
	}
	return PlaceholderName
}

func extractEmail(text string) string {
	if match := emailRe.FindString(text); match != "" {
		return match
	}
	return PlaceholderEmail
}

func extractLinks(text string) []string {
	var links []string
	seen := make(map[string]bool)
	for _, match := range linkRe.FindAllString(text, -1) {
		trimmed := strings.TrimRight(match, ".,;")
		key := strings.ToLower(trimmed)
		if !seen[key] {
			seen[key] = true
			links = append(links, trimmed)
		}
	}
	return links
}

func extractSkills(text string) []string {
	textLower := strings.ToLower(text)
	var skills []string
	seen := make(map[string]bool)
	for _, skill := range skillVocabulary {
		key := strings.ToLower(skill)
		if seen[key] {
			continue
		}
		if strings.Contains(textLower, key) {
			seen[key] = true
			skills = append(skills, skill)
		}
	}
	return skills
}

// extractExperience pulls entries from "Title | Company | Duration" lines
func extractExperience(lines []string) []models.ExperienceEntry {
	var entries []models.ExperienceEntry
	for _, line := range lines {
		parts := strings.Split(line, "|")
		if len(parts) != 3 {
			continue
		}
		position := strings.TrimSpace(parts[0])
		company := strings.TrimSpace(parts[1])
		duration := strings.TrimSpace(parts[2])
		if position == "" || company == "" {
			continue
		}

		entry := models.ExperienceEntry{
			Position: position,
			Company:  company,
			Duration: duration,
		}
		if m := yearRangeRe.FindStringSubmatch(duration); m != nil {
			entry.StartYear, _ = strconv.Atoi(m[1])
			if m[3] != "" {
				entry.EndYear, _ = strconv.Atoi(m[3])
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

// extractTotalExperience takes the maximum "N years" mention found in the text
func extractTotalExperience(text string) string {
	maxYears := 0
	found := false
	for _, m := range yearsRe.FindAllStringSubmatch(text, -1) {
		if years, err := strconv.Atoi(m[1]); err == nil {
			found = true
			if years > maxYears {
				maxYears = years
			}
		}
	}
	if !found {
		return PlaceholderExperience
	}
	return fmt.Sprintf("%d years total", maxYears)
}

// extractSummary returns the paragraph following a SUMMARY/PROFILE/OVERVIEW heading
func extractSummary(lines []string) string {
	for i, line := range lines {
		heading := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ":")))
		matched := false
		for _, h := range summaryHeads {
			if heading == h {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		var paragraph []string
		for _, next := range lines[i+1:] {
			trimmed := strings.TrimSpace(next)
			if trimmed == "" {
				if len(paragraph) > 0 {
					break
				}
				continue
			}
			paragraph = append(paragraph, trimmed)
		}
		if len(paragraph) > 0 {
			return strings.Join(paragraph, " ")
		}
	}
	return PlaceholderSummary
}

// Match scoring weights. The skill component dominates and is a ratio of
// matched to required skills, which keeps the score monotonic: adding a
// required skill the candidate holds never lowers it.
const (
	skillWeight      = 70.0
	experienceWeight = 20.0
	baseWeight       = 10.0
)

// ScoreMatch computes a keyword-overlap compatibility score between a
// candidate profile and a job requisition.
func (e *HeuristicEngine) ScoreMatch(ctx context.Context, profile *models.CandidateProfile, job *models.Job) (*models.MatchResult, error) {
	candidateSkills := make(map[string]bool, len(profile.Skills))
	for _, s := range profile.Skills {
		candidateSkills[strings.ToLower(s)] = true
	}

	var matched, missing []string
	for _, required := range job.RequiredSkills {
		if candidateSkills[strings.ToLower(required)] {
			matched = append(matched, required)
		} else {
			missing = append(missing, required)
		}
	}
	sort.Strings(matched)
	sort.Strings(missing)

	skillScore := skillWeight
	if len(job.RequiredSkills) > 0 {
		skillScore = skillWeight * float64(len(matched)) / float64(len(job.RequiredSkills))
	}

	years := parseYears(profile.TotalExperience)
	experienceScore := math.Min(float64(years)*4, experienceWeight)

	score := math.Round(baseWeight + skillScore + experienceScore)
	if score > 100 {
		score = 100
	}

	result := &models.MatchResult{
		CandidateName:   profile.Name,
		CandidateEmail:  profile.Email,
		MatchPercentage: score,
		Strengths:       buildStrengths(matched, years),
		Improvements:    buildImprovements(missing),
	}
	return result, nil
}

func parseYears(totalExperience string) int {
	if m := yearsRe.FindStringSubmatch(totalExperience); m != nil {
		years, _ := strconv.Atoi(m[1])
		return years
	}
	return 0
}

func buildStrengths(matched []string, years int) []string {
	var strengths []string
	if len(matched) > 0 {
		strengths = append(strengths, "Hands-on experience with "+strings.Join(matched, ", "))
	}
	if years > 0 {
		strengths = append(strengths, fmt.Sprintf("%d years of relevant professional experience", years))
	}
	if len(strengths) == 0 {
		strengths = append(strengths, "Background outside the listed requirements may bring a fresh perspective")
	}
	return strengths
}

func buildImprovements(missing []string) []string {
	var improvements []string
	for _, skill := range missing {
		improvements = append(improvements, "No evidence of experience with "+skill)
	}
	if len(improvements) == 0 {
		improvements = append(improvements, "Covers all required skills; probe depth during the interview")
	}
	return improvements
}
