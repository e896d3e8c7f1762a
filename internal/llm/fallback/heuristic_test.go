package fallback

import (
	"context"
	"strings"
	"testing"

	"hireloop/pkg/models"
)

const resume = `Alex Chen
alex.chen@mail.example
https://github.com/alexchen

SUMMARY
Platform engineer who has spent 5 years building delivery tooling.
Previously 3 years in infrastructure operations.

Senior Platform Engineer | Cloudworks | 2021 - Present
Shipped Go services on Kubernetes with PostgreSQL.

Infrastructure Engineer | Hostbase | 2018 - 2021
Ran Docker fleets and Terraform pipelines.`

func TestExtractProfile(t *testing.T) {
	engine := NewHeuristicEngine()
	profile, err := engine.ExtractProfile(context.Background(), resume)
	if err != nil {
		t.Fatalf("ExtractProfile: %v", err)
	}

	if profile.Name != "Alex Chen" {
		t.Errorf("name = %q, want Alex Chen", profile.Name)
	}
	if profile.Email != "alex.chen@mail.example" {
		t.Errorf("email = %q", profile.Email)
	}
	if len(profile.PortfolioLinks) != 1 || profile.PortfolioLinks[0] != "https://github.com/alexchen" {
		t.Errorf("links = %v", profile.PortfolioLinks)
	}
	// The largest years mention wins
	if profile.TotalExperience != "5 years total" {
		t.Errorf("total experience = %q, want 5 years total", profile.TotalExperience)
	}
	if !strings.HasPrefix(profile.Summary, "Platform engineer") {
		t.Errorf("summary = %q", profile.Summary)
	}

	wantSkills := map[string]bool{"Go": true, "Kubernetes": true, "PostgreSQL": true, "Docker": true, "Terraform": true}
	found := 0
	for _, s := range profile.Skills {
		if wantSkills[s] {
			found++
		}
	}
	if found != len(wantSkills) {
		t.Errorf("skills = %v, missing some of %v", profile.Skills, wantSkills)
	}

	if len(profile.Experience) != 2 {
		t.Fatalf("experience entries = %d, want 2", len(profile.Experience))
	}
	first := profile.Experience[0]
	if first.Company != "Cloudworks" || first.Position != "Senior Platform Engineer" {
		t.Errorf("first entry = %+v", first)
	}
	if first.StartYear != 2021 || first.EndYear != 0 {
		t.Errorf("first entry years = %d-%d, want 2021-ongoing", first.StartYear, first.EndYear)
	}
}

func TestExtractProfilePlaceholders(t *testing.T) {
	engine := NewHeuristicEngine()
	profile, err := engine.ExtractProfile(context.Background(), "nothing useful here")
	if err != nil {
		t.Fatalf("ExtractProfile: %v", err)
	}

	if profile.Name != PlaceholderName {
		t.Errorf("name = %q, want placeholder", profile.Name)
	}
	if profile.Email != PlaceholderEmail {
		t.Errorf("email = %q, want placeholder", profile.Email)
	}
	if profile.TotalExperience != PlaceholderExperience {
		t.Errorf("total experience = %q, want placeholder", profile.TotalExperience)
	}
	if profile.Summary != PlaceholderSummary {
		t.Errorf("summary = %q, want placeholder", profile.Summary)
	}
}

func TestExtractProfileIsDeterministic(t *testing.T) {
	engine := NewHeuristicEngine()
	a, _ := engine.ExtractProfile(context.Background(), resume)
	b, _ := engine.ExtractProfile(context.Background(), resume)

	if a.Name != b.Name || a.Email != b.Email || a.TotalExperience != b.TotalExperience {
		t.Error("identical input produced different profiles")
	}
	if len(a.Skills) != len(b.Skills) {
		t.Errorf("skill lists differ: %v vs %v", a.Skills, b.Skills)
	}
	for i := range a.Skills {
		if a.Skills[i] != b.Skills[i] {
			t.Errorf("skill order differs at %d: %q vs %q", i, a.Skills[i], b.Skills[i])
		}
	}
}

func TestScoreMatch(t *testing.T) {
	engine := NewHeuristicEngine()
	job := &models.Job{
		Title:          "Platform Engineer",
		RequiredSkills: []string{"Go", "Kubernetes", "Rust"},
	}
	profile := &models.CandidateProfile{
		Name:            "Alex Chen",
		Email:           "alex.chen@mail.example",
		Skills:          []string{"Go", "Kubernetes", "PostgreSQL"},
		TotalExperience: "5 years total",
	}

	result, err := engine.ScoreMatch(context.Background(), profile, job)
	if err != nil {
		t.Fatalf("ScoreMatch: %v", err)
	}
	if result.MatchPercentage <= 0 || result.MatchPercentage > 100 {
		t.Errorf("score = %v, want in (0, 100]", result.MatchPercentage)
	}
	if len(result.Strengths) == 0 {
		t.Error("no strengths produced")
	}
	foundGap := false
	for _, imp := range result.Improvements {
		if strings.Contains(imp, "Rust") {
			foundGap = true
		}
	}
	if !foundGap {
		t.Errorf("improvements %v do not mention the missing skill", result.Improvements)
	}
}

// TestScoreMatchMonotonic checks that adding a required skill the candidate
// holds never lowers the score.
func TestScoreMatchMonotonic(t *testing.T) {
	engine := NewHeuristicEngine()
	profile := &models.CandidateProfile{
		Skills:          []string{"Go", "Docker", "PostgreSQL", "Kubernetes"},
		TotalExperience: "4 years total",
	}

	job := &models.Job{RequiredSkills: []string{"Go"}}
	prev, err := engine.ScoreMatch(context.Background(), profile, job)
	if err != nil {
		t.Fatalf("ScoreMatch: %v", err)
	}

	for _, extra := range []string{"Docker", "PostgreSQL", "Kubernetes"} {
		job.RequiredSkills = append(job.RequiredSkills, extra)
		next, err := engine.ScoreMatch(context.Background(), profile, job)
		if err != nil {
			t.Fatalf("ScoreMatch with %s: %v", extra, err)
		}
		if next.MatchPercentage < prev.MatchPercentage {
			t.Errorf("score dropped from %v to %v after adding held skill %s",
				prev.MatchPercentage, next.MatchPercentage, extra)
		}
		prev = next
	}
}

func TestScoreMatchNoRequiredSkills(t *testing.T) {
	engine := NewHeuristicEngine()
	result, err := engine.ScoreMatch(context.Background(),
		&models.CandidateProfile{Skills: []string{"Go"}},
		&models.Job{RequiredSkills: nil})
	if err != nil {
		t.Fatalf("ScoreMatch: %v", err)
	}
	if result.MatchPercentage <= 0 || result.MatchPercentage > 100 {
		t.Errorf("score = %v, want in (0, 100]", result.MatchPercentage)
	}
}
