package llm

import (
	"context"
	"fmt"
	"sync"

	"hireloop/internal/config"
	"hireloop/internal/llm/fallback"
	"hireloop/internal/logging"
	"hireloop/pkg/models"
	"hireloop/pkg/utils"
)

// Manager manages the AI provider and the deterministic fallback engine.
// Extraction and match scoring fall back transparently when the provider
// fails, so callers never see which path executed. Question generation has no
// fallback and surfaces upstream failures distinctly.
type Manager struct {
	config    *config.Config
	factory   *Factory
	provider  Provider
	heuristic *fallback.HeuristicEngine
	logger    logging.Logger
	mu        sync.RWMutex
	healthy   bool
}

// NewManager creates a new LLM manager instance
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		config:    cfg,
		factory:   NewFactory(cfg),
		heuristic: fallback.NewHeuristicEngine(),
		logger:    logging.GetGlobalLogger(),
	}
}

// Start initializes the manager and probes provider health. The server starts
// even when the provider is down; the fallback engine covers extraction and
// matching in the meantime.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info("Starting LLM manager", map[string]interface{}{
		"provider": m.config.LLM.Provider,
	})

	provider, err := m.factory.CreateProvider()
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}
	m.provider = provider

	ctx, cancel := context.WithTimeout(context.Background(), m.config.LLM.Timeout)
	defer cancel()

	if err := m.provider.IsHealthy(ctx); err != nil {
		m.logger.Warn("LLM provider health check failed - running on heuristic fallback", map[string]interface{}{
			"error": err.Error(),
		})
		m.healthy = false
	} else {
		m.healthy = true
		m.logger.Info("LLM manager started", map[string]interface{}{
			"provider": m.provider.GetProviderName(),
		})
	}

	return nil
}

// Stop shuts down the LLM manager
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info("Stopping LLM manager")
	m.provider = nil
	m.healthy = false
	return nil
}

// ExtractProfile extracts a structured profile from resume text. Returns the
// profile and whether the AI path produced it.
func (m *Manager) ExtractProfile(ctx context.Context, resumeText string) (*models.CandidateProfile, bool, error) {
	if provider, ok := m.availableProvider(); ok {
		callCtx, cancel := context.WithTimeout(ctx, m.config.LLM.Timeout)
		profile, err := provider.ExtractProfile(callCtx, resumeText)
		cancel()
		if err == nil {
			return profile, true, nil
		}
		m.logger.Warn("AI extraction failed, using heuristic fallback", map[string]interface{}{
			"error": err.Error(),
		})
	}

	profile, err := m.heuristic.ExtractProfile(ctx, resumeText)
	if err != nil {
		return nil, false, err
	}
	return profile, false, nil
}

// ScoreMatch scores a candidate profile against a job. Returns the result and
// whether the AI path produced it.
func (m *Manager) ScoreMatch(ctx context.Context, profile *models.CandidateProfile, job *models.Job) (*models.MatchResult, bool, error) {
	if provider, ok := m.availableProvider(); ok {
		callCtx, cancel := context.WithTimeout(ctx, m.config.LLM.Timeout)
		result, err := provider.ScoreMatch(callCtx, profile, job)
		cancel()
		if err == nil {
			return result, true, nil
		}
		m.logger.Warn("AI match scoring failed, using heuristic fallback", map[string]interface{}{
			"error": err.Error(),
		})
	}

	result, err := m.heuristic.ScoreMatch(ctx, profile, job)
	if err != nil {
		return nil, false, err
	}
	return result, false, nil
}

// GenerateQuestions produces interview questions. There is no deterministic
// fallback for question generation; an unavailable provider is surfaced as an
// upstream error so the caller can present the right failure.
func (m *Manager) GenerateQuestions(ctx context.Context, profile *models.CandidateProfile, job *models.Job) (*models.QuestionSet, error) {
	provider, ok := m.availableProvider()
	if !ok {
		return nil, utils.NewUpstreamError("question generation requires the AI backend, which is unavailable")
	}

	callCtx, cancel := context.WithTimeout(ctx, m.config.LLM.Timeout)
	defer cancel()

	questions, err := provider.GenerateQuestions(callCtx, profile, job)
	if err != nil {
		return nil, utils.NewUpstreamError("question generation failed: " + err.Error())
	}
	return questions, nil
}

// IsHealthy reports whether the AI provider is available
func (m *Manager) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthy && m.provider != nil
}

// GetProviderName returns the name of the active provider
func (m *Manager) GetProviderName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.provider != nil && m.healthy {
		return m.provider.GetProviderName()
	}
	return m.heuristic.GetProviderName()
}

// CheckHealth performs a health check on the provider and updates availability
func (m *Manager) CheckHealth(ctx context.Context) error {
	m.mu.RLock()
	provider := m.provider
	m.mu.RUnlock()

	if provider == nil {
		return fmt.Errorf("LLM provider not available")
	}

	err := provider.IsHealthy(ctx)

	m.mu.Lock()
	m.healthy = (err == nil)
	m.mu.Unlock()

	return err
}

func (m *Manager) availableProvider() (Provider, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.provider, m.healthy && m.provider != nil
}
