package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"hireloop/pkg/models"
	"hireloop/pkg/utils"
)

// MemoryStore implements Store with in-process state. Used for tests and for
// running the service without a database.
type MemoryStore struct {
	mu         sync.Mutex
	candidates map[string]*models.Candidate
	jobs       map[string]*models.Job
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		candidates: make(map[string]*models.Candidate),
		jobs:       make(map[string]*models.Job),
	}
}

// Create inserts a new candidate record
func (s *MemoryStore) Create(ctx context.Context, candidate *models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.candidates[candidate.ID]; exists {
		return utils.NewConflictError("candidate " + candidate.ID + " already exists")
	}
	if candidate.InterviewStatus == "" {
		candidate.InterviewStatus = models.StatusApplied
	}
	now := time.Now().UTC()
	candidate.CreatedAt = now
	candidate.UpdatedAt = now

	copied := *candidate
	s.candidates[candidate.ID] = &copied
	return nil
}

// AddJob seeds a job requisition. Jobs are owned by the wider application, so
// the Store interface only reads them; tests seed through this helper.
func (s *MemoryStore) AddJob(job *models.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *job
	s.jobs[job.ID] = &copied
}

// Get retrieves a candidate by id
func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate, exists := s.candidates[id]
	if !exists {
		return nil, utils.NewNotFoundError("candidate " + id + " not found")
	}
	copied := *candidate
	return &copied, nil
}

// GetByToken resolves an active scheduler token to its candidate
func (s *MemoryStore) GetByToken(ctx context.Context, token string) (*models.Candidate, error) {
	if token == "" {
		return nil, utils.NewNotFoundError("scheduler token not recognized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, candidate := range s.candidates {
		if candidate.SchedulerToken == token {
			copied := *candidate
			return &copied, nil
		}
	}
	return nil, utils.NewNotFoundError("scheduler token not recognized")
}

// ListReady returns scheduled candidates whose interview time has arrived
func (s *MemoryStore) ListReady(ctx context.Context, now time.Time, limit int) ([]*models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ready []*models.Candidate
	for _, candidate := range s.candidates {
		if candidate.InterviewStatus == models.StatusScheduled &&
			candidate.InterviewDatetime != nil &&
			!candidate.InterviewDatetime.After(now) {
			copied := *candidate
			ready = append(ready, &copied)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		return ready[i].InterviewDatetime.Before(*ready[j].InterviewDatetime)
	})
	if limit > 0 && len(ready) > limit {
		ready = ready[:limit]
	}
	return ready, nil
}

// ListStuck returns in-progress candidates claimed before the given cutoff
func (s *MemoryStore) ListStuck(ctx context.Context, claimedBefore time.Time, limit int) ([]*models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stuck []*models.Candidate
	for _, candidate := range s.candidates {
		if candidate.InterviewStatus == models.StatusInProgress &&
			candidate.ClaimedAt != nil &&
			!candidate.ClaimedAt.After(claimedBefore) {
			copied := *candidate
			stuck = append(stuck, &copied)
		}
	}
	sort.Slice(stuck, func(i, j int) bool {
		return stuck[i].ClaimedAt.Before(*stuck[j].ClaimedAt)
	})
	if limit > 0 && len(stuck) > limit {
		stuck = stuck[:limit]
	}
	return stuck, nil
}

// ConditionalTransition performs the compare-and-set status write under the
// store lock, so concurrent callers observe exactly one winner.
func (s *MemoryStore) ConditionalTransition(ctx context.Context, id string, expected, next models.InterviewStatus, fields *TransitionFields) (*models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate, exists := s.candidates[id]
	if !exists {
		return nil, utils.NewNotFoundError("candidate " + id + " not found")
	}
	if candidate.InterviewStatus != expected {
		return nil, utils.NewConflictError(fmt.Sprintf(
			"candidate %s is %s, expected %s", id, candidate.InterviewStatus, expected))
	}

	candidate.InterviewStatus = next
	candidate.UpdatedAt = time.Now().UTC()
	applyFields(candidate, fields)

	copied := *candidate
	return &copied, nil
}

// GetJob retrieves the job requisition a candidate applied to
func (s *MemoryStore) GetJob(ctx context.Context, id string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return nil, utils.NewNotFoundError("job " + id + " not found")
	}
	copied := *job
	return &copied, nil
}

// Ping always succeeds for the in-memory store
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}
