package interview

import (
	"context"
	"sync"
	"time"

	"hireloop/internal/agent"
	"hireloop/internal/config"
	"hireloop/internal/logging"
	"hireloop/internal/store"
	"hireloop/pkg/models"
	"hireloop/pkg/utils"
)

// Scheduler runs the recurring sweep that starts due interviews and cleans up
// stuck ones. Each due candidate is claimed through a conditional transition
// before dispatch, so overlapping sweeps start every interview exactly once.
type Scheduler struct {
	config     *config.Config
	store      store.Store
	dispatcher agent.Dispatcher
	redis      *utils.RedisClient
	holderID   string
	logger     logging.Logger

	mu      sync.Mutex
	running bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewScheduler creates the interview scheduler. redis may be nil, in which
// case sweeps are only serialized within this process.
func NewScheduler(cfg *config.Config, st store.Store, dispatcher agent.Dispatcher, redis *utils.RedisClient) *Scheduler {
	return &Scheduler{
		config:     cfg,
		store:      st,
		dispatcher: dispatcher,
		redis:      redis,
		holderID:   utils.GenerateRequestID(),
		logger:     logging.GetGlobalLogger(),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start launches the sweep loop
func (s *Scheduler) Start() {
	s.logger.Info("Starting interview scheduler", map[string]interface{}{
		"sweep_interval": s.config.Scheduler.SweepInterval.String(),
		"batch_size":     s.config.Scheduler.BatchSize,
	})
	go s.run()
}

// Stop signals the sweep loop to exit and waits for the in-flight sweep
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.logger.Info("Interview scheduler stopped")
}

func (s *Scheduler) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.Scheduler.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.Sweep(context.Background())
		}
	}
}

// Sweep runs one pass: dispatch due interviews, then time out stuck ones. A
// sweep already in flight (here or, when Redis is configured, on another
// replica) makes this call a no-op.
func (s *Scheduler) Sweep(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if s.redis != nil {
		ok, err := s.redis.AcquireSweepLease(ctx, s.holderID, s.config.Scheduler.LeaseTTL)
		if err != nil {
			s.logger.Warn("Sweep lease acquisition failed, sweeping anyway", map[string]interface{}{
				"error": err.Error(),
			})
		} else if !ok {
			return
		} else {
			defer s.redis.ReleaseSweepLease(ctx, s.holderID)
		}
	}

	s.dispatchDue(ctx)
	s.cancelStuck(ctx)
}

// dispatchDue claims and starts every scheduled interview whose time has come
func (s *Scheduler) dispatchDue(ctx context.Context) {
	now := time.Now().UTC()
	due, err := s.store.ListReady(ctx, now, s.config.Scheduler.BatchSize)
	if err != nil {
		s.logger.Error("Failed to list due interviews", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if len(due) == 0 {
		return
	}

	s.logger.Info("Sweep found due interviews", map[string]interface{}{
		"count": len(due),
	})

	for _, candidate := range due {
		select {
		case <-s.stopCh:
			return
		default:
		}
		s.dispatchOne(ctx, candidate)
	}
}

// dispatchOne claims a single candidate and hands it to the agent. Losing the
// claim means another sweep got there first and is not an error.
func (s *Scheduler) dispatchOne(ctx context.Context, candidate *models.Candidate) {
	claimedAt := time.Now().UTC()
	claimed, err := s.store.ConditionalTransition(ctx, candidate.ID,
		models.StatusScheduled, models.StatusInProgress,
		&store.TransitionFields{ClaimedAt: &claimedAt})
	if err != nil {
		if utils.KindOf(err) == utils.KindConflict {
			s.logger.Debug("Interview already claimed", map[string]interface{}{
				"candidate_id": candidate.ID,
			})
		} else {
			s.logger.Error("Failed to claim interview", map[string]interface{}{
				"candidate_id": candidate.ID,
				"error":        err.Error(),
			})
		}
		return
	}

	dispatchCtx, cancel := context.WithTimeout(ctx, s.config.Scheduler.DispatchTimeout)
	defer cancel()

	if err := s.dispatcher.Dispatch(dispatchCtx, claimed.ID, claimed.MeetingLink); err != nil {
		// The claim stands; the stuck-interview sweep will time it out if the
		// agent never picks it up.
		s.logger.Error("Agent dispatch failed", map[string]interface{}{
			"candidate_id": claimed.ID,
			"error":        err.Error(),
		})
		return
	}

	s.logger.Info("Interview started", map[string]interface{}{
		"candidate_id": claimed.ID,
	})
}

// cancelStuck times out in-progress interviews whose agent never called back
func (s *Scheduler) cancelStuck(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.config.Scheduler.MaxInterviewDuration)
	stuck, err := s.store.ListStuck(ctx, cutoff, s.config.Scheduler.BatchSize)
	if err != nil {
		s.logger.Error("Failed to list stuck interviews", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	for _, candidate := range stuck {
		_, err := s.store.ConditionalTransition(ctx, candidate.ID,
			models.StatusInProgress, models.StatusCancelled, nil)
		if err != nil {
			if utils.KindOf(err) != utils.KindConflict {
				s.logger.Error("Failed to cancel stuck interview", map[string]interface{}{
					"candidate_id": candidate.ID,
					"error":        err.Error(),
				})
			}
			continue
		}
		s.logger.Warn("Cancelled stuck interview", map[string]interface{}{
			"candidate_id": candidate.ID,
			"claimed_at":   candidate.ClaimedAt.Format(time.RFC3339),
		})
	}
}
