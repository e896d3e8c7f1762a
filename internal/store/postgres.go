package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hireloop/internal/config"
	"hireloop/internal/logging"
	"hireloop/pkg/models"
	"hireloop/pkg/utils"
)

// PostgresStore implements Store on top of Postgres via gorm
type PostgresStore struct {
	db     *gorm.DB
	logger logging.Logger
}

// NewPostgresStore connects to Postgres and migrates the candidate and job tables
func NewPostgresStore(cfg *config.Config) (*PostgresStore, error) {
	logger := logging.GetGlobalLogger()

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := db.AutoMigrate(&models.Candidate{}, &models.Job{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logger.Info("Database connection established", map[string]interface{}{
		"max_open_conns": cfg.Database.MaxOpenConns,
	})

	return &PostgresStore{db: db, logger: logger}, nil
}

// Create inserts a new candidate record
func (s *PostgresStore) Create(ctx context.Context, candidate *models.Candidate) error {
	if candidate.InterviewStatus == "" {
		candidate.InterviewStatus = models.StatusApplied
	}
	if err := s.db.WithContext(ctx).Create(candidate).Error; err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

// Get retrieves a candidate by id
func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Candidate, error) {
	var candidate models.Candidate
	err := s.db.WithContext(ctx).First(&candidate, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewNotFoundError("candidate " + id + " not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}
	return &candidate, nil
}

// GetByToken resolves an active scheduler token to its candidate
func (s *PostgresStore) GetByToken(ctx context.Context, token string) (*models.Candidate, error) {
	if token == "" {
		return nil, utils.NewNotFoundError("scheduler token not recognized")
	}

	var candidate models.Candidate
	err := s.db.WithContext(ctx).First(&candidate, "scheduler_token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewNotFoundError("scheduler token not recognized")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scheduler token: %w", err)
	}
	return &candidate, nil
}

// ListReady returns scheduled candidates whose interview time has arrived
func (s *PostgresStore) ListReady(ctx context.Context, now time.Time, limit int) ([]*models.Candidate, error) {
	var candidates []*models.Candidate
	err := s.db.WithContext(ctx).
		Where("interview_status = ? AND interview_datetime <= ?", models.StatusScheduled, now).
		Order("interview_datetime").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ready interviews: %w", err)
	}
	return candidates, nil
}

// ListStuck returns in-progress candidates claimed before the given cutoff
func (s *PostgresStore) ListStuck(ctx context.Context, claimedBefore time.Time, limit int) ([]*models.Candidate, error) {
	var candidates []*models.Candidate
	err := s.db.WithContext(ctx).
		Where("interview_status = ? AND claimed_at IS NOT NULL AND claimed_at <= ?", models.StatusInProgress, claimedBefore).
		Order("claimed_at").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stuck interviews: %w", err)
	}
	return candidates, nil
}

// ConditionalTransition performs the compare-and-set status write. The status
// guard lives in the WHERE clause so concurrent writers cannot both succeed.
func (s *PostgresStore) ConditionalTransition(ctx context.Context, id string, expected, next models.InterviewStatus, fields *TransitionFields) (*models.Candidate, error) {
	updates := map[string]interface{}{
		"interview_status": next,
		"updated_at":       time.Now().UTC(),
	}
	if fields != nil {
		if fields.ResumeText != nil {
			updates["resume_text"] = *fields.ResumeText
		}
		if fields.SchedulerToken != nil {
			updates["scheduler_token"] = *fields.SchedulerToken
		}
		if fields.InterviewDatetime != nil {
			updates["interview_datetime"] = *fields.InterviewDatetime
		}
		if fields.MeetingLink != nil {
			updates["meeting_link"] = *fields.MeetingLink
		}
		if fields.TranscriptURL != nil {
			updates["transcript_url"] = *fields.TranscriptURL
		}
		if fields.ReportURL != nil {
			updates["report_url"] = *fields.ReportURL
		}
		if fields.ClaimedAt != nil {
			updates["claimed_at"] = *fields.ClaimedAt
		}
		if fields.CompletedAt != nil {
			updates["completed_at"] = *fields.CompletedAt
		}
	}

	result := s.db.WithContext(ctx).
		Model(&models.Candidate{}).
		Where("id = ? AND interview_status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to transition candidate %s: %w", id, result.Error)
	}

	if result.RowsAffected == 0 {
		// Distinguish a missing record from a lost race
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, utils.NewConflictError(fmt.Sprintf(
			"candidate %s is %s, expected %s", id, current.InterviewStatus, expected))
	}

	return s.Get(ctx, id)
}

// GetJob retrieves the job requisition a candidate applied to
func (s *PostgresStore) GetJob(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewNotFoundError("job " + id + " not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	return &job, nil
}

// Ping checks database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection pool
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
