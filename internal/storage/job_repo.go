package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joshu-sajeev/queuectl/common"
	"github.com/joshu-sajeev/queuectl/internal/config"
	"github.com/joshu-sajeev/queuectl/internal/job"
	"github.com/joshu-sajeev/queuectl/internal/models"
	"github.com/joshu-sajeev/queuectl/internal/pool"
	"github.com/joshu-sajeev/queuectl/internal/worker"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

var (
	_ job.JobRepoInterface = (*JobRepository)(nil)
	_ pool.JobStore        = (*JobRepository)(nil)
	_ worker.AttemptStore  = (*JobRepository)(nil)
)

// Create inserts a new job record. An existing row with the same id is
// reported as common.ErrDuplicateID and left untouched.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Job{}).Where("id = ?", job.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return common.ErrDuplicateID
		}
		return tx.Create(job).Error
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateID) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create job %s: %w", job.ID, common.ErrDuplicateID)
		}
		return wrapStoreErr("create job", err)
	}
	return nil
}

// Get retrieves a single job record by its ID.
func (r *JobRepository) Get(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job %s: %w", id, common.ErrNotFound)
		}
		return nil, wrapStoreErr("get job", err)
	}
	return &job, nil
}

// List returns every job, or only those in state when it is non-empty,
// oldest first.
func (r *JobRepository) List(ctx context.Context, state config.JobStatus) ([]models.Job, error) {
	var jobs []models.Job
	q := r.db.WithContext(ctx).Order("created_at ASC, id ASC")
	if state != "" {
		q = q.Where("state = ?", string(state))
	}
	if err := q.Find(&jobs).Error; err != nil {
		return nil, wrapStoreErr("list jobs", err)
	}
	return jobs, nil
}

// ListByStates returns the jobs in any of the given states, oldest first.
// Used by startup recovery.
func (r *JobRepository) ListByStates(ctx context.Context, states ...config.JobStatus) ([]models.Job, error) {
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = string(s)
	}

	var jobs []models.Job
	if err := r.db.WithContext(ctx).
		Where("state IN ?", names).
		Order("created_at ASC, id ASC").
		Find(&jobs).Error; err != nil {
		return nil, wrapStoreErr("list jobs by state", err)
	}
	return jobs, nil
}

// Claim moves a job to processing. Only pending jobs, or processing jobs
// recovered from a previous run, can be claimed; false means the row is
// gone or already terminal.
func (r *JobRepository) Claim(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND state IN ?", id, []string{
			string(config.JobStatusPending),
			string(config.JobStatusProcessing),
		}).
		Updates(map[string]any{
			"state":      string(config.JobStatusProcessing),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, wrapStoreErr("claim job", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// SetAttempts records the attempt counter before the attempt runs. The
// update refuses to push attempts past max_retries.
func (r *JobRepository) SetAttempts(ctx context.Context, id string, attempts int) error {
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND max_retries >= ?", id, attempts).
		Updates(map[string]any{
			"attempts":   attempts,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return wrapStoreErr("set attempts", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("set attempts on job %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// SaveResult persists the outcome of the latest attempt.
func (r *JobRepository) SaveResult(ctx context.Context, id string, result datatypes.JSON, errMsg string) error {
	if err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"result":     result,
			"last_error": errMsg,
		}).Error; err != nil {
		return wrapStoreErr("save result", err)
	}
	return nil
}

// Complete marks a processing job completed.
func (r *JobRepository) Complete(ctx context.Context, id string) error {
	return r.transition(ctx, id, config.JobStatusProcessing, config.JobStatusCompleted)
}

// Release hands a processing job back to pending so it can be claimed
// again.
func (r *JobRepository) Release(ctx context.Context, id string) error {
	return r.transition(ctx, id, config.JobStatusProcessing, config.JobStatusPending)
}

func (r *JobRepository) transition(ctx context.Context, id string, from, to config.JobStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND state = ?", id, string(from)).
		Updates(map[string]any{
			"state":      string(to),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return wrapStoreErr("update state", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("job %s not %s: %w", id, from, common.ErrNotFound)
	}
	return nil
}

// Fail marks the job failed and parks it in the DLQ in one transaction.
// The entry keeps the job's original created_at.
func (r *JobRepository) Fail(ctx context.Context, id string, reason string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.Job
		if err := tx.First(&job, "id = ?", id).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Job{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"state":      string(config.JobStatusFailed),
				"last_error": reason,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}

		entry := models.DlqEntry{
			ID:        job.ID,
			Command:   job.Command,
			CreatedAt: job.CreatedAt,
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&entry).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("fail job %s: %w", id, common.ErrNotFound)
		}
		return wrapStoreErr("fail job", err)
	}
	return nil
}

// ListDLQ returns every DLQ entry, oldest submission first.
func (r *JobRepository) ListDLQ(ctx context.Context) ([]models.DlqEntry, error) {
	var entries []models.DlqEntry
	if err := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, wrapStoreErr("list dlq", err)
	}
	return entries, nil
}

// RetryDLQ removes the DLQ entry and resets its job to pending with zero
// attempts. Both changes commit together or not at all. The reset job is
// returned so the caller can enqueue it.
func (r *JobRepository) RetryDLQ(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.DlqEntry{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return common.ErrNotFound
		}

		res = tx.Model(&models.Job{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"state":      string(config.JobStatusPending),
				"attempts":   0,
				"last_error": "",
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return common.ErrNotFound
		}

		return tx.First(&job, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("dlq entry %s: %w", id, common.ErrNotFound)
		}
		return nil, wrapStoreErr("retry dlq entry", err)
	}
	return &job, nil
}

// wrapStoreErr tags driver failures with common.ErrStoreUnavailable while
// keeping context cancellation recognizable.
func wrapStoreErr(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, common.ErrStoreUnavailable, err)
}
