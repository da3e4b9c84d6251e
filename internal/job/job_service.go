package job

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/joshu-sajeev/queuectl/common"
	"github.com/joshu-sajeev/queuectl/internal/config"
	"github.com/joshu-sajeev/queuectl/internal/dto"
	"github.com/joshu-sajeev/queuectl/internal/models"
	"github.com/joshu-sajeev/queuectl/internal/queue"
)

type JobService struct {
	repo     JobRepoInterface
	queue    Enqueuer
	settings SettingsInterface
	logger   *slog.Logger
}

func NewJobService(repo JobRepoInterface, q Enqueuer, settings SettingsInterface, logger *slog.Logger) *JobService {
	return &JobService{repo: repo, queue: q, settings: settings, logger: logger}
}

var _ JobServiceInterface = (*JobService)(nil)

// Enqueue creates a pending job carrying a snapshot of the current retry
// settings and hands its descriptor to the dispatcher. The record is
// written first so a descriptor never exists without its job.
func (s *JobService) Enqueue(ctx context.Context, req *dto.EnqueueDTO) (*dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request canceled or timed out")
	}

	snap := s.settings.Snapshot()
	job := models.Job{
		ID:         req.ID,
		Command:    req.Command,
		State:      config.JobStatusPending,
		Attempts:   0,
		MaxRetries: snap.MaxRetries,
		BaseTime:   snap.BaseTime,
	}

	if err := s.repo.Create(ctx, &job); err != nil {
		if errors.Is(err, common.ErrDuplicateID) {
			return nil, common.NewAPIError(http.StatusConflict, "job id already exists",
				map[string]any{"id": req.ID})
		}
		return nil, toAPIError(err, "add job to database")
	}

	s.queue.Enqueue(descriptorOf(&job))
	s.logger.Info("job enqueued",
		slog.String("job_id", job.ID),
		slog.Int("max_retries", job.MaxRetries),
		slog.Int("base_time", job.BaseTime),
	)

	resp := toJobResponse(&job)
	return &resp, nil
}

// GetJob returns a single job by id.
func (s *JobService) GetJob(ctx context.Context, id string) (*dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	job, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errf(http.StatusNotFound, "job not found")
		}
		return nil, toAPIError(err, "get job")
	}

	resp := toJobResponse(job)
	return &resp, nil
}

// ListJobs returns the jobs in one state.
func (s *JobService) ListJobs(ctx context.Context, state string) ([]dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	st, ok := config.ParseJobStatus(state)
	if !ok {
		return nil, common.NewAPIError(
			http.StatusBadRequest,
			"invalid state",
			map[string]any{
				"provided": state,
				"allowed":  config.AllowedStates,
			},
		)
	}

	jobs, err := s.repo.List(ctx, st)
	if err != nil {
		return nil, toAPIError(err, "list jobs")
	}
	return toJobResponses(jobs), nil
}

// Status returns every job.
func (s *JobService) Status(ctx context.Context) ([]dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	jobs, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, toAPIError(err, "list jobs")
	}
	return toJobResponses(jobs), nil
}

func (s *JobService) ListDLQ(ctx context.Context) ([]dto.DlqEntryDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	entries, err := s.repo.ListDLQ(ctx)
	if err != nil {
		return nil, toAPIError(err, "list dlq")
	}

	dtos := make([]dto.DlqEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = dto.DlqEntryDTO{
			ID:        e.ID,
			Command:   e.Command,
			CreatedAt: e.CreatedAt,
		}
	}
	return dtos, nil
}

// RetryDLQ moves a dead job back to pending with a fresh attempt budget and
// queues it again. Its original max_retries and base_time are kept.
func (s *JobService) RetryDLQ(ctx context.Context, id string) (*dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	job, err := s.repo.RetryDLQ(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewAPIError(http.StatusNotFound, "dlq entry not found",
				map[string]any{"id": id})
		}
		return nil, toAPIError(err, "retry dlq entry")
	}

	s.queue.Enqueue(descriptorOf(job))
	s.logger.Info("dlq entry retried", slog.String("job_id", job.ID))

	resp := toJobResponse(job)
	return &resp, nil
}

// Recover queues every job a previous run left pending or processing, with
// its stored attempt count. It must run before the pool is started.
func (s *JobService) Recover(ctx context.Context) (int, error) {
	jobs, err := s.repo.ListByStates(ctx, config.JobStatusPending, config.JobStatusProcessing)
	if err != nil {
		return 0, err
	}

	for i := range jobs {
		s.queue.Enqueue(descriptorOf(&jobs[i]))
	}

	if len(jobs) > 0 {
		s.logger.Info("recovered unfinished jobs", slog.Int("count", len(jobs)))
	}
	return len(jobs), nil
}

func descriptorOf(job *models.Job) queue.Descriptor {
	return queue.Descriptor{
		ID:         job.ID,
		Command:    job.Command,
		Attempts:   job.Attempts,
		MaxRetries: job.MaxRetries,
		BaseTime:   job.BaseTime,
	}
}

func toJobResponse(job *models.Job) dto.JobResponseDTO {
	var result json.RawMessage
	if len(job.Result) > 0 {
		result = json.RawMessage(job.Result)
	}
	return dto.JobResponseDTO{
		ID:         job.ID,
		Command:    job.Command,
		State:      string(job.State),
		Attempts:   job.Attempts,
		MaxRetries: job.MaxRetries,
		BaseTime:   job.BaseTime,
		LastError:  job.LastError,
		Result:     result,
		CreatedAt:  job.CreatedAt,
		UpdatedAt:  job.UpdatedAt,
	}
}

func toJobResponses(jobs []models.Job) []dto.JobResponseDTO {
	dtos := make([]dto.JobResponseDTO, len(jobs))
	for i := range jobs {
		dtos[i] = toJobResponse(&jobs[i])
	}
	return dtos
}

// toAPIError maps service-layer errors to HTTP errors. action completes
// the message "failed to ...".
func toAPIError(err error, action string) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return common.Errf(http.StatusRequestTimeout, "request timed out")
	case errors.Is(err, common.ErrNotFound):
		return common.Errf(http.StatusNotFound, "%s", err.Error())
	case errors.Is(err, common.ErrInvalidConfig):
		return common.Errf(http.StatusBadRequest, "%s", err.Error())
	case errors.Is(err, common.ErrPoolNotRunning):
		return common.Errf(http.StatusConflict, "%s", err.Error())
	case errors.Is(err, common.ErrStoreUnavailable):
		return common.Errf(http.StatusServiceUnavailable, "failed to %s: record store unavailable", action)
	default:
		return common.Errf(http.StatusInternalServerError, "failed to %s", action)
	}
}
