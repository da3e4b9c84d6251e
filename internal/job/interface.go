package job

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/joshu-sajeev/queuectl/internal/config"
	"github.com/joshu-sajeev/queuectl/internal/dto"
	"github.com/joshu-sajeev/queuectl/internal/models"
	"github.com/joshu-sajeev/queuectl/internal/pool"
	"github.com/joshu-sajeev/queuectl/internal/queue"
)

// JobRepoInterface defines the contract for job and DLQ persistence used by
// the API layer.
type JobRepoInterface interface {
	Create(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context, state config.JobStatus) ([]models.Job, error)
	ListByStates(ctx context.Context, states ...config.JobStatus) ([]models.Job, error)
	ListDLQ(ctx context.Context) ([]models.DlqEntry, error)
	RetryDLQ(ctx context.Context, id string) (*models.Job, error)
}

// Enqueuer accepts descriptors for dispatch.
type Enqueuer interface {
	Enqueue(d queue.Descriptor)
}

// SettingsInterface is the Config Store as seen by services.
type SettingsInterface interface {
	Set(ctx context.Context, key string, value int) error
	Snapshot() config.Settings
}

// DispatcherInterface is the control surface of the worker pool.
type DispatcherInterface interface {
	Start(n int) (uint64, error)
	Stop(ctx context.Context) error
	Resize(n int) error
	Status() pool.Status
}

// JobServiceInterface defines the contract for job and DLQ operations.
type JobServiceInterface interface {
	Enqueue(ctx context.Context, req *dto.EnqueueDTO) (*dto.JobResponseDTO, error)
	GetJob(ctx context.Context, id string) (*dto.JobResponseDTO, error)
	ListJobs(ctx context.Context, state string) ([]dto.JobResponseDTO, error)
	Status(ctx context.Context) ([]dto.JobResponseDTO, error)
	ListDLQ(ctx context.Context) ([]dto.DlqEntryDTO, error)
	RetryDLQ(ctx context.Context, id string) (*dto.JobResponseDTO, error)
}

// ControlServiceInterface defines the contract for worker pool and config
// operations.
type ControlServiceInterface interface {
	StartWorkers(ctx context.Context, n int) (*dto.WorkerStatusDTO, error)
	StopWorkers(ctx context.Context) (*dto.WorkerStatusDTO, error)
	ResizeWorkers(ctx context.Context, n int) (*dto.WorkerStatusDTO, error)
	WorkerStatus(ctx context.Context) (*dto.WorkerStatusDTO, error)
	SetConfig(ctx context.Context, req *dto.ConfigSetDTO) (*config.Settings, error)
	GetConfig(ctx context.Context) (*config.Settings, error)
}

// JobHandlerInterface defines the HTTP handlers for jobs and the DLQ.
type JobHandlerInterface interface {
	Enqueue(c *gin.Context)
	Get(c *gin.Context)
	Status(c *gin.Context)
	List(c *gin.Context)
	DLQList(c *gin.Context)
	DLQRetry(c *gin.Context)
}

// ControlHandlerInterface defines the HTTP handlers for the worker pool and
// config.
type ControlHandlerInterface interface {
	WorkerStart(c *gin.Context)
	WorkerStop(c *gin.Context)
	WorkerResize(c *gin.Context)
	WorkerStatus(c *gin.Context)
	ConfigSet(c *gin.Context)
	ConfigGet(c *gin.Context)
}
