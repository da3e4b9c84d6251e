package job

import (
	"context"
	"errors"
	"net/http"

	"github.com/joshu-sajeev/queuectl/common"
	"github.com/joshu-sajeev/queuectl/internal/config"
	"github.com/joshu-sajeev/queuectl/internal/dto"
	"github.com/joshu-sajeev/queuectl/internal/pool"
)

type ControlService struct {
	dispatcher DispatcherInterface
	settings   SettingsInterface
}

func NewControlService(d DispatcherInterface, settings SettingsInterface) *ControlService {
	return &ControlService{dispatcher: d, settings: settings}
}

var _ ControlServiceInterface = (*ControlService)(nil)

// StartWorkers opens a new pool generation with n slots, replacing any
// running one. n == 0 uses the configured default.
func (s *ControlService) StartWorkers(ctx context.Context, n int) (*dto.WorkerStatusDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	if _, err := s.dispatcher.Start(n); err != nil {
		return nil, toAPIError(err, "start workers")
	}
	return s.status(), nil
}

// StopWorkers retires the running generation. Stopping an idle pool is not
// an error.
func (s *ControlService) StopWorkers(ctx context.Context) (*dto.WorkerStatusDTO, error) {
	if err := s.dispatcher.Stop(ctx); err != nil && !errors.Is(err, common.ErrPoolNotRunning) {
		return nil, toAPIError(err, "stop workers")
	}
	return s.status(), nil
}

func (s *ControlService) ResizeWorkers(ctx context.Context, n int) (*dto.WorkerStatusDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	if err := s.dispatcher.Resize(n); err != nil {
		return nil, toAPIError(err, "resize workers")
	}
	return s.status(), nil
}

func (s *ControlService) WorkerStatus(ctx context.Context) (*dto.WorkerStatusDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}
	return s.status(), nil
}

// SetConfig changes one retry tunable for jobs created from now on.
func (s *ControlService) SetConfig(ctx context.Context, req *dto.ConfigSetDTO) (*config.Settings, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	if err := s.settings.Set(ctx, req.Key, req.Value); err != nil {
		if errors.Is(err, common.ErrInvalidConfig) {
			return nil, common.NewAPIError(
				http.StatusBadRequest,
				err.Error(),
				map[string]any{
					"provided": req.Key,
					"allowed":  config.AllowedConfigKeys,
				},
			)
		}
		return nil, toAPIError(err, "save config")
	}

	snap := s.settings.Snapshot()
	return &snap, nil
}

func (s *ControlService) GetConfig(ctx context.Context) (*config.Settings, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}
	snap := s.settings.Snapshot()
	return &snap, nil
}

func (s *ControlService) status() *dto.WorkerStatusDTO {
	return toWorkerStatus(s.dispatcher.Status())
}

func toWorkerStatus(st pool.Status) *dto.WorkerStatusDTO {
	return &dto.WorkerStatusDTO{
		Running:    st.Running,
		Generation: st.Generation,
		Slots:      st.Slots,
		Active:     st.Active,
		InFlight:   st.InFlight,
		Queued:     st.Queued,
	}
}
