package mocks

import (
	"context"

	"github.com/joshu-sajeev/queuectl/internal/config"
	"github.com/joshu-sajeev/queuectl/internal/dto"
	"github.com/joshu-sajeev/queuectl/internal/pool"
	"github.com/stretchr/testify/mock"
)

type ControlServiceMock struct {
	mock.Mock
}

func (m *ControlServiceMock) StartWorkers(ctx context.Context, n int) (*dto.WorkerStatusDTO, error) {
	args := m.Called(ctx, n)

	resp, _ := args.Get(0).(*dto.WorkerStatusDTO)
	return resp, args.Error(1)
}

func (m *ControlServiceMock) StopWorkers(ctx context.Context) (*dto.WorkerStatusDTO, error) {
	args := m.Called(ctx)

	resp, _ := args.Get(0).(*dto.WorkerStatusDTO)
	return resp, args.Error(1)
}

func (m *ControlServiceMock) ResizeWorkers(ctx context.Context, n int) (*dto.WorkerStatusDTO, error) {
	args := m.Called(ctx, n)

	resp, _ := args.Get(0).(*dto.WorkerStatusDTO)
	return resp, args.Error(1)
}

func (m *ControlServiceMock) WorkerStatus(ctx context.Context) (*dto.WorkerStatusDTO, error) {
	args := m.Called(ctx)

	resp, _ := args.Get(0).(*dto.WorkerStatusDTO)
	return resp, args.Error(1)
}

func (m *ControlServiceMock) SetConfig(ctx context.Context, req *dto.ConfigSetDTO) (*config.Settings, error) {
	args := m.Called(ctx, req)

	resp, _ := args.Get(0).(*config.Settings)
	return resp, args.Error(1)
}

func (m *ControlServiceMock) GetConfig(ctx context.Context) (*config.Settings, error) {
	args := m.Called(ctx)

	resp, _ := args.Get(0).(*config.Settings)
	return resp, args.Error(1)
}

type DispatcherMock struct {
	mock.Mock
}

func (m *DispatcherMock) Start(n int) (uint64, error) {
	args := m.Called(n)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *DispatcherMock) Stop(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *DispatcherMock) Resize(n int) error {
	args := m.Called(n)
	return args.Error(0)
}

func (m *DispatcherMock) Status() pool.Status {
	args := m.Called()
	return args.Get(0).(pool.Status)
}

type SettingsMock struct {
	mock.Mock
}

func (m *SettingsMock) Set(ctx context.Context, key string, value int) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *SettingsMock) Snapshot() config.Settings {
	args := m.Called()
	return args.Get(0).(config.Settings)
}
