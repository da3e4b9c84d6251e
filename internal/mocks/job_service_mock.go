package mocks

import (
	"context"

	"github.com/joshu-sajeev/queuectl/internal/dto"
	"github.com/stretchr/testify/mock"
)

type JobServiceMock struct {
	mock.Mock
}

func (m *JobServiceMock) Enqueue(ctx context.Context, req *dto.EnqueueDTO) (*dto.JobResponseDTO, error) {
	args := m.Called(ctx, req)

	resp, _ := args.Get(0).(*dto.JobResponseDTO)
	return resp, args.Error(1)
}

func (m *JobServiceMock) GetJob(ctx context.Context, id string) (*dto.JobResponseDTO, error) {
	args := m.Called(ctx, id)

	resp, _ := args.Get(0).(*dto.JobResponseDTO)
	return resp, args.Error(1)
}

func (m *JobServiceMock) ListJobs(ctx context.Context, state string) ([]dto.JobResponseDTO, error) {
	args := m.Called(ctx, state)

	jobs, _ := args.Get(0).([]dto.JobResponseDTO)
	return jobs, args.Error(1)
}

func (m *JobServiceMock) Status(ctx context.Context) ([]dto.JobResponseDTO, error) {
	args := m.Called(ctx)

	jobs, _ := args.Get(0).([]dto.JobResponseDTO)
	return jobs, args.Error(1)
}

func (m *JobServiceMock) ListDLQ(ctx context.Context) ([]dto.DlqEntryDTO, error) {
	args := m.Called(ctx)

	entries, _ := args.Get(0).([]dto.DlqEntryDTO)
	return entries, args.Error(1)
}

func (m *JobServiceMock) RetryDLQ(ctx context.Context, id string) (*dto.JobResponseDTO, error) {
	args := m.Called(ctx, id)

	resp, _ := args.Get(0).(*dto.JobResponseDTO)
	return resp, args.Error(1)
}
