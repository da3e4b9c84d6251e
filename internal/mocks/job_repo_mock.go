package mocks

import (
	"context"

	"github.com/joshu-sajeev/queuectl/internal/config"
	"github.com/joshu-sajeev/queuectl/internal/models"
	"github.com/stretchr/testify/mock"
)

type JobRepoMock struct {
	mock.Mock
}

func (m *JobRepoMock) Create(ctx context.Context, job *models.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *JobRepoMock) Get(ctx context.Context, id string) (*models.Job, error) {
	args := m.Called(ctx, id)

	job, _ := args.Get(0).(*models.Job)
	return job, args.Error(1)
}

func (m *JobRepoMock) List(ctx context.Context, state config.JobStatus) ([]models.Job, error) {
	args := m.Called(ctx, state)

	jobs, _ := args.Get(0).([]models.Job)
	return jobs, args.Error(1)
}

func (m *JobRepoMock) ListByStates(ctx context.Context, states ...config.JobStatus) ([]models.Job, error) {
	args := m.Called(ctx, states)

	jobs, _ := args.Get(0).([]models.Job)
	return jobs, args.Error(1)
}

func (m *JobRepoMock) ListDLQ(ctx context.Context) ([]models.DlqEntry, error) {
	args := m.Called(ctx)

	entries, _ := args.Get(0).([]models.DlqEntry)
	return entries, args.Error(1)
}

func (m *JobRepoMock) RetryDLQ(ctx context.Context, id string) (*models.Job, error) {
	args := m.Called(ctx, id)

	job, _ := args.Get(0).(*models.Job)
	return job, args.Error(1)
}
