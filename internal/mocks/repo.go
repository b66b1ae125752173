// Package mocks holds testify mocks of the repository interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/BuzzLyutic/taskboard/internal/model"
	"github.com/BuzzLyutic/taskboard/internal/repo"
)

// TaskRepository - мок репозитория задач
type TaskRepository struct {
	mock.Mock
}

var _ repo.TaskRepository = (*TaskRepository)(nil)

func (m *TaskRepository) Create(ctx context.Context, t model.Task) (model.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *TaskRepository) CreateBatch(ctx context.Context, tasks []model.Task) ([]model.Task, error) {
	args := m.Called(ctx, tasks)
	created, _ := args.Get(0).([]model.Task)
	return created, args.Error(1)
}

func (m *TaskRepository) Get(ctx context.Context, id int64) (model.Task, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *TaskRepository) List(ctx context.Context, filter model.TaskFilter, limit int) ([]model.Task, error) {
	args := m.Called(ctx, filter, limit)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *TaskRepository) Update(ctx context.Context, t model.Task) (model.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *TaskRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TaskRepository) SaveIdempotencyKey(ctx context.Context, key string, resourceID int64) error {
	args := m.Called(ctx, key, resourceID)
	return args.Error(0)
}

func (m *TaskRepository) GetIdempotencyKey(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TaskRepository) GetStats(ctx context.Context) (repo.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(repo.Stats), args.Error(1)
}

// ImportRepository - мок репозитория заявок на импорт
type ImportRepository struct {
	mock.Mock
}

var _ repo.ImportRepository = (*ImportRepository)(nil)

func (m *ImportRepository) CreateImport(ctx context.Context, url string) (model.ImportJob, error) {
	args := m.Called(ctx, url)
	return args.Get(0).(model.ImportJob), args.Error(1)
}

func (m *ImportRepository) GetImport(ctx context.Context, id uuid.UUID) (model.ImportJob, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.ImportJob), args.Error(1)
}
