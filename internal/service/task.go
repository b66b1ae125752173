package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/internal/model"
	"github.com/BuzzLyutic/taskboard/internal/repo"
)

// CreatedHook runs right after a task has been stored. It is never called for updates.
type CreatedHook func(ctx context.Context, t model.Task)

type TaskService struct {
	repo   repo.TaskRepository
	logger *zap.Logger

	mu    sync.RWMutex
	hooks []CreatedHook
}

func NewTaskService(repo repo.TaskRepository, logger *zap.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger}
}

// OnCreated registers a hook fired once for every newly created task.
func (s *TaskService) OnCreated(h CreatedHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

func (s *TaskService) created(ctx context.Context, t model.Task) {
	s.mu.RLock()
	hooks := make([]CreatedHook, len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.RUnlock()

	for _, h := range hooks {
		h(ctx, t)
	}
}

func (s *TaskService) Create(ctx context.Context, f model.TaskFields, idempKey string) (model.Task, error) {
	t, err := parse(f) // Валидация модели на корректность введенных данных
	if err != nil {
		return t, err
	}

	if idempKey != "" { // Обеспечение идемпотентности - если ключ с ресурсом уже существует, мы не создаем его еще раз
		if existingID, err := s.repo.GetIdempotencyKey(ctx, idempKey); err == nil {
			return s.repo.Get(ctx, existingID)
		}
	}

	// Создание новой задачи
	resource, err := s.repo.Create(ctx, t)
	if err != nil {
		return resource, err
	}

	// Сохранение нового ключа
	if idempKey != "" {
		if err := s.repo.SaveIdempotencyKey(ctx, idempKey, resource.ID); err != nil {
			s.logger.Warn("failed to save idempotency key", zap.String("key", idempKey), zap.Error(err))
		}
	}

	s.created(ctx, resource)
	return resource, nil
}

// BulkCreate stores every field-set or none of them. Hooks fire only after the
// whole batch is committed.
func (s *TaskService) BulkCreate(ctx context.Context, fields []model.TaskFields) ([]model.Task, error) {
	tasks := make([]model.Task, 0, len(fields))
	for i, f := range fields {
		t, err := parse(f)
		if err != nil {
			s.logger.Error("bulk create aborted", zap.Int("index", i), zap.Error(err))
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		tasks = append(tasks, t)
	}

	if len(tasks) == 0 {
		return []model.Task{}, nil
	}

	created, err := s.repo.CreateBatch(ctx, tasks)
	if err != nil {
		s.logger.Error("bulk create failed", zap.Int("count", len(tasks)), zap.Error(err))
		return nil, err
	}

	for _, t := range created {
		s.created(ctx, t)
	}
	return created, nil
}

func (s *TaskService) Get(ctx context.Context, id int64) (model.Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *TaskService) List(ctx context.Context, filter model.TaskFilter, limit int) ([]model.Task, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fieldError("status", fmt.Sprintf("%q is not a valid choice.", *filter.Status))
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.List(ctx, filter, limit)
}

// Update applies a partial update; nil fields keep their stored values.
func (s *TaskService) Update(ctx context.Context, id int64, patch model.TaskPatch) (model.Task, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return current, err
	}

	t, err := parse(patch.Apply(current))
	if err != nil {
		return current, err
	}
	t.ID = current.ID

	return s.repo.Update(ctx, t)
}

// replaceRequest lists the fields a full replacement must carry. Status may be
// left out, the stored one is kept then.
type replaceRequest struct {
	Title       *string `json:"title" validate:"required"`
	Description *string `json:"description" validate:"required"`
	DueDate     *string `json:"due_date" validate:"required"`
}

// Replace overwrites a task with the given fields.
func (s *TaskService) Replace(ctx context.Context, id int64, patch model.TaskPatch) (model.Task, error) {
	if err := check(replaceRequest{
		Title:       patch.Title,
		Description: patch.Description,
		DueDate:     patch.DueDate,
	}); err != nil {
		return model.Task{}, err
	}
	return s.Update(ctx, id, patch)
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *TaskService) GetStats(ctx context.Context) (repo.Stats, error) {
	return s.repo.GetStats(ctx)
}
