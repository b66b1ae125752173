package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

// TaskRepository определяет интерфейс для работы с задачами
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	CreateBatch(ctx context.Context, tasks []model.Task) ([]model.Task, error)
	Get(ctx context.Context, id int64) (model.Task, error)
	List(ctx context.Context, filter model.TaskFilter, limit int) ([]model.Task, error)
	Update(ctx context.Context, t model.Task) (model.Task, error)
	Delete(ctx context.Context, id int64) error
	SaveIdempotencyKey(ctx context.Context, key string, resourceID int64) error
	GetIdempotencyKey(ctx context.Context, key string) (int64, error)
	GetStats(ctx context.Context) (Stats, error)
}

// ImportRepository хранит заявки на импорт задач из внешних источников
type ImportRepository interface {
	CreateImport(ctx context.Context, url string) (model.ImportJob, error)
	GetImport(ctx context.Context, id uuid.UUID) (model.ImportJob, error)
}

type Stats struct {
	ByStatus     map[string]int `json:"by_status"`
	TotalTasks   int            `json:"total_tasks"`
	OverdueTasks int            `json:"overdue_tasks"`
}
