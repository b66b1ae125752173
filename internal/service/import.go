package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/internal/model"
	"github.com/BuzzLyutic/taskboard/internal/repo"
)

// Fetcher retrieves raw task records from a remote URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]model.TaskFields, error)
}

type importRequest struct {
	URL string `json:"url" validate:"required,http_url"`
}

type ImportService struct {
	repo    repo.ImportRepository
	tasks   *TaskService
	fetcher Fetcher
	logger  *zap.Logger
}

func NewImportService(repo repo.ImportRepository, tasks *TaskService, fetcher Fetcher, logger *zap.Logger) *ImportService {
	return &ImportService{
		repo:    repo,
		tasks:   tasks,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Submit queues an import job; the worker pool picks it up.
func (s *ImportService) Submit(ctx context.Context, url string) (model.ImportJob, error) {
	if err := check(importRequest{URL: url}); err != nil {
		return model.ImportJob{}, err
	}
	return s.repo.CreateImport(ctx, url)
}

func (s *ImportService) Get(ctx context.Context, id uuid.UUID) (model.ImportJob, error) {
	return s.repo.GetImport(ctx, id)
}

// Import fetches url and bulk-creates what it returns. It reports how many tasks were stored.
func (s *ImportService) Import(ctx context.Context, url string) (int, error) {
	fields, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return 0, err
	}

	created, err := s.tasks.BulkCreate(ctx, fields)
	if err != nil {
		return 0, err
	}

	s.logger.Info("imported tasks", zap.String("url", url), zap.Int("count", len(created)))
	return len(created), nil
}
