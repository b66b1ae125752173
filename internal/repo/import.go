package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

const ImportColumns = "id, url, status, imported, error, created_at, updated_at"

type ImportRepo struct {
	pool *pgxpool.Pool
}

func NewImportRepo(pool *pgxpool.Pool) *ImportRepo {
	return &ImportRepo{pool: pool}
}

func (r *ImportRepo) CreateImport(ctx context.Context, url string) (model.ImportJob, error) {
	return ScanImport(r.pool.QueryRow(ctx, `
		INSERT INTO import_jobs (id, url)
		VALUES ($1, $2)
		RETURNING `+ImportColumns,
		uuid.New(), url,
	))
}

func (r *ImportRepo) GetImport(ctx context.Context, id uuid.UUID) (model.ImportJob, error) {
	job, err := ScanImport(r.pool.QueryRow(ctx, `
		SELECT `+ImportColumns+`
		FROM import_jobs
		WHERE id = $1
	`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return job, ErrorNotFound
	}
	return job, err
}

// ScanImport reads a row selected with ImportColumns.
func ScanImport(row pgx.Row) (model.ImportJob, error) {
	var (
		job    model.ImportJob
		status string
	)
	err := row.Scan(&job.ID, &job.URL, &status, &job.Imported, &job.Error, &job.CreatedAt, &job.UpdatedAt)
	job.Status = model.ImportStatus(status)
	return job, err
}
