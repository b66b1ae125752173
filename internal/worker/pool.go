// Package worker runs queued import jobs in the background.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/internal/model"
	"github.com/BuzzLyutic/taskboard/internal/repo"
)

// Importer fetches a feed and stores its tasks, returning how many were stored.
type Importer interface {
	Import(ctx context.Context, url string) (int, error)
}

// finishTimeout bounds the status write that closes a claimed job.
const finishTimeout = 5 * time.Second

type Pool struct {
	pool     *pgxpool.Pool
	importer Importer
	logger   *zap.Logger
	count    int
	interval time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewPool(pool *pgxpool.Pool, importer Importer, logger *zap.Logger, count int) *Pool {
	return &Pool{
		pool:     pool,
		importer: importer,
		logger:   logger,
		count:    count,
		interval: time.Second,
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("Starting worker pool", zap.Int("workers", p.count))

	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop cancels running imports and waits for every worker to return.
func (p *Pool) Stop() {
	p.logger.Info("Stopping worker pool...")
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := p.processNext(ctx, id)
			if err != nil && !errors.Is(err, pgx.ErrNoRows) && !errors.Is(err, context.Canceled) {
				p.logger.Error("worker error", zap.Int("worker", id), zap.Error(err))
			}
		}
	}
}

func (p *Pool) processNext(ctx context.Context, workerID int) error {
	// Забрать заявку
	job, err := p.claimJob(ctx)
	if err != nil {
		return err
	}

	p.logger.Info("Processing import",
		zap.Int("worker", workerID),
		zap.Stringer("job_id", job.ID),
		zap.String("url", job.URL),
	)

	started := time.Now()
	n, err := p.importer.Import(ctx, job.URL)

	// Итог заявки пишется даже после Stop(), контекст воркера уже может быть отменен
	finishCtx, cancel := context.WithTimeout(context.Background(), finishTimeout)
	defer cancel()

	if err != nil && ctx.Err() != nil {
		// Импорт прерван остановкой пула: вернуть заявку в pending
		if rerr := p.releaseJob(finishCtx, job.ID); rerr != nil {
			p.logger.Error("failed to release import", zap.Stringer("job_id", job.ID), zap.Error(rerr))
		}
		return ctx.Err()
	}

	if err != nil {
		p.logger.Warn("Import failed",
			zap.Int("worker", workerID),
			zap.Stringer("job_id", job.ID),
			zap.Error(err),
		)
		return p.failJob(finishCtx, job.ID, err.Error())
	}

	if err := p.completeJob(finishCtx, job.ID, n); err != nil {
		return err
	}
	p.logger.Info("Import completed",
		zap.Int("worker", workerID),
		zap.Stringer("job_id", job.ID),
		zap.Int("imported", n),
		zap.Duration("took", time.Since(started)),
	)
	return nil
}

func (p *Pool) claimJob(ctx context.Context) (model.ImportJob, error) {
	return repo.ScanImport(p.pool.QueryRow(ctx, `
		WITH claimed AS (
			SELECT id
			FROM import_jobs
			WHERE status = 'pending'
			ORDER BY created_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		UPDATE import_jobs
		SET status = 'running', updated_at = now()
		FROM claimed
		WHERE import_jobs.id = claimed.id
		RETURNING import_jobs.id, import_jobs.url, import_jobs.status, import_jobs.imported,
		          import_jobs.error, import_jobs.created_at, import_jobs.updated_at
	`))
}

func (p *Pool) completeJob(ctx context.Context, id uuid.UUID, imported int) error {
	_, err := p.pool.Exec(ctx, `
		UPDATE import_jobs SET status = 'completed', imported = $2, error = '', updated_at = now() WHERE id = $1
	`, id, imported)
	return err
}

func (p *Pool) failJob(ctx context.Context, id uuid.UUID, msg string) error {
	_, err := p.pool.Exec(ctx, `
		UPDATE import_jobs SET status = 'failed', imported = 0, error = $2, updated_at = now() WHERE id = $1
	`, id, msg)
	return err
}

func (p *Pool) releaseJob(ctx context.Context, id uuid.UUID) error {
	_, err := p.pool.Exec(ctx, `
		UPDATE import_jobs SET status = 'pending', updated_at = now() WHERE id = $1 AND status = 'running'
	`, id)
	return err
}
