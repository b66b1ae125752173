package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/internal/fetcher"
	"github.com/BuzzLyutic/taskboard/internal/model"
	"github.com/BuzzLyutic/taskboard/internal/repo"
	"github.com/BuzzLyutic/taskboard/internal/service"
	"github.com/BuzzLyutic/taskboard/internal/testdb"
)

type stubImporter struct {
	mu    sync.Mutex
	calls map[string]int
	fn    func(ctx context.Context, url string) (int, error)
}

func (s *stubImporter) Import(ctx context.Context, url string) (int, error) {
	s.mu.Lock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[url]++
	s.mu.Unlock()
	return s.fn(ctx, url)
}

func newTestPool(pool *pgxpool.Pool, importer Importer, count int) *Pool {
	p := NewPool(pool, importer, zap.NewNop(), count)
	p.interval = 50 * time.Millisecond
	return p
}

func queueJobs(t *testing.T, pool *pgxpool.Pool, urls ...string) []uuid.UUID {
	t.Helper()
	imports := repo.NewImportRepo(pool)

	ids := make([]uuid.UUID, 0, len(urls))
	for _, u := range urls {
		job, err := imports.CreateImport(context.Background(), u)
		require.NoError(t, err)
		ids = append(ids, job.ID)
	}
	return ids
}

func jobStatus(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) model.ImportJob {
	t.Helper()
	job, err := repo.NewImportRepo(pool).GetImport(context.Background(), id)
	require.NoError(t, err)
	return job
}

func TestPool_ProcessJobs(t *testing.T) {
	pool, cleanup := testdb.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("workers complete every job once", func(t *testing.T) {
		testdb.TruncateTables(t, pool)

		urls := make([]string, 10)
		for i := range urls {
			urls[i] = fmt.Sprintf("http://feed.local/%d", i)
		}
		ids := queueJobs(t, pool, urls...)

		importer := &stubImporter{fn: func(context.Context, string) (int, error) { return 3, nil }}
		workerPool := newTestPool(pool, importer, 4)
		workerPool.Start(ctx)

		success := testdb.WaitForCondition(t, 15*time.Second, func() bool {
			var completed int
			pool.QueryRow(ctx, "SELECT COUNT(*) FROM import_jobs WHERE status = 'completed'").Scan(&completed)
			return completed == len(ids)
		})
		workerPool.Stop()

		require.True(t, success, "jobs should be completed")
		for _, u := range urls {
			assert.Equal(t, 1, importer.calls[u], "job %s processed more than once", u)
		}
		assert.Equal(t, 3, jobStatus(t, pool, ids[0]).Imported)
	})

	t.Run("import error marks the job failed", func(t *testing.T) {
		testdb.TruncateTables(t, pool)
		ids := queueJobs(t, pool, "http://feed.local/broken")

		importer := &stubImporter{fn: func(context.Context, string) (int, error) {
			return 0, errors.New("task 1: validation error: due_date: Date has wrong format. Use YYYY-MM-DD.")
		}}
		workerPool := newTestPool(pool, importer, 1)
		workerPool.Start(ctx)

		success := testdb.WaitForCondition(t, 10*time.Second, func() bool {
			return jobStatus(t, pool, ids[0]).Status == model.ImportFailed
		})
		workerPool.Stop()

		require.True(t, success)
		job := jobStatus(t, pool, ids[0])
		assert.Contains(t, job.Error, "due_date")
		assert.Zero(t, job.Imported)
	})
}

// stopWhileImporting starts the pool, waits for the import to begin and stops the pool.
func stopWhileImporting(t *testing.T, workerPool *Pool, started <-chan struct{}) {
	t.Helper()
	workerPool.Start(context.Background())

	select {
	case <-started:
	case <-time.After(10 * time.Second):
		t.Fatal("import never started")
	}

	done := make(chan struct{})
	go func() {
		workerPool.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("worker pool did not stop gracefully within 10 seconds")
	}
}

func TestPool_GracefulShutdown(t *testing.T) {
	pool, cleanup := testdb.SetupTestDB(t)
	defer cleanup()

	t.Run("interrupted import goes back to the queue", func(t *testing.T) {
		testdb.TruncateTables(t, pool)
		ids := queueJobs(t, pool, "http://feed.local/slow")

		started := make(chan struct{})
		importer := &stubImporter{fn: func(ctx context.Context, _ string) (int, error) {
			close(started)
			<-ctx.Done()
			return 0, ctx.Err()
		}}
		stopWhileImporting(t, newTestPool(pool, importer, 2), started)

		// Прерванная заявка должна вернуться в очередь
		assert.Equal(t, model.ImportPending, jobStatus(t, pool, ids[0]).Status)
	})

	t.Run("import finished after stop is completed", func(t *testing.T) {
		testdb.TruncateTables(t, pool)
		ids := queueJobs(t, pool, "http://feed.local/committed")

		started := make(chan struct{})
		importer := &stubImporter{fn: func(ctx context.Context, _ string) (int, error) {
			close(started)
			<-ctx.Done()
			// Батч уже закоммичен, отмена пришла во время хуков
			return 2, nil
		}}
		stopWhileImporting(t, newTestPool(pool, importer, 1), started)

		job := jobStatus(t, pool, ids[0])
		assert.Equal(t, model.ImportCompleted, job.Status)
		assert.Equal(t, 2, job.Imported)
	})
}

func TestPool_ClaimJob(t *testing.T) {
	dbPool, cleanup := testdb.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	testdb.TruncateTables(t, dbPool)
	ids := queueJobs(t, dbPool, "http://feed.local/one")

	workerPool := newTestPool(dbPool, &stubImporter{}, 1)

	job, err := workerPool.claimJob(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids[0], job.ID)
	assert.Equal(t, model.ImportRunning, job.Status)

	// Second claim should find no jobs
	_, err = workerPool.claimJob(ctx)
	assert.ErrorIs(t, err, pgx.ErrNoRows, "should not claim a running job")

	require.NoError(t, workerPool.releaseJob(ctx, job.ID))
	assert.Equal(t, model.ImportPending, jobStatus(t, dbPool, ids[0]).Status)
}

func TestPool_ImportFromFeed(t *testing.T) {
	pool, cleanup := testdb.SetupTestDB(t)
	defer cleanup()

	testdb.TruncateTables(t, pool)

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"title": "Task 1", "description": "Description 1", "due_date": "2023-12-31"},
			{"title": "Task 2", "description": "Description 2", "due_date": "2024-01-15", "status": "in_progress"}
		]`)
	}))
	defer feed.Close()

	tasks := service.NewTaskService(repo.NewTaskRepo(pool), zap.NewNop())
	imports := service.NewImportService(repo.NewImportRepo(pool), tasks, fetcher.New(5*time.Second), zap.NewNop())

	job, err := imports.Submit(context.Background(), feed.URL)
	require.NoError(t, err)

	workerPool := newTestPool(pool, imports, 1)
	workerPool.Start(context.Background())

	success := testdb.WaitForCondition(t, 10*time.Second, func() bool {
		return jobStatus(t, pool, job.ID).Status == model.ImportCompleted
	})
	workerPool.Stop()

	require.True(t, success)
	assert.Equal(t, 2, jobStatus(t, pool, job.ID).Imported)
	assert.Equal(t, 2, testdb.CountTasks(t, pool))
}
