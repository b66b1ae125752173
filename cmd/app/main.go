package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/internal/config"
	"github.com/BuzzLyutic/taskboard/internal/fetcher"
	"github.com/BuzzLyutic/taskboard/internal/handler"
	"github.com/BuzzLyutic/taskboard/internal/logger"
	"github.com/BuzzLyutic/taskboard/internal/notify"
	"github.com/BuzzLyutic/taskboard/internal/repo"
	"github.com/BuzzLyutic/taskboard/internal/service"
	"github.com/BuzzLyutic/taskboard/internal/worker"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Подключаем логгер
	logger, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Подключаем БД
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL) // Создаем новое соединение к БД
	if err != nil {
		logger.Fatal("Failed to connect to Database.", zap.Error(err)) // Fatal потому что дальнейшая работа теряет смысл
	}
	defer pool.Close() // Запланированное закрытие соединения

	if err := pool.Ping(ctx); err != nil { // Пытаемся пингануть БД
		logger.Fatal("Failed to ping the Database.", zap.Error(err))
	}
	logger.Info("Successfully connected to the Database!")

	if err := repo.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("Failed to apply migrations.", zap.Error(err))
	}

	// Уведомления: всегда в лог, в Redis если задан адрес
	dispatcher := notify.NewDispatcher(logger, notify.NewLogSender(logger))
	if cfg.RedisAddr != "" {
		client, err := notify.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal("Failed to connect to Redis.", zap.Error(err))
		}
		defer client.Close()
		dispatcher.Register(notify.NewRedisSender(client, cfg.NotifyChannel))
		logger.Info("Publishing notifications to Redis", zap.String("channel", cfg.NotifyChannel))
	}

	taskService := service.NewTaskService(repo.NewTaskRepo(pool), logger)
	taskService.OnCreated(dispatcher.TaskCreatedHook)
	importService := service.NewImportService(repo.NewImportRepo(pool), taskService, fetcher.New(cfg.FetchTimeout), logger)

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	workerPool := worker.NewPool(pool, importService, logger, cfg.WorkerCount)
	workerPool.Start(workerCtx)

	r := handler.NewRouter(logger,
		handler.NewTaskHandler(taskService, logger),
		handler.NewImportHandler(importService, logger),
		handler.NewWebHandler(taskService, logger),
	)

	srv := http.Server{ // Создаем сервер
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
	// Сначала сервер, потом воркеры: незавершенные импорты вернутся в очередь
	workerPool.Stop()
	logger.Info("Server stopped successfully!")
}
