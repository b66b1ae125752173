// Package notify delivers the "task created" notification to every configured sender.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

// Notification is the message produced when a task is created.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	TaskID    int64     `json:"task_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func TaskCreated(t model.Task) Notification {
	return Notification{
		ID:        uuid.New(),
		TaskID:    t.ID,
		Title:     t.Title,
		Message:   fmt.Sprintf("Notification sent for: %s", t.Title),
		CreatedAt: time.Now().UTC(),
	}
}

// Sender delivers a notification somewhere.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// Dispatcher fans a notification out to all registered senders.
type Dispatcher struct {
	mu      sync.RWMutex
	senders []Sender
	logger  *zap.Logger
}

func NewDispatcher(logger *zap.Logger, senders ...Sender) *Dispatcher {
	return &Dispatcher{
		senders: senders,
		logger:  logger.With(zap.String("component", "notify")),
	}
}

func (d *Dispatcher) Register(s Sender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.senders = append(d.senders, s)
}

// Dispatch sends n to every sender. A failing sender does not stop the others;
// the first error is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) error {
	d.mu.RLock()
	senders := make([]Sender, len(d.senders))
	copy(senders, d.senders)
	d.mu.RUnlock()

	if len(senders) == 0 {
		d.logger.Warn("no notification senders registered", zap.Int64("task_id", n.TaskID))
		return nil
	}

	var firstErr error
	for i, s := range senders {
		if err := s.Send(ctx, n); err != nil {
			d.logger.Error("notification sender failed",
				zap.Int("sender", i),
				zap.Int64("task_id", n.TaskID),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// TaskCreatedHook adapts the dispatcher to a task creation hook. Delivery errors
// are already logged by Dispatch, so they are dropped here.
func (d *Dispatcher) TaskCreatedHook(ctx context.Context, t model.Task) {
	_ = d.Dispatch(ctx, TaskCreated(t))
}

// LogSender writes notifications to the application log.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, n Notification) error {
	s.logger.Info(n.Message,
		zap.String("notification_id", n.ID.String()),
		zap.Int64("task_id", n.TaskID),
		zap.String("title", n.Title),
	)
	return nil
}
