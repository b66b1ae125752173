package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

type recordingSender struct {
	got []Notification
	err error
}

func (s *recordingSender) Send(_ context.Context, n Notification) error {
	s.got = append(s.got, n)
	return s.err
}

func TestTaskCreated(t *testing.T) {
	n := TaskCreated(model.Task{ID: 42, Title: "New Task"})

	assert.Equal(t, int64(42), n.TaskID)
	assert.Equal(t, "New Task", n.Title)
	assert.Equal(t, "Notification sent for: New Task", n.Message)
	assert.NotZero(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())
}

func TestDispatcher_Dispatch(t *testing.T) {
	t.Run("fans out to every sender", func(t *testing.T) {
		a, b := &recordingSender{}, &recordingSender{}
		d := NewDispatcher(zap.NewNop(), a)
		d.Register(b)

		require.NoError(t, d.Dispatch(context.Background(), TaskCreated(model.Task{ID: 1, Title: "T"})))
		assert.Len(t, a.got, 1)
		assert.Len(t, b.got, 1)
	})

	t.Run("failing sender does not stop the rest", func(t *testing.T) {
		boom := errors.New("boom")
		a, b := &recordingSender{err: boom}, &recordingSender{}
		d := NewDispatcher(zap.NewNop(), a, b)

		err := d.Dispatch(context.Background(), TaskCreated(model.Task{ID: 1, Title: "T"}))
		assert.ErrorIs(t, err, boom)
		assert.Len(t, b.got, 1)
	})

	t.Run("no senders", func(t *testing.T) {
		d := NewDispatcher(zap.NewNop())
		assert.NoError(t, d.Dispatch(context.Background(), TaskCreated(model.Task{ID: 1})))
	})
}

func TestDispatcher_TaskCreatedHook(t *testing.T) {
	s := &recordingSender{err: errors.New("ignored")}
	d := NewDispatcher(zap.NewNop(), s)

	d.TaskCreatedHook(context.Background(), model.Task{ID: 3, Title: "Hooked"})

	require.Len(t, s.got, 1)
	assert.Equal(t, "Hooked", s.got[0].Title)
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewLogSender(zap.New(core))

	require.NoError(t, s.Send(context.Background(), TaskCreated(model.Task{ID: 9, Title: "Logged"})))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Notification sent for: Logged", entries[0].Message)
	assert.Equal(t, int64(9), entries[0].ContextMap()["task_id"])
}

func TestRedisSender(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer container.Terminate(ctx)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := NewRedisClient(ctx, fmt.Sprintf("%s:%s", host, port.Port()), "", 0)
	require.NoError(t, err)
	defer client.Close()

	sub := client.Subscribe(ctx, "tasks.created")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	sender := NewRedisSender(client, "tasks.created")
	sent := TaskCreated(model.Task{ID: 5, Title: "Published"})
	require.NoError(t, sender.Send(ctx, sent))

	select {
	case msg := <-sub.Channel():
		var got Notification
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, sent.ID, got.ID)
		assert.Equal(t, "Published", got.Title)
	case <-time.After(5 * time.Second):
		t.Fatal("notification was not published")
	}
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}

var _ Sender = (*RedisSender)(nil)
var _ Sender = (*LogSender)(nil)
