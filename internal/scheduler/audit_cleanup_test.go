package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/simplelibrary/internal/tasks"
)

type fakeCleaner struct {
	calls chan time.Duration
}

func (f *fakeCleaner) DeleteOldEvents(_ context.Context, retention time.Duration) (int64, error) {
	f.calls <- retention
	return 0, nil
}

func setupQueue(t *testing.T) (*tasks.Client, *fakeCleaner, func()) {
	client, err := tasks.NewClient(filepath.Join(t.TempDir(), "library.db"), tasks.DefaultConfig())
	require.NoError(t, err)

	cleaner := &fakeCleaner{calls: make(chan time.Duration, 4)}
	client.Register(tasks.NewCleanupAuditEventsQueue(cleaner))

	return client, cleaner, func() { client.Close() }
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 3 * * *"))
	assert.NoError(t, ValidateSchedule("*/5 * * * *"))
	assert.Error(t, ValidateSchedule("every day"))
	assert.Error(t, ValidateSchedule("0 0 3 * * *"), "seconds field is not accepted")
}

func TestAuditCleanupScheduler_StartStop(t *testing.T) {
	client, _, cleanup := setupQueue(t)
	defer cleanup()

	s := NewAuditCleanupScheduler(client, "0 3 * * *", 30)
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.Equal(t, 3, next.Hour())
	assert.Equal(t, 0, next.Minute())

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestAuditCleanupScheduler_StopsWithContext(t *testing.T) {
	client, _, cleanup := setupQueue(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	s := NewAuditCleanupScheduler(client, "0 3 * * *", 30)
	require.NoError(t, s.Start(ctx))

	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, 2*time.Second, 10*time.Millisecond)
}

func TestAuditCleanupScheduler_Disabled(t *testing.T) {
	client, _, cleanup := setupQueue(t)
	defer cleanup()

	s := NewAuditCleanupScheduler(client, "", 30)
	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestAuditCleanupScheduler_InvalidSchedule(t *testing.T) {
	client, _, cleanup := setupQueue(t)
	defer cleanup()

	s := NewAuditCleanupScheduler(client, "not a schedule", 30)
	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron schedule")
	assert.False(t, s.IsRunning())
}

func TestAuditCleanupScheduler_RunNow(t *testing.T) {
	client, cleaner, cleanup := setupQueue(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	s := NewAuditCleanupScheduler(client, "0 3 * * *", 14)
	taskID, err := s.RunNow()
	require.NoError(t, err)
	assert.NotEmpty(t, taskID)

	select {
	case retention := <-cleaner.calls:
		assert.Equal(t, 14*24*time.Hour, retention)
	case <-time.After(5 * time.Second):
		t.Fatal("cleanup task was not executed within timeout")
	}
}
