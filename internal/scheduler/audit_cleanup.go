// Package scheduler triggers periodic maintenance on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/mrlokans/simplelibrary/internal/logger"
	"github.com/mrlokans/simplelibrary/internal/tasks"
)

// Enqueuer adds tasks to the background queue.
type Enqueuer interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := scheduleParser.Parse(schedule)
	return err
}

// AuditCleanupScheduler enqueues audit retention cleanup on a cron schedule.
// The cleanup itself runs on the task queue, so a slow delete never blocks
// the cron goroutine.
type AuditCleanupScheduler struct {
	queue         Enqueuer
	schedule      string
	retentionDays int
	log           zerolog.Logger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewAuditCleanupScheduler creates a new scheduler instance
func NewAuditCleanupScheduler(queue Enqueuer, schedule string, retentionDays int) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		queue:         queue,
		schedule:      schedule,
		retentionDays: retentionDays,
		log:           logger.Component("scheduler"),
		cron:          cron.New(cron.WithParser(scheduleParser)),
	}
}

// Start begins the scheduler. An empty schedule disables it.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.schedule == "" {
		s.log.Info().Msg("Audit cleanup scheduler: disabled")
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunNow(); err != nil {
			s.log.Error().Err(err).Msg("Audit cleanup scheduler: failed to enqueue cleanup")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	s.log.Info().
		Str("schedule", s.schedule).
		Int("retention_days", s.retentionDays).
		Time("next_run", s.cron.Entry(entryID).Next).
		Msg("Audit cleanup scheduler: started")

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running enqueue to finish and stops the scheduler.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	s.log.Info().Msg("Audit cleanup scheduler: stopped")
}

// RunNow enqueues a cleanup task immediately and returns its task ID.
func (s *AuditCleanupScheduler) RunNow() (string, error) {
	ids, err := s.queue.Add(tasks.CleanupAuditEventsTask{RetentionDays: s.retentionDays}).Save()
	if err != nil {
		return "", fmt.Errorf("enqueue audit cleanup: %w", err)
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("enqueue audit cleanup: no task id returned")
	}
	s.log.Debug().Str("task_id", ids[0]).Msg("Audit cleanup enqueued")
	return ids[0], nil
}

// IsRunning returns whether the scheduler is active
func (s *AuditCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next cleanup will be enqueued.
func (s *AuditCleanupScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	t := s.cron.Entry(s.entryID).Next
	return &t
}
