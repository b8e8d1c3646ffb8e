package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/simplelibrary/internal/tasks"
)

// TaskStatuser looks up background task state. Implemented by *tasks.Client.
type TaskStatuser interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// AuditCleanupRunner enqueues the audit retention task on demand.
// Implemented by *scheduler.AuditCleanupScheduler.
type AuditCleanupRunner interface {
	RunNow() (string, error)
	GetNextRunTime() *time.Time
}

// TasksController handles task queue management endpoints.
type TasksController struct {
	statuses TaskStatuser
	cleanup  AuditCleanupRunner
}

// NewTasksController creates a new TasksController.
func NewTasksController(statuses TaskStatuser, cleanup AuditCleanupRunner) *TasksController {
	return &TasksController{statuses: statuses, cleanup: cleanup}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string     `json:"type"`
	Description string     `json:"description"`
	NextRun     *time.Time `json:"next_run,omitempty"`
}

// ListTaskTypes handles GET /api/tasks/types
// Returns the list of available task types that can be triggered.
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	types := []TaskTypeInfo{}
	if tc.cleanup != nil {
		types = append(types, TaskTypeInfo{
			Type:        tasks.QueueCleanupAuditEvents,
			Description: "Delete audit events older than the retention period",
			NextRun:     tc.cleanup.GetNextRunTime(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"task_types": types,
	})
}

// GetTaskStatus handles GET /api/tasks/:id
// Returns the status of a specific task.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.statuses.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	statusStr := taskStatusToString(status)
	code := http.StatusOK
	if status == backlite.TaskStatusNotFound {
		code = http.StatusNotFound
	}

	c.JSON(code, gin.H{
		"id":     taskID,
		"status": statusStr,
	})
}

// RunTask handles POST /api/tasks/:type/run
// Manually triggers a task of the specified type.
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	var (
		id  string
		err error
	)
	switch {
	case taskType == tasks.QueueCleanupAuditEvents && tc.cleanup != nil:
		id, err = tc.cleanup.RunNow()
	default:
		respondBadRequest(c, fmt.Sprintf("unknown task type: %s", taskType))
		return
	}
	if err != nil {
		respondInternalError(c, err, "enqueue "+taskType)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task_id": id,
		"type":    taskType,
		"message": "task enqueued",
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
