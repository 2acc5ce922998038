package dto

import (
	"encoding/json"
	"time"

	"taskhub/internal/model"
)

type CreateTaskRequest struct {
	Name              string          `json:"name" validate:"required,max=100"`
	Description       string          `json:"description" validate:"max=500"`
	TaskType          model.TaskType  `json:"task_type" validate:"required"`
	CronExpression    string          `json:"cron_expression" validate:"required"`
	Config            json.RawMessage `json:"config" validate:"required"`
	IsActive          *bool           `json:"is_active"`
	NotifyOnSuccess   bool            `json:"notify_on_success"`
	NotifyOnFailure   *bool           `json:"notify_on_failure"`
	NotificationEmail string          `json:"notification_email" validate:"omitempty,email"`
}

type UpdateTaskRequest struct {
	Name              *string         `json:"name" validate:"omitempty,max=100"`
	Description       *string         `json:"description" validate:"omitempty,max=500"`
	CronExpression    *string         `json:"cron_expression"`
	Config            json.RawMessage `json:"config"`
	IsActive          *bool           `json:"is_active"`
	NotifyOnSuccess   *bool           `json:"notify_on_success"`
	NotifyOnFailure   *bool           `json:"notify_on_failure"`
	NotificationEmail *string         `json:"notification_email" validate:"omitempty,email"`
}

type CronValidateRequest struct {
	Expression string `json:"expression" validate:"required"`
}

type CronValidateResponse struct {
	Valid    bool     `json:"valid"`
	NextRuns []string `json:"next_runs"`
	Error    string   `json:"error,omitempty"`
}

// ScheduledJob is a read-only snapshot of one registered timer.
type ScheduledJob struct {
	TaskID         uint      `json:"task_id"`
	TaskName       string    `json:"task_name"`
	CronExpression string    `json:"cron_expression"`
	NextRunAt      time.Time `json:"next_run_at"`
}

// ExecutionResult is the normalized outcome of a single task execution.
// Executors always return a result, never an error.
type ExecutionResult struct {
	Status       model.TaskLogStatus `json:"status"`
	Output       string              `json:"output"`
	ErrorMessage string              `json:"error_message,omitempty"`
	ExitCode     int                 `json:"exit_code"`
	DurationMs   int64               `json:"duration_ms"`
	CompletedAt  time.Time           `json:"completed_at"`
}

func (r ExecutionResult) Succeeded() bool {
	return r.Status == model.StatusSuccess
}
