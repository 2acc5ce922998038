package model

import (
	"database/sql"
	"time"
)

type TaskLogStatus string

const (
	StatusRunning TaskLogStatus = "running"
	StatusSuccess TaskLogStatus = "success"
	StatusFailed  TaskLogStatus = "failed"
)

type TriggerType string

const (
	TriggerScheduled TriggerType = "scheduled"
	TriggerManual    TriggerType = "manual"
	TriggerAPI       TriggerType = "api"
)

type TaskLog struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	TaskID   uint   `gorm:"not null;index" json:"task_id"`
	TaskName string `gorm:"type:varchar(100);not null" json:"task_name"`

	Status      TaskLogStatus `gorm:"type:varchar(20);not null" json:"status"`
	StartedAt   time.Time     `gorm:"not null" json:"started_at"`
	CompletedAt sql.NullTime  `json:"completed_at"`
	DurationMs  sql.NullInt64 `json:"duration_ms"`

	Output       string         `gorm:"type:text" json:"output"`
	ErrorMessage sql.NullString `gorm:"type:text" json:"error_message"`
	ExitCode     sql.NullInt32  `json:"exit_code"`

	TriggerType TriggerType `gorm:"type:varchar(20);default:scheduled" json:"trigger_type"`
}

func (TaskLog) TableName() string {
	return "task_logs"
}

type GetTaskLogsParam struct {
	TaskID *uint          `json:"task_id"`
	Status *TaskLogStatus `json:"status"`
	Limit  *int           `json:"limit"`
	Offset *int           `json:"offset"`
}
