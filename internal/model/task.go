package model

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

type TaskType string

const (
	TaskTypeHTTP   TaskType = "http"
	TaskTypeShell  TaskType = "shell"
	TaskTypePython TaskType = "python"
	TaskTypeBackup TaskType = "backup"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeHTTP, TaskTypeShell, TaskTypePython, TaskTypeBackup:
		return true
	}
	return false
}

type Task struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"type:varchar(100);not null;index" json:"name"`
	Description    string         `gorm:"type:text" json:"description"`
	TaskType       TaskType       `gorm:"type:varchar(50);not null" json:"task_type"`
	CronExpression string         `gorm:"type:varchar(100);not null" json:"cron_expression"`
	Config         datatypes.JSON `gorm:"type:jsonb" json:"config"`

	IsActive  bool         `gorm:"default:true" json:"is_active"`
	IsRunning bool         `gorm:"default:false" json:"is_running"`
	LastRunAt sql.NullTime `json:"last_run_at"`
	NextRunAt sql.NullTime `json:"next_run_at"`

	NotifyOnSuccess   bool   `gorm:"default:false" json:"notify_on_success"`
	NotifyOnFailure   bool   `gorm:"default:true" json:"notify_on_failure"`
	NotificationEmail string `gorm:"type:varchar(200)" json:"notification_email"`

	RunCount     int `gorm:"default:0" json:"run_count"`
	SuccessCount int `gorm:"default:0" json:"success_count"`
	FailureCount int `gorm:"default:0" json:"failure_count"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Logs []TaskLog `gorm:"foreignKey:TaskID" json:"-"`
}

func (Task) TableName() string {
	return "tasks"
}

type GetTasksParam struct {
	IDs        []uint `json:"ids"`
	ActiveOnly bool   `json:"active_only"`
	Limit      *int   `json:"limit"`
	Offset     *int   `json:"offset"`
}
