package dto

import "taskhub/internal/model"

type DashboardStats struct {
	TotalTasks    int64           `json:"total_tasks"`
	ActiveTasks   int64           `json:"active_tasks"`
	RunningTasks  int64           `json:"running_tasks"`
	TotalRuns     int64           `json:"total_runs"`
	SuccessRate   float64         `json:"success_rate"`
	RecentLogs    []model.TaskLog `json:"recent_logs"`
	UpcomingTasks []model.Task    `json:"upcoming_tasks"`
}
