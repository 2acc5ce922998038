package service

import "errors"

var (
	// ErrInvalidCronExpression is returned when a schedule cannot be parsed
	// as a standard 5-field cron expression.
	ErrInvalidCronExpression = errors.New("invalid cron expression")

	// ErrTaskAlreadyRunning is returned by manual triggering when the task
	// is in the running set. Scheduled firings skip silently instead.
	ErrTaskAlreadyRunning = errors.New("task is already running")

	ErrTaskNotFound    = errors.New("task not found")
	ErrMessageNotFound = errors.New("message not found")
)
