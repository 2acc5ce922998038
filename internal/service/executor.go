package service

import (
	"context"
	"fmt"
	"time"

	"taskhub/config"
	"taskhub/internal/dto"
	"taskhub/internal/model"
	"taskhub/internal/strategy"
	"taskhub/pkg/logger"
	"taskhub/pkg/runlog"
	"taskhub/pkg/utils"
)

const maxStoredOutputLen = 2000

// TaskExecutor runs one task's configured action under its timeout and
// always returns a normalized result, never an error.
type TaskExecutor interface {
	Execute(ctx context.Context, task *model.Task) dto.ExecutionResult
}

type taskExecutor struct {
	cfg        *config.Config
	log        *logger.Logger
	strategies map[model.TaskType]strategy.ExecutionStrategy
	runLog     *runlog.Writer
}

func NewTaskExecutor(
	cfg *config.Config,
	log *logger.Logger,
	runLog *runlog.Writer,
	strategies map[model.TaskType]strategy.ExecutionStrategy,
) TaskExecutor {
	return &taskExecutor{
		cfg:        cfg,
		log:        log,
		runLog:     runLog,
		strategies: strategies,
	}
}

func (t *taskExecutor) Execute(ctx context.Context, task *model.Task) dto.ExecutionResult {
	start := time.Now()

	timeout := dto.TimeoutFor(task.TaskType, task.Config)
	if timeout <= 0 {
		timeout = t.cfg.Scheduler.DefaultTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res := t.run(execCtx, task)

	result := dto.ExecutionResult{
		Status:       res.Status,
		Output:       utils.Truncate(res.Output, maxStoredOutputLen),
		ErrorMessage: res.ErrorMessage,
		ExitCode:     res.ExitCode,
		DurationMs:   time.Since(start).Milliseconds(),
		CompletedAt:  utils.TimeNowUTC(),
	}

	// The run log is best-effort; a write failure never fails the execution.
	if err := t.runLog.Append(runlog.Entry{
		TaskID:       task.ID,
		TaskName:     task.Name,
		Status:       string(result.Status),
		DurationMs:   result.DurationMs,
		ExitCode:     result.ExitCode,
		Output:       result.Output,
		ErrorMessage: result.ErrorMessage,
		Timestamp:    result.CompletedAt,
	}); err != nil {
		t.log.WarnContext(ctx, "failed to append run log",
			logger.IntField("task_id", int(task.ID)), logger.ErrorField(err))
	}

	return result
}

func (t *taskExecutor) run(ctx context.Context, task *model.Task) (res strategy.Result) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("task execution panicked",
				logger.IntField("task_id", int(task.ID)),
				logger.Field("panic", r))
			res = strategy.Result{
				Status:       model.StatusFailed,
				ErrorMessage: fmt.Sprintf("execution panicked: %v", r),
				ExitCode:     -1,
			}
		}
	}()

	strat, ok := t.strategies[task.TaskType]
	if !ok {
		return strategy.Result{
			Status:       model.StatusFailed,
			ErrorMessage: fmt.Sprintf("unknown task type: %s", task.TaskType),
			ExitCode:     -1,
		}
	}

	res, err := strat.Execute(ctx, task.Config)
	if err != nil {
		res.Status = model.StatusFailed
		if res.ErrorMessage == "" {
			res.ErrorMessage = err.Error()
		}
		if res.ExitCode == 0 {
			res.ExitCode = -1
		}
	}
	return res
}
