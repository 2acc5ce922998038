package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taskhub/config"
	"taskhub/internal/model"
	"taskhub/internal/strategy"
	"taskhub/pkg/logger"
	"taskhub/pkg/runlog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type stubStrategy struct {
	taskType model.TaskType
	result   strategy.Result
	err      error
	panics   bool
	blockCtx bool
}

func (s *stubStrategy) Type() model.TaskType {
	return s.taskType
}

func (s *stubStrategy) Execute(ctx context.Context, config datatypes.JSON) (strategy.Result, error) {
	if s.panics {
		panic("strategy blew up")
	}
	if s.blockCtx {
		<-ctx.Done()
		return strategy.Result{Status: model.StatusFailed, ErrorMessage: "timed out", ExitCode: -1}, ctx.Err()
	}
	return s.result, s.err
}

func newTestExecutor(t *testing.T, strategies ...*stubStrategy) (TaskExecutor, string) {
	t.Helper()
	dir := t.TempDir()
	writer, err := runlog.NewWriter(dir)
	require.NoError(t, err)

	byType := map[model.TaskType]strategy.ExecutionStrategy{}
	for _, s := range strategies {
		byType[s.taskType] = s
	}
	return NewTaskExecutor(&config.Config{}, logger.NewNop(), writer, byType), dir
}

func TestTaskExecutor_Success(t *testing.T) {
	stub := &stubStrategy{
		taskType: model.TaskTypeShell,
		result:   strategy.Result{Status: model.StatusSuccess, Output: "done", ExitCode: 0},
	}
	executor, dir := newTestExecutor(t, stub)

	task := &model.Task{ID: 7, Name: "cleanup", TaskType: model.TaskTypeShell, Config: datatypes.JSON(`{"command":"true"}`)}
	result := executor.Execute(context.Background(), task)

	assert.Equal(t, model.StatusSuccess, result.Status)
	assert.Equal(t, "done", result.Output)
	assert.Equal(t, 0, result.ExitCode)
	assert.False(t, result.CompletedAt.IsZero())

	data, err := os.ReadFile(filepath.Join(dir, "task_7.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Task: cleanup (ID: 7)")
	assert.Contains(t, string(data), "Status: success")
}

func TestTaskExecutor_StrategyError(t *testing.T) {
	stub := &stubStrategy{
		taskType: model.TaskTypeShell,
		result:   strategy.Result{Status: model.StatusSuccess},
		err:      errors.New("connection refused"),
	}
	executor, _ := newTestExecutor(t, stub)

	task := &model.Task{ID: 1, Name: "healthcheck", TaskType: model.TaskTypeShell}
	result := executor.Execute(context.Background(), task)

	assert.Equal(t, model.StatusFailed, result.Status)
	assert.Equal(t, "connection refused", result.ErrorMessage)
	assert.Equal(t, -1, result.ExitCode)
}

func TestTaskExecutor_UnknownType(t *testing.T) {
	executor, _ := newTestExecutor(t)

	task := &model.Task{ID: 1, Name: "mystery", TaskType: model.TaskType("ftp")}
	result := executor.Execute(context.Background(), task)

	assert.Equal(t, model.StatusFailed, result.Status)
	assert.Contains(t, result.ErrorMessage, "unknown task type")
	assert.Equal(t, -1, result.ExitCode)
}

func TestTaskExecutor_PanicRecovered(t *testing.T) {
	stub := &stubStrategy{taskType: model.TaskTypeShell, panics: true}
	executor, _ := newTestExecutor(t, stub)

	task := &model.Task{ID: 1, Name: "bomb", TaskType: model.TaskTypeShell}
	result := executor.Execute(context.Background(), task)

	assert.Equal(t, model.StatusFailed, result.Status)
	assert.Contains(t, result.ErrorMessage, "execution panicked")
}

func TestTaskExecutor_ConfigDefaultTimeoutApplies(t *testing.T) {
	dir := t.TempDir()
	writer, err := runlog.NewWriter(dir)
	require.NoError(t, err)

	// A task type without a per-type default gets bounded by the configured
	// scheduler default timeout.
	stub := &stubStrategy{taskType: model.TaskType("docker"), blockCtx: true}
	cfg := &config.Config{}
	cfg.Scheduler.DefaultTimeout = 50 * time.Millisecond
	executor := NewTaskExecutor(cfg, logger.NewNop(), writer, map[model.TaskType]strategy.ExecutionStrategy{
		stub.taskType: stub,
	})

	task := &model.Task{ID: 2, Name: "container-prune", TaskType: stub.taskType, Config: datatypes.JSON(`{}`)}
	start := time.Now()
	result := executor.Execute(context.Background(), task)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, model.StatusFailed, result.Status)
	assert.Equal(t, "timed out", result.ErrorMessage)
}

func TestTaskExecutor_TruncatesLongOutput(t *testing.T) {
	stub := &stubStrategy{
		taskType: model.TaskTypeShell,
		result: strategy.Result{
			Status: model.StatusSuccess,
			Output: strings.Repeat("x", 5000),
		},
	}
	executor, _ := newTestExecutor(t, stub)

	task := &model.Task{ID: 1, Name: "chatty", TaskType: model.TaskTypeShell}
	result := executor.Execute(context.Background(), task)

	assert.LessOrEqual(t, len(result.Output), maxStoredOutputLen+len("... (truncated)"))
	assert.Contains(t, result.Output, "truncated")
}
