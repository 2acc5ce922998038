package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"taskhub/config"
	"taskhub/internal/dto"
	"taskhub/internal/model"
	"taskhub/internal/repository"
	"taskhub/pkg/logger"
	"taskhub/pkg/utils"

	"github.com/robfig/cron/v3"
)

// SchedulerService owns the timer table and the per-task single-flight
// guard. Executions fan out to goroutines; the dispatch loop never blocks on
// task I/O.
type SchedulerService interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
	IsRunning() bool
	AddTask(ctx context.Context, task *model.Task) error
	RemoveTask(ctx context.Context, taskID uint)
	UpdateTask(ctx context.Context, task *model.Task) error
	RunTaskNow(ctx context.Context, taskID uint, trigger model.TriggerType) (*model.TaskLog, error)
	ScheduledJobs() []dto.ScheduledJob
}

type schedulerEntry struct {
	id             cron.EntryID
	taskName       string
	cronExpression string
}

type schedulerService struct {
	cfg         *config.Config
	log         *logger.Logger
	taskRepo    repository.TaskRepository
	taskLogRepo repository.TaskLogRepository
	executor    TaskExecutor
	notifier    NotifyService
	evaluator   *CronEvaluator

	cron *cron.Cron

	entriesMu sync.Mutex
	entries   map[uint]schedulerEntry

	runningMu sync.Mutex
	running   map[uint]struct{}

	inflight sync.WaitGroup

	stateMu sync.Mutex
	started bool
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	taskRepo repository.TaskRepository,
	taskLogRepo repository.TaskLogRepository,
	executor TaskExecutor,
	notifier NotifyService,
	evaluator *CronEvaluator,
) SchedulerService {
	return &schedulerService{
		cfg:         cfg,
		log:         log,
		taskRepo:    taskRepo,
		taskLogRepo: taskLogRepo,
		executor:    executor,
		notifier:    notifier,
		evaluator:   evaluator,
		cron:        cron.New(cron.WithParser(evaluator.Parser()), cron.WithLocation(time.UTC)),
		entries:     make(map[uint]schedulerEntry),
		running:     make(map[uint]struct{}),
	}
}

// Start registers every persisted task and begins dispatching timers.
func (s *schedulerService) Start(ctx context.Context) error {
	tasks, err := s.taskRepo.Get(ctx, &model.GetTasksParam{})
	if err != nil {
		return fmt.Errorf("failed to load tasks on startup: %w", err)
	}

	registered := 0
	for i := range tasks {
		task := tasks[i]
		if err := s.AddTask(ctx, &task); err != nil {
			// A task with a bad persisted expression must not block the
			// rest of the schedule.
			s.log.ErrorContext(ctx, "failed to register task on startup",
				logger.IntField("task_id", int(task.ID)), logger.ErrorField(err))
			continue
		}
		if task.IsActive {
			registered++
		}
	}

	s.cron.Start()

	s.stateMu.Lock()
	s.started = true
	s.stateMu.Unlock()

	s.log.Info("Task scheduler started",
		logger.IntField("task_count", len(tasks)),
		logger.IntField("registered", registered),
	)
	return nil
}

// Shutdown stops dispatching and waits for in-flight executions up to the
// configured grace period, after which they are abandoned. Their results are
// still written by the execution goroutines if the process lives on.
func (s *schedulerService) Shutdown(ctx context.Context) error {
	s.stateMu.Lock()
	if !s.started {
		s.stateMu.Unlock()
		return nil
	}
	s.started = false
	s.stateMu.Unlock()

	<-s.cron.Stop().Done()

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("Task scheduler shutdown, all executions completed")
	case <-time.After(s.cfg.Scheduler.ShutdownGrace):
		s.log.Warn("Task scheduler shutdown grace period elapsed, abandoning in-flight executions")
	case <-ctx.Done():
		s.log.Warn("Task scheduler shutdown cancelled, abandoning in-flight executions")
	}
	return nil
}

func (s *schedulerService) IsRunning() bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.started
}

// AddTask registers (or re-registers) a task's timer. Registration is
// idempotent: an existing timer for the same task is cancelled first.
func (s *schedulerService) AddTask(ctx context.Context, task *model.Task) error {
	s.removeEntry(task.ID)

	if !task.IsActive {
		if err := s.taskRepo.Update(ctx, task.ID, map[string]interface{}{"next_run_at": nil}); err != nil {
			return fmt.Errorf("failed to clear next run time: %w", err)
		}
		return nil
	}

	schedule, err := s.evaluator.Parse(task.CronExpression)
	if err != nil {
		return err
	}

	taskID := task.ID
	entryID := s.cron.Schedule(schedule, cron.FuncJob(func() {
		s.runScheduled(taskID)
	}))

	s.entriesMu.Lock()
	s.entries[task.ID] = schedulerEntry{
		id:             entryID,
		taskName:       task.Name,
		cronExpression: task.CronExpression,
	}
	s.entriesMu.Unlock()

	next := schedule.Next(utils.TimeNowUTC())
	if err := s.taskRepo.Update(ctx, task.ID, map[string]interface{}{
		"next_run_at": sql.NullTime{Time: next, Valid: true},
	}); err != nil {
		return fmt.Errorf("failed to persist next run time: %w", err)
	}

	s.log.InfoContext(ctx, "Task scheduled",
		logger.IntField("task_id", int(task.ID)),
		logger.StringField("task_name", task.Name),
		logger.StringField("cron", task.CronExpression),
	)
	return nil
}

// RemoveTask cancels the task's timer. No-op when no timer exists. An
// execution already in flight is not cancelled; it completes and records its
// result normally.
func (s *schedulerService) RemoveTask(ctx context.Context, taskID uint) {
	if s.removeEntry(taskID) {
		s.log.InfoContext(ctx, "Task removed from scheduler", logger.IntField("task_id", int(taskID)))
	}
}

// UpdateTask fully recomputes the schedule; there are no partial updates.
func (s *schedulerService) UpdateTask(ctx context.Context, task *model.Task) error {
	s.RemoveTask(ctx, task.ID)
	return s.AddTask(ctx, task)
}

func (s *schedulerService) removeEntry(taskID uint) bool {
	s.entriesMu.Lock()
	defer s.entriesMu.Unlock()
	entry, ok := s.entries[taskID]
	if !ok {
		return false
	}
	s.cron.Remove(entry.id)
	delete(s.entries, taskID)
	return true
}

// runScheduled is the timer callback. A firing that finds the task already
// running is dropped entirely; the next scheduled firing will try again.
func (s *schedulerService) runScheduled(taskID uint) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scheduled run panicked",
				logger.IntField("task_id", int(taskID)), logger.Field("panic", r))
		}
	}()

	if !s.tryAcquire(taskID) {
		s.log.Warn("Task is already running, skipping firing", logger.IntField("task_id", int(taskID)))
		return
	}
	s.inflight.Add(1)
	defer func() {
		s.release(taskID)
		s.inflight.Done()
	}()

	// Executions survive schedule changes and API request cancellation, so
	// they run on a fresh context rather than a request-scoped one.
	if _, err := s.executeTask(context.Background(), taskID, model.TriggerScheduled, false); err != nil {
		s.log.Error("Scheduled run failed",
			logger.IntField("task_id", int(taskID)), logger.ErrorField(err))
	}
}

// RunTaskNow triggers a task on demand and waits for it to finish. Unlike
// scheduled firings, a conflict with a run already in flight is surfaced to
// the caller as ErrTaskAlreadyRunning.
func (s *schedulerService) RunTaskNow(ctx context.Context, taskID uint, trigger model.TriggerType) (*model.TaskLog, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	if !s.tryAcquire(taskID) {
		return nil, ErrTaskAlreadyRunning
	}
	s.inflight.Add(1)
	defer func() {
		s.release(taskID)
		s.inflight.Done()
	}()

	return s.executeTask(ctx, taskID, trigger, true)
}

// executeTask is the shared execution path. The caller holds the running-set
// slot for taskID. Persistence failures after the task is marked running
// still restore is_running through the deferred cleanup.
func (s *schedulerService) executeTask(ctx context.Context, taskID uint, trigger model.TriggerType, manual bool) (*model.TaskLog, error) {
	// Bookkeeping writes must outlive the caller: a client disconnecting
	// mid-run on a manual trigger must not abort the state updates that
	// clear is_running and move the log to a terminal status.
	dbCtx := context.WithoutCancel(ctx)

	task, err := s.taskRepo.FindByID(dbCtx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task == nil {
		if manual {
			return nil, ErrTaskNotFound
		}
		// Deleted between scheduling and firing.
		return nil, nil
	}
	if !task.IsActive && !manual {
		return nil, nil
	}

	now := utils.TimeNowUTC()
	if err := s.taskRepo.Update(dbCtx, task.ID, map[string]interface{}{
		"is_running":  true,
		"last_run_at": sql.NullTime{Time: now, Valid: true},
		"run_count":   task.RunCount + 1,
	}); err != nil {
		return nil, fmt.Errorf("failed to mark task running: %w", err)
	}

	defer func() {
		// Guaranteed cleanup: whatever happens during execution or
		// bookkeeping, the task never stays stuck in is_running.
		if err := s.taskRepo.Update(dbCtx, task.ID, map[string]interface{}{"is_running": false}); err != nil {
			s.log.ErrorContext(dbCtx, "failed to clear running flag",
				logger.IntField("task_id", int(task.ID)), logger.ErrorField(err))
		}
	}()

	taskLog := &model.TaskLog{
		TaskID:      task.ID,
		TaskName:    task.Name,
		Status:      model.StatusRunning,
		StartedAt:   now,
		TriggerType: trigger,
	}
	if err := s.taskLogRepo.Create(dbCtx, taskLog); err != nil {
		return nil, fmt.Errorf("failed to create task log: %w", err)
	}

	result := s.executor.Execute(ctx, task)

	logFields := map[string]interface{}{
		"status":        result.Status,
		"completed_at":  sql.NullTime{Time: result.CompletedAt, Valid: true},
		"duration_ms":   sql.NullInt64{Int64: result.DurationMs, Valid: true},
		"output":        result.Output,
		"error_message": sql.NullString{String: result.ErrorMessage, Valid: result.ErrorMessage != ""},
		"exit_code":     sql.NullInt32{Int32: int32(result.ExitCode), Valid: true},
	}
	if err := s.taskLogRepo.Update(dbCtx, taskLog.ID, logFields); err != nil {
		s.log.ErrorContext(dbCtx, "failed to finalize task log",
			logger.IntField("task_id", int(task.ID)), logger.ErrorField(err))
	}

	taskFields := map[string]interface{}{}
	if result.Succeeded() {
		taskFields["success_count"] = task.SuccessCount + 1
	} else {
		taskFields["failure_count"] = task.FailureCount + 1
	}
	if task.IsActive {
		if next, err := s.evaluator.Next(task.CronExpression, utils.TimeNowUTC()); err == nil {
			taskFields["next_run_at"] = sql.NullTime{Time: next, Valid: true}
		}
	}
	if err := s.taskRepo.Update(dbCtx, task.ID, taskFields); err != nil {
		s.log.ErrorContext(dbCtx, "failed to update task statistics",
			logger.IntField("task_id", int(task.ID)), logger.ErrorField(err))
	}

	if (result.Succeeded() && task.NotifyOnSuccess) || (!result.Succeeded() && task.NotifyOnFailure) {
		notifyTask := *task
		utils.GoSafe(func() {
			s.notifier.NotifyResult(context.Background(), &notifyTask, result)
		})
	}

	s.log.InfoContext(ctx, "Task execution completed",
		logger.IntField("task_id", int(task.ID)),
		logger.StringField("task_name", task.Name),
		logger.StringField("status", string(result.Status)),
		logger.Int64Field("duration_ms", result.DurationMs),
	)

	taskLog.Status = result.Status
	taskLog.CompletedAt = sql.NullTime{Time: result.CompletedAt, Valid: true}
	taskLog.DurationMs = sql.NullInt64{Int64: result.DurationMs, Valid: true}
	taskLog.Output = result.Output
	taskLog.ErrorMessage = sql.NullString{String: result.ErrorMessage, Valid: result.ErrorMessage != ""}
	taskLog.ExitCode = sql.NullInt32{Int32: int32(result.ExitCode), Valid: true}
	return taskLog, nil
}

func (s *schedulerService) tryAcquire(taskID uint) bool {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	if _, ok := s.running[taskID]; ok {
		return false
	}
	s.running[taskID] = struct{}{}
	return true
}

func (s *schedulerService) release(taskID uint) {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	delete(s.running, taskID)
}

// ScheduledJobs returns a read-only snapshot of the timer table.
func (s *schedulerService) ScheduledJobs() []dto.ScheduledJob {
	s.entriesMu.Lock()
	defer s.entriesMu.Unlock()

	jobs := make([]dto.ScheduledJob, 0, len(s.entries))
	for taskID, entry := range s.entries {
		jobs = append(jobs, dto.ScheduledJob{
			TaskID:         taskID,
			TaskName:       entry.taskName,
			CronExpression: entry.cronExpression,
			NextRunAt:      s.cron.Entry(entry.id).Next,
		})
	}
	return jobs
}
