package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"taskhub/internal/dto"
	"taskhub/internal/model"
	"taskhub/internal/repository"
	"taskhub/pkg/logger"
	"taskhub/pkg/utils"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

type TaskService interface {
	Create(ctx context.Context, req *dto.CreateTaskRequest) (*model.Task, error)
	List(ctx context.Context, param *model.GetTasksParam) ([]model.Task, error)
	GetByID(ctx context.Context, id uint) (*model.Task, error)
	Update(ctx context.Context, id uint, req *dto.UpdateTaskRequest) (*model.Task, error)
	Delete(ctx context.Context, id uint) error
	Toggle(ctx context.Context, id uint) (*model.Task, error)
	Logs(ctx context.Context, param *model.GetTaskLogsParam) ([]model.TaskLog, error)
	ValidateCron(ctx context.Context, expression string) *dto.CronValidateResponse
	CreateFromMessage(ctx context.Context, messageID uint, req *dto.CreateTaskFromMessageRequest) (*model.Task, error)
}

type taskService struct {
	log       *logger.Logger
	validate  *validator.Validate
	taskRepo  repository.TaskRepository
	logRepo   repository.TaskLogRepository
	msgRepo   repository.MessageRepository
	uow       repository.UnitOfWork
	scheduler SchedulerService
	evaluator *CronEvaluator
}

func NewTaskService(
	log *logger.Logger,
	validate *validator.Validate,
	taskRepo repository.TaskRepository,
	logRepo repository.TaskLogRepository,
	msgRepo repository.MessageRepository,
	uow repository.UnitOfWork,
	scheduler SchedulerService,
	evaluator *CronEvaluator,
) TaskService {
	return &taskService{
		log:       log,
		validate:  validate,
		taskRepo:  taskRepo,
		logRepo:   logRepo,
		msgRepo:   msgRepo,
		uow:       uow,
		scheduler: scheduler,
		evaluator: evaluator,
	}
}

// buildTask validates the request and produces an unsaved Task. Both the cron
// expression and the type-specific config are checked up front so an invalid
// task never reaches the database or the scheduler.
func (s *taskService) buildTask(req *dto.CreateTaskRequest) (*model.Task, error) {
	if !req.TaskType.Valid() {
		return nil, fmt.Errorf("unsupported task type %q", req.TaskType)
	}

	if _, err := s.evaluator.Parse(req.CronExpression); err != nil {
		return nil, err
	}

	cfg, err := dto.DecodeTaskConfig(req.TaskType, datatypes.JSON(req.Config))
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := s.validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	task := &model.Task{
		Name:              req.Name,
		Description:       req.Description,
		TaskType:          req.TaskType,
		CronExpression:    req.CronExpression,
		Config:            datatypes.JSON(req.Config),
		IsActive:          true,
		NotifyOnSuccess:   req.NotifyOnSuccess,
		NotifyOnFailure:   true,
		NotificationEmail: req.NotificationEmail,
	}
	if req.IsActive != nil {
		task.IsActive = *req.IsActive
	}
	if req.NotifyOnFailure != nil {
		task.NotifyOnFailure = *req.NotifyOnFailure
	}
	return task, nil
}

func (s *taskService) Create(ctx context.Context, req *dto.CreateTaskRequest) (*model.Task, error) {
	task, err := s.buildTask(req)
	if err != nil {
		return nil, err
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if err := s.scheduler.AddTask(ctx, task); err != nil {
		s.log.ErrorContext(ctx, "failed to schedule new task",
			logger.IntField("task_id", int(task.ID)), logger.ErrorField(err))
	}

	return s.reload(ctx, task.ID)
}

func (s *taskService) List(ctx context.Context, param *model.GetTasksParam) ([]model.Task, error) {
	return s.taskRepo.Get(ctx, param)
}

func (s *taskService) GetByID(ctx context.Context, id uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *taskService) Update(ctx context.Context, id uint, req *dto.UpdateTaskRequest) (*model.Task, error) {
	task, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.CronExpression != nil {
		if _, err := s.evaluator.Parse(*req.CronExpression); err != nil {
			return nil, err
		}
		fields["cron_expression"] = *req.CronExpression
	}
	if req.Config != nil {
		cfg, err := dto.DecodeTaskConfig(task.TaskType, datatypes.JSON(req.Config))
		if err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		if err := s.validate.Struct(cfg); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		fields["config"] = datatypes.JSON(req.Config)
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.NotifyOnSuccess != nil {
		fields["notify_on_success"] = *req.NotifyOnSuccess
	}
	if req.NotifyOnFailure != nil {
		fields["notify_on_failure"] = *req.NotifyOnFailure
	}
	if req.NotificationEmail != nil {
		fields["notification_email"] = *req.NotificationEmail
	}
	if len(fields) == 0 {
		return task, nil
	}

	if err := s.taskRepo.Update(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	task, err = s.reload(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.scheduler.UpdateTask(ctx, task); err != nil {
		s.log.ErrorContext(ctx, "failed to reschedule task",
			logger.IntField("task_id", int(id)), logger.ErrorField(err))
	}
	return s.reload(ctx, id)
}

// Delete unregisters the timer first so no new firing can start while the
// rows are being removed, then drops the task and its logs atomically.
func (s *taskService) Delete(ctx context.Context, id uint) error {
	task, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	s.scheduler.RemoveTask(ctx, task.ID)

	return s.uow.Run(func(opts ...utils.DBOption) error {
		if err := s.logRepo.DeleteByTaskID(ctx, task.ID, opts...); err != nil {
			return fmt.Errorf("failed to delete task logs: %w", err)
		}
		if err := s.taskRepo.Delete(ctx, task.ID, opts...); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return nil
	})
}

func (s *taskService) Toggle(ctx context.Context, id uint) (*model.Task, error) {
	task, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.taskRepo.Update(ctx, id, map[string]interface{}{"is_active": !task.IsActive}); err != nil {
		return nil, fmt.Errorf("failed to toggle task: %w", err)
	}

	task, err = s.reload(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.scheduler.UpdateTask(ctx, task); err != nil {
		s.log.ErrorContext(ctx, "failed to reschedule toggled task",
			logger.IntField("task_id", int(id)), logger.ErrorField(err))
	}
	return s.reload(ctx, id)
}

func (s *taskService) Logs(ctx context.Context, param *model.GetTaskLogsParam) ([]model.TaskLog, error) {
	return s.logRepo.Get(ctx, param)
}

// ValidateCron never returns an error; invalid expressions produce a response
// with Valid=false and the parse failure message.
func (s *taskService) ValidateCron(ctx context.Context, expression string) *dto.CronValidateResponse {
	nextRuns, err := s.evaluator.NextN(expression, utils.TimeNowUTC(), 5)
	if err != nil {
		return &dto.CronValidateResponse{Valid: false, Error: err.Error()}
	}

	formatted := make([]string, 0, len(nextRuns))
	for _, t := range nextRuns {
		formatted = append(formatted, t.Format(time.RFC3339))
	}
	return &dto.CronValidateResponse{Valid: true, NextRuns: formatted}
}

// CreateFromMessage converts an ingested message into a task and marks the
// message processed in the same transaction.
func (s *taskService) CreateFromMessage(ctx context.Context, messageID uint, req *dto.CreateTaskFromMessageRequest) (*model.Task, error) {
	message, err := s.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, ErrMessageNotFound
	}

	task, err := s.buildTask(&req.CreateTaskRequest)
	if err != nil {
		return nil, err
	}

	err = s.uow.Run(func(opts ...utils.DBOption) error {
		if err := s.taskRepo.Create(ctx, task, opts...); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		return s.msgRepo.Update(ctx, message.ID, map[string]interface{}{
			"is_processed": true,
			"is_read":      true,
			"task_id":      sql.NullInt64{Int64: int64(task.ID), Valid: true},
		}, opts...)
	})
	if err != nil {
		return nil, err
	}

	if err := s.scheduler.AddTask(ctx, task); err != nil {
		s.log.ErrorContext(ctx, "failed to schedule task from message",
			logger.IntField("task_id", int(task.ID)), logger.ErrorField(err))
	}

	return s.reload(ctx, task.ID)
}

func (s *taskService) reload(ctx context.Context, id uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}
