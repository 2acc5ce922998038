package service

import (
	"fmt"

	"taskhub/config"
	"taskhub/internal/model"
	"taskhub/internal/repository"
	"taskhub/internal/strategy"
	"taskhub/pkg/cache"
	"taskhub/pkg/httpclient"
	"taskhub/pkg/logger"
	"taskhub/pkg/runlog"

	"github.com/go-playground/validator/v10"
	"gopkg.in/telebot.v3"
)

// Service bundles every application service behind a single dependency the
// delivery layer receives.
type Service struct {
	Scheduler SchedulerService
	Task      TaskService
	Message   MessageService
	Dashboard DashboardService
	Advisory  AdvisoryService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	validate *validator.Validate,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
	bot *telebot.Bot,
) (*Service, error) {
	runLog, err := runlog.NewWriter(cfg.Scheduler.RunLogDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize run log writer: %w", err)
	}

	strategies := map[model.TaskType]strategy.ExecutionStrategy{
		model.TaskTypeHTTP:   strategy.NewHTTPStrategy(log, httpclient.New("", 0)),
		model.TaskTypeShell:  strategy.NewShellStrategy(log),
		model.TaskTypePython: strategy.NewScriptStrategy(log),
		model.TaskTypeBackup: strategy.NewBackupStrategy(log),
	}

	executor := NewTaskExecutor(cfg, log, runLog, strategies)
	notifier := NewNotifyService(cfg, log, bot)
	evaluator := NewCronEvaluator()

	scheduler := NewSchedulerService(cfg, log, repo.TaskRepo, repo.TaskLogRepo, executor, notifier, evaluator)
	task := NewTaskService(log, validate, repo.TaskRepo, repo.TaskLogRepo, repo.MessageRepo, repo.UnitOfWork, scheduler, evaluator)
	message := NewMessageService(log, repo.MessageRepo)
	dashboard := NewDashboardService(log, repo.TaskRepo, repo.TaskLogRepo, inmemoryCache)
	advisory := NewAdvisoryService(log, repo.AIRepo, evaluator)

	return &Service{
		Scheduler: scheduler,
		Task:      task,
		Message:   message,
		Dashboard: dashboard,
		Advisory:  advisory,
	}, nil
}
