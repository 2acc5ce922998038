package service

import (
	"context"
	"time"

	"taskhub/internal/dto"
	"taskhub/internal/model"
	"taskhub/internal/repository"
	"taskhub/pkg/cache"
	"taskhub/pkg/common"
	"taskhub/pkg/logger"
	"taskhub/pkg/utils"

	"golang.org/x/sync/errgroup"
)

const dashboardCacheTTL = 10 * time.Second

type DashboardService interface {
	Stats(ctx context.Context) (*dto.DashboardStats, error)
}

type dashboardService struct {
	log         *logger.Logger
	taskRepo    repository.TaskRepository
	taskLogRepo repository.TaskLogRepository
	cache       cache.Cache
}

func NewDashboardService(
	log *logger.Logger,
	taskRepo repository.TaskRepository,
	taskLogRepo repository.TaskLogRepository,
	inmemoryCache cache.Cache,
) DashboardService {
	return &dashboardService{
		log:         log,
		taskRepo:    taskRepo,
		taskLogRepo: taskLogRepo,
		cache:       inmemoryCache,
	}
}

// Stats aggregates the dashboard counters. Results are cached briefly since
// the dashboard polls and the counts hit several tables.
func (s *dashboardService) Stats(ctx context.Context) (*dto.DashboardStats, error) {
	if cached, ok := cache.GetTyped[*dto.DashboardStats](s.cache, common.KEY_DASHBOARD_STATS); ok {
		return cached, nil
	}

	stats := &dto.DashboardStats{}
	var totalRuns, successRuns int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.taskRepo.Count(gctx, &model.GetTasksParam{})
		stats.TotalTasks = total
		return err
	})
	g.Go(func() error {
		active, err := s.taskRepo.Count(gctx, &model.GetTasksParam{ActiveOnly: true})
		stats.ActiveTasks = active
		return err
	})
	g.Go(func() error {
		running, err := s.taskRepo.CountRunning(gctx)
		stats.RunningTasks = running
		return err
	})
	g.Go(func() error {
		var err error
		totalRuns, err = s.taskLogRepo.Count(gctx, &model.GetTaskLogsParam{})
		return err
	})
	g.Go(func() error {
		var err error
		successRuns, err = s.taskLogRepo.Count(gctx, &model.GetTaskLogsParam{
			Status: utils.ToPointer(model.StatusSuccess),
		})
		return err
	})
	g.Go(func() error {
		logs, err := s.taskLogRepo.Get(gctx, &model.GetTaskLogsParam{Limit: utils.ToPointer(10)})
		stats.RecentLogs = logs
		return err
	})
	g.Go(func() error {
		upcoming, err := s.taskRepo.Get(gctx, &model.GetTasksParam{ActiveOnly: true},
			utils.WithWhere("next_run_at IS NOT NULL"),
			utils.WithOrder("next_run_at ASC"),
			utils.WithLimit(5),
		)
		stats.UpcomingTasks = upcoming
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.TotalRuns = totalRuns
	if totalRuns > 0 {
		stats.SuccessRate = float64(successRuns) / float64(totalRuns) * 100
	}

	s.cache.Set(common.KEY_DASHBOARD_STATS, stats, dashboardCacheTTL)
	return stats, nil
}
