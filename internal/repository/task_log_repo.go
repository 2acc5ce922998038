package repository

import (
	"context"
	"errors"

	"taskhub/internal/model"
	"taskhub/pkg/utils"

	"gorm.io/gorm"
)

type TaskLogRepository interface {
	Create(ctx context.Context, log *model.TaskLog, opts ...utils.DBOption) error
	Update(ctx context.Context, id uint, fields map[string]interface{}, opts ...utils.DBOption) error
	FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.TaskLog, error)
	Get(ctx context.Context, param *model.GetTaskLogsParam, opts ...utils.DBOption) ([]model.TaskLog, error)
	Count(ctx context.Context, param *model.GetTaskLogsParam) (int64, error)
	DeleteByTaskID(ctx context.Context, taskID uint, opts ...utils.DBOption) error
}

type taskLogRepository struct {
	db *gorm.DB
}

func NewTaskLogRepository(db *gorm.DB) TaskLogRepository {
	return &taskLogRepository{db: db}
}

func (r *taskLogRepository) Create(ctx context.Context, log *model.TaskLog, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(log).Error
}

func (r *taskLogRepository) Update(ctx context.Context, id uint, fields map[string]interface{}, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Model(&model.TaskLog{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *taskLogRepository) FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.TaskLog, error) {
	var log model.TaskLog
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).First(&log, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

func (r *taskLogRepository) Get(ctx context.Context, param *model.GetTaskLogsParam, opts ...utils.DBOption) ([]model.TaskLog, error) {
	var logs []model.TaskLog
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...).Model(&model.TaskLog{})
	if param != nil {
		if param.TaskID != nil {
			db = db.Where("task_id = ?", *param.TaskID)
		}
		if param.Status != nil {
			db = db.Where("status = ?", *param.Status)
		}
		if param.Limit != nil {
			db = db.Limit(*param.Limit)
		}
		if param.Offset != nil {
			db = db.Offset(*param.Offset)
		}
	}
	if err := db.Order("started_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *taskLogRepository) Count(ctx context.Context, param *model.GetTaskLogsParam) (int64, error) {
	var count int64
	db := r.db.WithContext(ctx).Model(&model.TaskLog{})
	if param != nil {
		if param.TaskID != nil {
			db = db.Where("task_id = ?", *param.TaskID)
		}
		if param.Status != nil {
			db = db.Where("status = ?", *param.Status)
		}
	}
	err := db.Count(&count).Error
	return count, err
}

func (r *taskLogRepository) DeleteByTaskID(ctx context.Context, taskID uint, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("task_id = ?", taskID).
		Delete(&model.TaskLog{}).Error
}
