package repository

import (
	"context"
	"errors"

	"taskhub/internal/model"
	"taskhub/pkg/utils"

	"gorm.io/gorm"
)

type TaskRepository interface {
	Get(ctx context.Context, param *model.GetTasksParam, opts ...utils.DBOption) ([]model.Task, error)
	FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Task, error)
	Create(ctx context.Context, task *model.Task, opts ...utils.DBOption) error
	// Update writes only the given columns so boolean and nullable fields can
	// be reset to their zero values.
	Update(ctx context.Context, id uint, fields map[string]interface{}, opts ...utils.DBOption) error
	Delete(ctx context.Context, id uint, opts ...utils.DBOption) error
	Count(ctx context.Context, param *model.GetTasksParam) (int64, error)
	CountRunning(ctx context.Context) (int64, error)
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Get(ctx context.Context, param *model.GetTasksParam, opts ...utils.DBOption) ([]model.Task, error) {
	var tasks []model.Task
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...).Model(&model.Task{})
	if param != nil {
		if len(param.IDs) > 0 {
			db = db.Where("id IN ?", param.IDs)
		}
		if param.ActiveOnly {
			db = db.Where("is_active = ?", true)
		}
		if param.Limit != nil {
			db = db.Limit(*param.Limit)
		}
		if param.Offset != nil {
			db = db.Offset(*param.Offset)
		}
	}
	if err := db.Order("id").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Task, error) {
	var task model.Task
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).First(&task, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(task).Error
}

func (r *taskRepository) Update(ctx context.Context, id uint, fields map[string]interface{}, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Model(&model.Task{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *taskRepository) Delete(ctx context.Context, id uint, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Delete(&model.Task{}, id).Error
}

func (r *taskRepository) Count(ctx context.Context, param *model.GetTasksParam) (int64, error) {
	var count int64
	db := r.db.WithContext(ctx).Model(&model.Task{})
	if param != nil && param.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Count(&count).Error
	return count, err
}

func (r *taskRepository) CountRunning(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).Where("is_running = ?", true).Count(&count).Error
	return count, err
}
