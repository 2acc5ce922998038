package repository

import (
	"taskhub/config"
	"taskhub/pkg/cache"
	"taskhub/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	TaskRepo    TaskRepository
	TaskLogRepo TaskLogRepository
	MessageRepo MessageRepository
	AIRepo      AIRepository
	UnitOfWork  UnitOfWork
}

func NewRepository(cfg *config.Config, inmemoryCache cache.Cache, db *gorm.DB, log *logger.Logger) (*Repository, error) {
	aiRepo, err := NewGeminiAIRepository(cfg, log, inmemoryCache)
	if err != nil {
		return nil, err
	}

	return &Repository{
		TaskRepo:    NewTaskRepository(db),
		TaskLogRepo: NewTaskLogRepository(db),
		MessageRepo: NewMessageRepository(db),
		AIRepo:      aiRepo,
		UnitOfWork:  NewUnitOfWork(db),
	}, nil
}
