package repository

import (
	"context"
	"errors"

	"taskhub/internal/model"
	"taskhub/pkg/utils"

	"gorm.io/gorm"
)

type MessageRepository interface {
	Get(ctx context.Context, param *model.GetMessagesParam, opts ...utils.DBOption) ([]model.Message, error)
	FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Message, error)
	FindByMessageID(ctx context.Context, messageID string) (*model.Message, error)
	Create(ctx context.Context, message *model.Message, opts ...utils.DBOption) error
	Update(ctx context.Context, id uint, fields map[string]interface{}, opts ...utils.DBOption) error
	Delete(ctx context.Context, id uint, opts ...utils.DBOption) error
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Get(ctx context.Context, param *model.GetMessagesParam, opts ...utils.DBOption) ([]model.Message, error) {
	var messages []model.Message
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...).Model(&model.Message{})
	if param != nil {
		if param.Source != nil {
			db = db.Where("source = ?", *param.Source)
		}
		if param.IsProcessed != nil {
			db = db.Where("is_processed = ?", *param.IsProcessed)
		}
		if param.Limit != nil {
			db = db.Limit(*param.Limit)
		}
		if param.Offset != nil {
			db = db.Offset(*param.Offset)
		}
	}
	if err := db.Order("received_at DESC").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Message, error) {
	var message model.Message
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).First(&message, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) FindByMessageID(ctx context.Context, messageID string) (*model.Message, error) {
	var message model.Message
	err := r.db.WithContext(ctx).Where("message_id = ?", messageID).First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(message).Error
}

func (r *messageRepository) Update(ctx context.Context, id uint, fields map[string]interface{}, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Model(&model.Message{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *messageRepository) Delete(ctx context.Context, id uint, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Delete(&model.Message{}, id).Error
}
