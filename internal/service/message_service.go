package service

import (
	"context"
	"fmt"

	"taskhub/internal/dto"
	"taskhub/internal/model"
	"taskhub/internal/repository"
	"taskhub/pkg/logger"
)

type MessageService interface {
	Create(ctx context.Context, req *dto.CreateMessageRequest) (*model.Message, error)
	List(ctx context.Context, param *model.GetMessagesParam) ([]model.Message, error)
	GetByID(ctx context.Context, id uint) (*model.Message, error)
	Update(ctx context.Context, id uint, req *dto.UpdateMessageRequest) (*model.Message, error)
	Delete(ctx context.Context, id uint) error
}

type messageService struct {
	log     *logger.Logger
	msgRepo repository.MessageRepository
}

func NewMessageService(log *logger.Logger, msgRepo repository.MessageRepository) MessageService {
	return &messageService{log: log, msgRepo: msgRepo}
}

// Create ingests a message. Messages carrying an upstream message id are
// deduplicated: re-ingesting one returns the stored row unchanged.
func (s *messageService) Create(ctx context.Context, req *dto.CreateMessageRequest) (*model.Message, error) {
	if req.MessageID != "" {
		existing, err := s.msgRepo.FindByMessageID(ctx, req.MessageID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	source := req.Source
	if source == "" {
		source = model.MessageSourceManual
	}

	message := &model.Message{
		Source:        source,
		SourceAccount: req.SourceAccount,
		Subject:       req.Subject,
		Sender:        req.Sender,
		SenderName:    req.SenderName,
		Organization:  req.Organization,
		ContactPerson: req.ContactPerson,
		Body:          req.Body,
		MessageID:     req.MessageID,
	}
	if err := s.msgRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return message, nil
}

func (s *messageService) List(ctx context.Context, param *model.GetMessagesParam) ([]model.Message, error) {
	return s.msgRepo.Get(ctx, param)
}

func (s *messageService) GetByID(ctx context.Context, id uint) (*model.Message, error) {
	message, err := s.msgRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, ErrMessageNotFound
	}
	return message, nil
}

func (s *messageService) Update(ctx context.Context, id uint, req *dto.UpdateMessageRequest) (*model.Message, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.IsRead != nil {
		fields["is_read"] = *req.IsRead
	}
	if req.IsProcessed != nil {
		fields["is_processed"] = *req.IsProcessed
	}
	if len(fields) > 0 {
		if err := s.msgRepo.Update(ctx, id, fields); err != nil {
			return nil, fmt.Errorf("failed to update message: %w", err)
		}
	}
	return s.GetByID(ctx, id)
}

func (s *messageService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.msgRepo.Delete(ctx, id)
}
