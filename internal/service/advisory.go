package service

import (
	"context"
	"fmt"

	"taskhub/internal/dto"
	"taskhub/internal/repository"
	"taskhub/pkg/logger"
)

// AdvisoryService fronts the AI repository and sanity checks its output
// before it reaches callers. Generated cron expressions in particular must
// parse with the same evaluator the scheduler uses.
type AdvisoryService interface {
	NaturalToCron(ctx context.Context, req *dto.NaturalCronRequest) (*dto.NaturalCronResponse, error)
	AnalyzeError(ctx context.Context, req *dto.AnalyzeErrorRequest) (*dto.AnalyzeErrorResponse, error)
	SuggestConfig(ctx context.Context, req *dto.SuggestConfigRequest) (*dto.SuggestConfigResponse, error)
	GenerateName(ctx context.Context, req *dto.GenerateNameRequest) (*dto.GenerateNameResponse, error)
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	Status() dto.AIStatusResponse
}

type advisoryService struct {
	log       *logger.Logger
	aiRepo    repository.AIRepository
	evaluator *CronEvaluator
}

func NewAdvisoryService(log *logger.Logger, aiRepo repository.AIRepository, evaluator *CronEvaluator) AdvisoryService {
	return &advisoryService{log: log, aiRepo: aiRepo, evaluator: evaluator}
}

func (s *advisoryService) NaturalToCron(ctx context.Context, req *dto.NaturalCronRequest) (*dto.NaturalCronResponse, error) {
	resp, err := s.aiRepo.NaturalToCron(ctx, req.Text)
	if err != nil {
		return nil, err
	}
	if _, err := s.evaluator.Parse(resp.Expression); err != nil {
		return nil, fmt.Errorf("generated expression %q is not valid: %w", resp.Expression, err)
	}
	return resp, nil
}

func (s *advisoryService) AnalyzeError(ctx context.Context, req *dto.AnalyzeErrorRequest) (*dto.AnalyzeErrorResponse, error) {
	return s.aiRepo.AnalyzeError(ctx, req.ErrorMessage, req.TaskType, req.Output)
}

func (s *advisoryService) SuggestConfig(ctx context.Context, req *dto.SuggestConfigRequest) (*dto.SuggestConfigResponse, error) {
	resp, err := s.aiRepo.SuggestConfig(ctx, req.Description)
	if err != nil {
		return nil, err
	}
	if resp.CronExpression != "" {
		if _, err := s.evaluator.Parse(resp.CronExpression); err != nil {
			s.log.WarnContext(ctx, "suggested cron expression is not valid, dropping it",
				logger.StringField("expression", resp.CronExpression))
			resp.CronExpression = ""
		}
	}
	return resp, nil
}

func (s *advisoryService) GenerateName(ctx context.Context, req *dto.GenerateNameRequest) (*dto.GenerateNameResponse, error) {
	name, err := s.aiRepo.GenerateTaskName(ctx, req.Description)
	if err != nil {
		return nil, err
	}
	return &dto.GenerateNameResponse{Name: name}, nil
}

func (s *advisoryService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	reply, err := s.aiRepo.Chat(ctx, req.Message)
	if err != nil {
		return nil, err
	}
	return &dto.ChatResponse{Reply: reply}, nil
}

func (s *advisoryService) Status() dto.AIStatusResponse {
	return s.aiRepo.Status()
}
