package strategy

import (
	"context"
	"errors"
	"fmt"

	"taskhub/internal/dto"
	"taskhub/internal/model"
	"taskhub/pkg/httpclient"
	"taskhub/pkg/logger"
	"taskhub/pkg/utils"

	"gorm.io/datatypes"
)

const httpBodyExcerptLen = 2000

type HTTPStrategy struct {
	log    *logger.Logger
	client httpclient.HTTPClient
}

func NewHTTPStrategy(log *logger.Logger, client httpclient.HTTPClient) *HTTPStrategy {
	return &HTTPStrategy{log: log, client: client}
}

func (s *HTTPStrategy) Type() model.TaskType {
	return model.TaskTypeHTTP
}

func (s *HTTPStrategy) Execute(ctx context.Context, raw datatypes.JSON) (Result, error) {
	cfg, err := dto.DecodeHTTPConfig(raw)
	if err != nil {
		return failedResult(err.Error()), err
	}

	resp, err := s.client.Do(ctx, cfg.Method, cfg.URL, cfg.Headers, cfg.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return failedResult(fmt.Sprintf("Request timed out after %ds", cfg.Timeout)), nil
		}
		return failedResult(fmt.Sprintf("Request failed: %v", err)), nil
	}

	output := fmt.Sprintf("Status: %d\nBody: %s", resp.StatusCode, utils.Truncate(string(resp.Body), httpBodyExcerptLen))

	result := Result{
		Status:   model.StatusSuccess,
		Output:   output,
		ExitCode: resp.StatusCode,
	}
	if resp.StatusCode >= 400 {
		result.Status = model.StatusFailed
		result.ErrorMessage = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return result, nil
}
