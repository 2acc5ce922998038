package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"taskhub/config"
	"taskhub/internal/dto"
	"taskhub/pkg/cache"
	"taskhub/pkg/common"
	"taskhub/pkg/logger"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// AIRepository is the optional advisory collaborator. Every method is
// best-effort; the scheduler core never depends on it for correctness.
type AIRepository interface {
	NaturalToCron(ctx context.Context, text string) (*dto.NaturalCronResponse, error)
	AnalyzeError(ctx context.Context, errorMessage, taskType, output string) (*dto.AnalyzeErrorResponse, error)
	SuggestConfig(ctx context.Context, description string) (*dto.SuggestConfigResponse, error)
	GenerateTaskName(ctx context.Context, description string) (string, error)
	Chat(ctx context.Context, message string) (string, error)
	Status() dto.AIStatusResponse
}

type geminiAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
	suggestCache   cache.Cache
}

// NewGeminiAIRepository creates the Gemini-backed advisory repository. When no
// API key is configured the repository stays up but reports unavailable.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, suggestCache cache.Cache) (AIRepository, error) {
	repo := &geminiAIRepository{
		cfg:          cfg,
		logger:       log,
		suggestCache: suggestCache,
	}

	if cfg.Gemini.APIKey == "" {
		log.Warn("Gemini API key not configured, advisory features disabled")
		return repo, nil
	}

	repo.requestLimiter = advisoryRequestLimiter(cfg.Gemini.MaxRequestPerMinute)

	genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	repo.genAiClient = genAiClient

	return repo, nil
}

// advisoryRequestLimiter spaces Gemini calls evenly across the minute. A zero
// or negative configured rate is treated as one request per minute.
func advisoryRequestLimiter(maxPerMinute int) *rate.Limiter {
	if maxPerMinute < 1 {
		maxPerMinute = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(maxPerMinute)), 1)
}

func (r *geminiAIRepository) Status() dto.AIStatusResponse {
	if r.genAiClient == nil {
		return dto.AIStatusResponse{Available: false}
	}
	return dto.AIStatusResponse{Available: true, Model: r.cfg.Gemini.Model}
}

func (r *geminiAIRepository) NaturalToCron(ctx context.Context, text string) (*dto.NaturalCronResponse, error) {
	cacheKey := fmt.Sprintf(common.KEY_NATURAL_CRON, strings.ToLower(strings.TrimSpace(text)))
	if cached, found := cache.GetTyped[*dto.NaturalCronResponse](r.suggestCache, cacheKey); found {
		return cached, nil
	}

	var result dto.NaturalCronResponse
	if err := r.generateJSON(ctx, promptNaturalToCron(text), &result); err != nil {
		return nil, err
	}

	r.suggestCache.Set(cacheKey, &result, r.cfg.Cache.DefaultExpiration)
	return &result, nil
}

func (r *geminiAIRepository) AnalyzeError(ctx context.Context, errorMessage, taskType, output string) (*dto.AnalyzeErrorResponse, error) {
	var result dto.AnalyzeErrorResponse
	if err := r.generateJSON(ctx, promptAnalyzeError(errorMessage, taskType, output), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *geminiAIRepository) SuggestConfig(ctx context.Context, description string) (*dto.SuggestConfigResponse, error) {
	var result dto.SuggestConfigResponse
	if err := r.generateJSON(ctx, promptSuggestConfig(description), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *geminiAIRepository) GenerateTaskName(ctx context.Context, description string) (string, error) {
	raw, err := r.generateText(ctx, promptGenerateName(description))
	if err != nil {
		return "", err
	}
	name := strings.Trim(strings.TrimSpace(raw), `"`)
	if len(name) > 100 {
		name = name[:100]
	}
	return name, nil
}

func (r *geminiAIRepository) Chat(ctx context.Context, message string) (string, error) {
	reply, err := r.generateText(ctx, promptChat(message))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func (r *geminiAIRepository) generateJSON(ctx context.Context, prompt string, dest interface{}) error {
	raw, err := r.generateText(ctx, prompt)
	if err != nil {
		return err
	}

	jsonString := strings.TrimSpace(raw)
	jsonString = strings.TrimPrefix(jsonString, "```json")
	jsonString = strings.Trim(jsonString, "`\n ")

	if err := json.Unmarshal([]byte(jsonString), dest); err != nil {
		r.logger.ErrorContext(ctx, "failed to parse response from gemini", logger.ErrorField(err))
		return fmt.Errorf("failed to parse response from gemini: %w", err)
	}
	return nil
}

func (r *geminiAIRepository) generateText(ctx context.Context, prompt string) (string, error) {
	if r.genAiClient == nil {
		return "", fmt.Errorf("advisory service not available")
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for gemini request limit: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, r.cfg.Gemini.Timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}
	resp, err := r.genAiClient.Models.GenerateContent(reqCtx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to send request to gemini", logger.ErrorField(err))
		return "", fmt.Errorf("failed to send request to gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("invalid response from gemini: no content found")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
