package dto

import "encoding/json"

type NaturalCronRequest struct {
	Text string `json:"text" validate:"required"`
}

type NaturalCronResponse struct {
	Expression  string `json:"expression"`
	Description string `json:"description,omitempty"`
}

type AnalyzeErrorRequest struct {
	ErrorMessage string `json:"error_message" validate:"required"`
	TaskType     string `json:"task_type"`
	Output       string `json:"output"`
}

type AnalyzeErrorResponse struct {
	Analysis    string   `json:"analysis"`
	Suggestions []string `json:"suggestions"`
}

type SuggestConfigRequest struct {
	Description string `json:"description" validate:"required"`
}

type SuggestConfigResponse struct {
	TaskType       string          `json:"task_type"`
	CronExpression string          `json:"cron_expression"`
	Config         json.RawMessage `json:"config"`
}

type GenerateNameRequest struct {
	Description string `json:"description" validate:"required"`
}

type GenerateNameResponse struct {
	Name string `json:"name"`
}

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type AIStatusResponse struct {
	Available bool   `json:"available"`
	Model     string `json:"model,omitempty"`
}
