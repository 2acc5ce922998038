package repository

import "fmt"

func promptNaturalToCron(text string) string {
	return fmt.Sprintf(`You translate scheduling requests into standard 5-field cron expressions
(minute hour day-of-month month day-of-week, 0=Sunday).

Request: %q

Respond with JSON only, no markdown:
{"expression": "<5-field cron>", "description": "<short human description of the schedule>"}`, text)
}

func promptAnalyzeError(errorMessage, taskType, output string) string {
	return fmt.Sprintf(`A scheduled task of type %q failed.

Error message:
%s

Captured output:
%s

Explain the most likely cause and how to fix it. Respond with JSON only, no markdown:
{"analysis": "<one paragraph>", "suggestions": ["<actionable step>", "..."]}`, taskType, errorMessage, output)
}

func promptSuggestConfig(description string) string {
	return fmt.Sprintf(`Suggest a task definition for a cron scheduler. Task types and their configs:
- "http": {"url", "method", "headers", "body", "timeout"}
- "shell": {"command", "working_dir", "env_vars", "timeout"}
- "python": {"code", "timeout"}
- "backup": {"source_path", "destination_path", "compress", "retention_days"}

Description: %q

Respond with JSON only, no markdown:
{"task_type": "<type>", "cron_expression": "<5-field cron>", "config": {...}}`, description)
}

func promptChat(message string) string {
	return fmt.Sprintf(`You are an assistant for a cron task scheduler. Users ask about
schedules, task configuration and execution failures. Answer briefly in plain text.

Message: %q`, message)
}

func promptGenerateName(description string) string {
	return fmt.Sprintf(`Generate a short task name (max 50 characters, plain text, no quotes) for: %q`, description)
}
