package service

import (
	"context"
	"fmt"

	"taskhub/config"
	"taskhub/internal/dto"
	"taskhub/internal/model"
	"taskhub/pkg/httpclient"
	"taskhub/pkg/logger"

	"gopkg.in/telebot.v3"
)

// NotifyService delivers best-effort post-execution notifications. Delivery
// failures are logged and never surfaced to the scheduler.
type NotifyService interface {
	NotifyResult(ctx context.Context, task *model.Task, result dto.ExecutionResult)
}

type notifyService struct {
	cfg    *config.Config
	log    *logger.Logger
	bot    *telebot.Bot
	client httpclient.HTTPClient
}

func NewNotifyService(cfg *config.Config, log *logger.Logger, bot *telebot.Bot) NotifyService {
	return &notifyService{
		cfg:    cfg,
		log:    log,
		bot:    bot,
		client: httpclient.New("", cfg.Notification.Timeout),
	}
}

func (n *notifyService) NotifyResult(ctx context.Context, task *model.Task, result dto.ExecutionResult) {
	message := n.formatMessage(task, result)

	delivered := false
	if n.bot != nil && n.cfg.Notification.TelegramChatID != 0 {
		if _, err := n.bot.Send(telebot.ChatID(n.cfg.Notification.TelegramChatID), message); err != nil {
			n.log.WarnContext(ctx, "failed to send telegram notification",
				logger.IntField("task_id", int(task.ID)), logger.ErrorField(err))
		} else {
			delivered = true
		}
	}

	if n.cfg.Notification.WebhookURL != "" {
		payload := map[string]interface{}{
			"task_id":       task.ID,
			"task_name":     task.Name,
			"status":        result.Status,
			"duration_ms":   result.DurationMs,
			"exit_code":     result.ExitCode,
			"error_message": result.ErrorMessage,
			"completed_at":  result.CompletedAt,
		}
		if _, err := n.client.Post(ctx, n.cfg.Notification.WebhookURL, payload, nil, nil); err != nil {
			n.log.WarnContext(ctx, "failed to send webhook notification",
				logger.IntField("task_id", int(task.ID)), logger.ErrorField(err))
		} else {
			delivered = true
		}
	}

	if !delivered {
		// No channel configured (or all failed): record the event so the
		// outcome is still observable. Email delivery is left to an
		// external relay.
		n.log.InfoContext(ctx, "task notification",
			logger.IntField("task_id", int(task.ID)),
			logger.StringField("task_name", task.Name),
			logger.StringField("status", string(result.Status)),
			logger.StringField("notification_email", task.NotificationEmail),
		)
	}
}

func (n *notifyService) formatMessage(task *model.Task, result dto.ExecutionResult) string {
	icon := "✅"
	if !result.Succeeded() {
		icon = "❌"
	}
	message := fmt.Sprintf("%s Task %q (ID %d) finished with status %s in %dms",
		icon, task.Name, task.ID, result.Status, result.DurationMs)
	if result.ErrorMessage != "" {
		message += fmt.Sprintf("\nError: %s", result.ErrorMessage)
	}
	return message
}
