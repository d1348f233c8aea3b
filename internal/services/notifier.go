package services

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskmanager/internal/models"
)

type TaskEvent string

const (
	EventTaskCreated TaskEvent = "created"
	EventTaskUpdated TaskEvent = "updated"
	EventTaskDeleted TaskEvent = "deleted"
)

// TaskNotifier is told about task mutations after they are stored.
// Errors are logged by the caller and never fail the request.
type TaskNotifier interface {
	NotifyTask(ctx context.Context, event TaskEvent, t *models.Task) error
}

type nopNotifier struct{}

func (nopNotifier) NotifyTask(context.Context, TaskEvent, *models.Task) error { return nil }

// telegramSender is the part of *tgbotapi.BotAPI the notifier uses.
type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts task activity to a single chat.
type TelegramNotifier struct {
	bot    telegramSender
	chatID int64
}

// NewTelegramNotifier connects to the Bot API (one getMe call).
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) NotifyTask(_ context.Context, event TaskEvent, t *models.Task) error {
	if n == nil || n.chatID == 0 || t == nil {
		return nil
	}
	msg := tgbotapi.NewMessage(n.chatID, formatTaskMessage(event, t))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

var eventTitles = map[TaskEvent]string{
	EventTaskCreated: "📌 New task",
	EventTaskUpdated: "✏️ Task updated",
	EventTaskDeleted: "🗑️ Task deleted",
}

func formatTaskMessage(event TaskEvent, t *models.Task) string {
	due := "none"
	if t.DueDate != nil {
		due = t.DueDate.Format("2006-01-02")
	}
	return eventTitles[event] + "\n" +
		"• <b>" + html.EscapeString(t.Title) + "</b>\n" +
		"• Status: <code>" + string(t.Status) + "</code>\n" +
		"• Priority: <code>" + string(t.Priority) + "</code>\n" +
		"• Due: <code>" + due + "</code>"
}
