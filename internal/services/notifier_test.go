package services

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmanager/internal/models"
)

type fakeBot struct {
	sent []tgbotapi.Chattable
	err  error
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.sent = append(b.sent, c)
	return tgbotapi.Message{}, b.err
}

func TestTelegramNotifier_SendsHTMLMessage(t *testing.T) {
	bot := &fakeBot{}
	n := &TelegramNotifier{bot: bot, chatID: 42}
	due := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)

	err := n.NotifyTask(context.Background(), EventTaskCreated, &models.Task{
		Title: "<b>Ship</b>", Status: models.StatusPending, Priority: models.PriorityHigh, DueDate: &due,
	})
	require.NoError(t, err)
	require.Len(t, bot.sent, 1)

	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.EqualValues(t, 42, msg.ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Contains(t, msg.Text, "New task")
	assert.Contains(t, msg.Text, "&lt;b&gt;Ship&lt;/b&gt;")
	assert.Contains(t, msg.Text, "2030-01-02")
	assert.Contains(t, msg.Text, "high")
}

func TestTelegramNotifier_WrapsSendError(t *testing.T) {
	n := &TelegramNotifier{bot: &fakeBot{err: errors.New("boom")}, chatID: 1}
	err := n.NotifyTask(context.Background(), EventTaskDeleted, &models.Task{Title: "x"})
	assert.ErrorContains(t, err, "telegram send")
}

func TestTelegramNotifier_NoChatIsNoop(t *testing.T) {
	bot := &fakeBot{}
	n := &TelegramNotifier{bot: bot}
	require.NoError(t, n.NotifyTask(context.Background(), EventTaskUpdated, &models.Task{}))
	assert.Empty(t, bot.sent)
}

func TestFormatTaskMessage_NoDueDate(t *testing.T) {
	text := formatTaskMessage(EventTaskUpdated, &models.Task{Title: "x", Status: models.StatusCompleted})
	assert.Contains(t, text, "Task updated")
	assert.Contains(t, text, "Due: <code>none</code>")
}
