package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
)

// SendReminder sends a due-card reminder and deletes the previous one, so a
// chat holds at most one reminder at a time.
func (h *Handler) SendReminder(ctx context.Context, chatID int64, p entities.ReminderPayload) error {
	if err := h.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for rate limiter: %w", err)
	}

	msg := newMessage(chatID, renderReminder(p))
	msg.ReplyMarkup = buildReminderKeyboard(p.LessonID, p.Due)

	sent, err := h.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}

	prev, ok := h.reminderMsgs.UpsertAndGetPrev(p.UserID, chatID, sent.MessageID)
	if !ok || prev.MessageID == sent.MessageID {
		return nil
	}

	if _, err = h.bot.Request(tgbotapi.NewDeleteMessage(prev.ChatID, prev.MessageID)); err != nil {
		h.logger.Debug("failed to delete previous reminder",
			zap.Int64("user_id", p.UserID),
			zap.Int("message_id", prev.MessageID),
			zap.Error(err),
		)
	}

	return nil
}
