package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/flashcards-bot/internal/repository"
)

const remindOff = "off"

// handleLessons lists lessons with buttons to review or cram each of them.
func (h *Handler) handleLessons() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		return h.sendLessons(ctx, chatID, "")
	}
}

// sendLessons sends the lesson list, optionally preceded by an intro line.
func (h *Handler) sendLessons(ctx context.Context, chatID int64, intro string) error {
	lessons, err := h.lessonService.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("get lessons: %w", err)
	}

	if len(lessons) == 0 {
		return h.send(newMessage(chatID, md(msgNoLessons)))
	}

	text := renderLessons(lessons)
	if intro != "" {
		text = md(intro) + "\n\n" + text
	}

	msg := newMessage(chatID, text)
	msg.ReplyMarkup = buildLessonsKeyboard(lessons)
	return h.send(msg)
}

// handleReview starts a review session. Without a lesson id it asks to pick one.
func (h *Handler) handleReview(userID int64, args string, forceAll bool) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		lessonID := strings.TrimSpace(args)
		if lessonID == "" {
			return h.sendLessons(ctx, chatID, msgUseReview)
		}

		return h.startSession(ctx, userID, chatID, lessonID, forceAll)
	}
}

// startSession builds a session, remembers it for the chat and shows its first card.
func (h *Handler) startSession(ctx context.Context, userID, chatID int64, lessonID string, forceAll bool) error {
	session, err := h.reviewService.StartSession(ctx, userID, lessonID, forceAll)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	card, ok := session.CurrentCard()
	if !ok {
		lesson, err := h.lessonService.GetByID(ctx, lessonID)
		if err != nil {
			return fmt.Errorf("get lesson: %w", err)
		}

		stats, err := h.reviewService.GetStats(ctx, userID, lessonID)
		if err != nil {
			h.logger.Warn("failed to get stats",
				zap.Int64("user_id", userID),
				zap.String("lesson_id", lessonID),
				zap.Error(err),
			)
		}

		// Nothing to review: the previous session of the chat is left behind.
		h.sessions.Delete(chatID)
		return h.send(newMessage(chatID, renderNothingDue(lesson, stats, time.Now())))
	}

	h.sessions.Store(chatID, session)

	msg := newMessage(chatID, renderQuestion(session, card))
	msg.ReplyMarkup = buildQuestionKeyboard(session.ID(), session.Position(), card)
	return h.send(msg)
}

// handleStats shows progress of a lesson.
func (h *Handler) handleStats(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		lessonID := strings.TrimSpace(args)
		if lessonID == "" {
			return h.send(newMessage(chatID, md(msgUseStats)))
		}

		lesson, err := h.lessonService.GetByID(ctx, lessonID)
		if err != nil {
			return fmt.Errorf("get lesson: %w", err)
		}

		stats, err := h.reviewService.GetStats(ctx, userID, lessonID)
		if err != nil {
			return fmt.Errorf("get stats: %w", err)
		}

		return h.send(newMessage(chatID, renderStats(lesson, stats, time.Now())))
	}
}

// handleRemind enables, disables or shows due-card reminders.
func (h *Handler) handleRemind(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		arg := strings.TrimSpace(args)

		switch arg {
		case "":
			sub, err := h.reminderService.Subscription(ctx, userID)
			if errors.Is(err, repository.ErrReminderNotFound) {
				return h.send(newMessage(chatID, md(msgUseRemind)))
			}
			if err != nil {
				return fmt.Errorf("get subscription: %w", err)
			}
			return h.send(newMessage(chatID,
				md(fmt.Sprintf("Reminders are on for %s. %s", sub.LessonID, msgUseRemind))))

		case remindOff:
			removed, err := h.reminderService.Unsubscribe(ctx, userID)
			if err != nil {
				return fmt.Errorf("unsubscribe from reminders: %w", err)
			}
			text := msgRemindersOff
			if !removed {
				text = msgRemindersWereOff
			}
			return h.send(newMessage(chatID, md(text)))
		}

		if err := h.reminderService.Subscribe(ctx, userID, chatID, arg); err != nil {
			return fmt.Errorf("subscribe to reminders: %w", err)
		}

		return h.send(newMessage(chatID,
			md(fmt.Sprintf("⏰ I will remind you when cards of %s are due.", arg))))
	}
}
