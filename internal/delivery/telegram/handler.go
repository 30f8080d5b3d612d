package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Handler struct {
	bot             Bot
	logger          *zap.Logger
	lessonService   LessonService
	reviewService   ReviewService
	reminderService ReminderService
	sessions        SessionStorage
	reminderMsgs    ReminderMessageStore
	limiter         *rate.Limiter
}

func NewHandler(
	bot Bot,
	logger *zap.Logger,
	lessonService LessonService,
	reviewService ReviewService,
	reminderService ReminderService,
	sessions SessionStorage,
	reminderMsgs ReminderMessageStore,
	remindersPerSecond float64,
) *Handler {
	return &Handler{
		bot:             bot,
		logger:          logger,
		lessonService:   lessonService,
		reviewService:   reviewService,
		reminderService: reminderService,
		sessions:        sessions,
		reminderMsgs:    reminderMsgs,
		limiter:         rate.NewLimiter(rate.Limit(remindersPerSecond), 1),
	}
}

// Commands lists the bot commands shown in the Telegram menu.
func Commands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "Start the bot"},
		{Command: "lessons", Description: "List lessons"},
		{Command: "review", Description: "Review due cards (usage: /review <lesson>)"},
		{Command: "cram", Description: "Review every card of a lesson"},
		{Command: "stats", Description: "Show lesson progress"},
		{Command: "remind", Description: "Remind me about due cards (/remind <lesson> or /remind off)"},
		{Command: "help", Description: "Help"},
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)
	defer h.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	if !update.Message.IsCommand() {
		_ = h.send(newMessage(chatID, md(msgUseCommands)))
		return
	}

	args := update.Message.CommandArguments()

	switch update.Message.Command() {
	case "start":
		_ = h.send(newMessage(chatID, welcomeText()))

	case "help":
		_ = h.send(newMessage(chatID, helpText()))

	case "lessons":
		_ = h.withErrorHandling(h.handleLessons())(ctx, chatID)

	case "review":
		_ = h.withErrorHandling(h.handleReview(userID, args, false))(ctx, chatID)

	case "cram":
		_ = h.withErrorHandling(h.handleReview(userID, args, true))(ctx, chatID)

	case "stats":
		_ = h.withErrorHandling(h.handleStats(userID, args))(ctx, chatID)

	case "remind":
		_ = h.withErrorHandling(h.handleRemind(userID, args))(ctx, chatID)

	default:
		_ = h.send(newMessage(chatID, md(msgUnknownCommand)))
	}
}

func (h *Handler) sendError(chatID int64, text string) {
	_ = h.send(newMessage(chatID, md(text)))
}

func (h *Handler) send(c tgbotapi.Chattable) error {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
		return err
	}
	return nil
}

// answer removes the loading indicator of a callback, optionally showing text.
func (h *Handler) answer(cb *tgbotapi.CallbackQuery, text string, alert bool) {
	cfg := tgbotapi.NewCallback(cb.ID, text)
	cfg.ShowAlert = alert
	if _, err := h.bot.Request(cfg); err != nil {
		h.logger.Warn("callback answer error", zap.Error(err))
	}
}
