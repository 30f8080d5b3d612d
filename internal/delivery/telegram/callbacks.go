package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/flashcards-bot/internal/repository"
	"github.com/aliskhannn/flashcards-bot/internal/service"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		h.answer(cb, "", false)
		return
	}

	cd := decodeCallback(cb.Data)

	var err error
	switch cd.Action {
	case actionLesson:
		err = h.handleLessonCallback(ctx, cb, cd, false)
	case actionCram:
		err = h.handleLessonCallback(ctx, cb, cd, true)
	case actionShow:
		err = h.handleShowCallback(cb, cd)
	case actionHint:
		err = h.handleHintCallback(cb, cd)
	case actionRate:
		err = h.handleRateCallback(ctx, cb, cd)
	case actionAgain:
		err = h.handleAgainCallback(cb, cd)
	case actionDone:
		err = h.handleDoneCallback(cb, cd)
	default:
		err = fmt.Errorf("%w: unknown action %q", errBadCallback, cd.Action)
	}

	switch {
	case err == nil:
	case errors.Is(err, service.ErrSessionNotFound):
		h.answer(cb, msgSessionExpired, true)
	case errors.Is(err, repository.ErrLessonNotFound):
		h.answer(cb, msgLessonNotFound, true)
	case errors.Is(err, errBadCallback):
		h.logger.Warn("invalid callback", zap.String("data", cb.Data), zap.Error(err))
		h.answer(cb, "", false)
	default:
		h.logger.Error("handle callback error",
			zap.Int64("user_id", cb.From.ID),
			zap.String("data", cb.Data),
			zap.Error(err),
		)
		h.answer(cb, msgInternalError, true)
	}
}

// session returns the chat's active session if its id matches and it belongs
// to the user who pressed the button.
func (h *Handler) session(cb *tgbotapi.CallbackQuery, cd callbackData) (*service.ReviewSession, error) {
	sid, err := cd.param(0)
	if err != nil {
		return nil, err
	}

	s, ok := h.sessions.Get(cb.Message.Chat.ID)
	if !ok || s.ID() != sid || cb.From == nil || s.UserID() != cb.From.ID {
		return nil, service.ErrSessionNotFound
	}
	return s, nil
}

// currentSession is session for buttons bound to a card. ok is false, and the
// callback already answered, when the card is no longer the current one.
func (h *Handler) currentSession(cb *tgbotapi.CallbackQuery, cd callbackData) (s *service.ReviewSession, ok bool, err error) {
	s, err = h.session(cb, cd)
	if err != nil {
		return nil, false, err
	}

	pos, err := cd.position()
	if err != nil {
		return nil, false, err
	}

	if pos != s.Position() {
		h.answer(cb, msgCardNotCurrent, false)
		return nil, false, nil
	}
	return s, true, nil
}

func (h *Handler) handleLessonCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, cd callbackData, forceAll bool) error {
	lessonID, err := cd.param(0)
	if err != nil {
		return err
	}

	if err = h.startSession(ctx, cb.From.ID, cb.Message.Chat.ID, lessonID, forceAll); err != nil {
		return err
	}

	h.answer(cb, "", false)
	return nil
}

// handleShowCallback reveals the answer and the rating keyboard.
func (h *Handler) handleShowCallback(cb *tgbotapi.CallbackQuery, cd callbackData) error {
	s, ok, err := h.currentSession(cb, cd)
	if err != nil || !ok {
		return err
	}

	h.answer(cb, "", false)

	card, ok := s.CurrentCard()
	if !ok {
		return h.showCurrent(cb, s)
	}

	return h.edit(cb, renderAnswer(s, card), buildRatingKeyboard(s.ID(), s.Position()))
}

func (h *Handler) handleHintCallback(cb *tgbotapi.CallbackQuery, cd callbackData) error {
	s, ok, err := h.currentSession(cb, cd)
	if err != nil || !ok {
		return err
	}

	card, ok := s.CurrentCard()
	if !ok || !card.HasHint() {
		h.answer(cb, msgNoHint, false)
		return nil
	}

	h.answer(cb, "💡 "+card.Hint, true)
	return nil
}

// handleRateCallback rates the card the keyboard was built for and moves to
// the next one. A repeated tap or a stale keyboard rates nothing.
func (h *Handler) handleRateCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, cd callbackData) error {
	s, err := h.session(cb, cd)
	if err != nil {
		return err
	}

	pos, err := cd.position()
	if err != nil {
		return err
	}

	q, err := cd.quality()
	if err != nil {
		return err
	}

	err = s.RateCardAt(ctx, pos, q)

	switch {
	case errors.Is(err, service.ErrInvalidQuality):
		h.answer(cb, msgBadQuality, false)
		return nil

	case errors.Is(err, service.ErrCardNotCurrent):
		h.answer(cb, msgAlreadyRated, false)
		return nil

	case err != nil:
		// The rating stays in the session and goes out with the next save.
		h.logger.Error("failed to save review",
			zap.Int64("user_id", s.UserID()),
			zap.String("lesson_id", s.LessonID()),
			zap.Error(err),
		)
		h.answer(cb, msgSaveFailed, true)

	case s.Position() == pos && !s.IsComplete():
		h.answer(cb, msgSaving, false)
		return nil

	default:
		h.answer(cb, "", false)
	}

	return h.showCurrent(cb, s)
}

// handleAgainCallback restarts a session over the same cards.
func (h *Handler) handleAgainCallback(cb *tgbotapi.CallbackQuery, cd callbackData) error {
	s, err := h.session(cb, cd)
	if err != nil {
		return err
	}

	s.Reset()
	h.answer(cb, "", false)
	return h.showCurrent(cb, s)
}

// handleDoneCallback closes a finished session and drops its keyboard.
func (h *Handler) handleDoneCallback(cb *tgbotapi.CallbackQuery, cd callbackData) error {
	s, err := h.session(cb, cd)
	if err != nil {
		return err
	}

	h.sessions.Delete(cb.Message.Chat.ID)
	h.answer(cb, "", false)
	return h.send(newEdit(cb.Message.Chat.ID, cb.Message.MessageID, renderSummary(s)))
}

// showCurrent edits the callback message to show the session's current card
// or its summary when the session is complete.
func (h *Handler) showCurrent(cb *tgbotapi.CallbackQuery, s *service.ReviewSession) error {
	card, ok := s.CurrentCard()
	if !ok {
		return h.edit(cb, renderSummary(s), buildSummaryKeyboard(s.ID(), s.LessonID()))
	}

	return h.edit(cb, renderQuestion(s, card), buildQuestionKeyboard(s.ID(), s.Position(), card))
}

func (h *Handler) edit(cb *tgbotapi.CallbackQuery, text string, kb tgbotapi.InlineKeyboardMarkup) error {
	edit := newEdit(cb.Message.Chat.ID, cb.Message.MessageID, text)
	edit.ReplyMarkup = &kb
	return h.send(edit)
}
