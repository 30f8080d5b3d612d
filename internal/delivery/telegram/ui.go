package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
)

var ratingLabels = map[entities.Quality]string{
	entities.QualityBlackout:  "0 😶",
	entities.QualityWrong:     "1 ❌",
	entities.QualityHardWrong: "2 🤏",
	entities.QualityHard:      "3 😓",
	entities.QualityGood:      "4 🙂",
	entities.QualityPerfect:   "5 🎯",
}

// buildLessonsKeyboard builds one row per lesson with review and cram buttons.
func buildLessonsKeyboard(lessons []*entities.Lesson) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(lessons))
	for _, l := range lessons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📖 "+l.Title, buildLessonCallback(l.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🔁 All", buildCramCallback(l.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildQuestionKeyboard builds the keyboard shown under the question of the
// card at position.
func buildQuestionKeyboard(sessionID string, position int, card entities.Flashcard) tgbotapi.InlineKeyboardMarkup {
	row := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("👀 Show answer", buildShowCallback(sessionID, position)),
	)
	if card.HasHint() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("💡 Hint", buildHintCallback(sessionID, position)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// buildRatingKeyboard builds the 0-5 rating keyboard of the card at position.
func buildRatingKeyboard(sessionID string, position int) tgbotapi.InlineKeyboardMarkup {
	button := func(q entities.Quality) tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardButtonData(ratingLabels[q], buildRateCallback(sessionID, position, q))
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button(entities.QualityBlackout),
			button(entities.QualityWrong),
			button(entities.QualityHardWrong),
		),
		tgbotapi.NewInlineKeyboardRow(
			button(entities.QualityHard),
			button(entities.QualityGood),
			button(entities.QualityPerfect),
		),
	)
}

// buildSummaryKeyboard builds the keyboard of a finished session.
func buildSummaryKeyboard(sessionID, lessonID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Again", buildAgainCallback(sessionID)),
			tgbotapi.NewInlineKeyboardButtonData("🔁 Cram all", buildCramCallback(lessonID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✔️ Done", buildDoneCallback(sessionID)),
		),
	)
}

// buildReminderKeyboard builds the keyboard attached to a reminder.
func buildReminderKeyboard(lessonID string, due int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("📖 Review %d now", due), buildLessonCallback(lessonID)),
		),
	)
}
