// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Plain texts, escaped with md before sending.
const (
	msgUseCommands      = "Use /lessons to pick a lesson or /help for the list of commands."
	msgUnknownCommand   = "Unknown command. Use /help to see what I can do."
	msgInternalError    = "Something went wrong. Please try again later."
	msgLessonNotFound   = "Lesson not found. Use /lessons to see the available ones."
	msgNoLessons        = "No lessons are available yet."
	msgUseReview        = "Pick a lesson to review:"
	msgUseStats         = "Usage: /stats <lesson>"
	msgUseRemind        = "Usage: /remind <lesson> or /remind off"
	msgRemindersOff     = "Reminders are off."
	msgRemindersWereOff = "Reminders were not enabled."
	msgSessionExpired   = "This session has expired. Start a new one with /review."
	msgSaving           = "Saving your previous answer..."
	msgBadQuality       = "Unknown rating."
	msgSaveFailed       = "Your last rating could not be saved. It will be saved with the next one."
	msgNoHint           = "No hint for this card."
	msgAlreadyRated     = "Already rated."
	msgCardNotCurrent   = "This card is no longer current."
)

// md escapes plain text for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

func italic(s string) string {
	return "_" + md(s) + "_"
}

// newMessage creates a message with MarkdownV2 parse mode.
func newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return msg
}

// newEdit creates an edit with MarkdownV2 parse mode.
func newEdit(chatID int64, msgID int, text string) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	return edit
}

func welcomeText() string {
	var sb strings.Builder

	sb.WriteString(bold("Flashcards Bot"))
	sb.WriteString("\n\n")
	sb.WriteString(md("I schedule your flashcards with spaced repetition. "))
	sb.WriteString(md("Cards you know come back rarely, cards you struggle with come back soon."))
	sb.WriteString("\n\n")
	sb.WriteString(md("Open /lessons to begin."))

	return sb.String()
}

func helpText() string {
	lines := []string{
		bold("Commands"),
		"",
		md("/lessons - list lessons"),
		md("/review <lesson> - review cards that are due"),
		md("/cram <lesson> - review every card of a lesson"),
		md("/stats <lesson> - progress of a lesson"),
		md("/remind <lesson> - remind me when cards are due"),
		md("/remind off - stop reminders"),
		"",
		bold("Ratings"),
		"",
		md("0 blackout, 1 wrong, 2 wrong but familiar"),
		md("3 hard, 4 good, 5 perfect"),
	}
	return strings.Join(lines, "\n")
}
