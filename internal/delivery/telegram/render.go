package telegram

import (
	"fmt"
	"strings"
	"time"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
	"github.com/aliskhannn/flashcards-bot/internal/service"
)

// renderQuestion renders the current card of a session without its answer.
func renderQuestion(s *service.ReviewSession, card entities.Flashcard) string {
	var sb strings.Builder

	sb.WriteString(bold(fmt.Sprintf("📚 %s · %d/%d", s.LessonID(), s.Position()+1, s.Len())))
	if card.Difficulty != "" {
		sb.WriteString(" ")
		sb.WriteString(italic(string(card.Difficulty)))
	}
	sb.WriteString("\n\n")
	sb.WriteString(bold("Q: "))
	sb.WriteString(md(card.Question))

	return sb.String()
}

// renderAnswer renders the current card together with its answer.
func renderAnswer(s *service.ReviewSession, card entities.Flashcard) string {
	return renderQuestion(s, card) + "\n\n" + bold("A: ") + md(card.Answer) +
		"\n\n" + md("How well did you remember it?")
}

// renderSummary renders a finished session.
func renderSummary(s *service.ReviewSession) string {
	lines := []string{
		bold("✅ Session complete"),
		"",
		md(fmt.Sprintf("Reviewed: %d of %d", s.Reviewed(), s.Len())),
	}
	if s.DueCount() > 0 || s.NewCount() > 0 {
		lines = append(lines, md(fmt.Sprintf("Due: %d, new: %d", s.DueCount(), s.NewCount())))
	}
	return strings.Join(lines, "\n")
}

// renderNothingDue renders the reply to a review with no due or new cards.
func renderNothingDue(lesson *entities.Lesson, stats *entities.ReviewStats, now time.Time) string {
	text := md(fmt.Sprintf("🎉 Nothing to review in %q right now.", lesson.Title))
	if stats != nil && stats.NextDueAt != nil {
		text += "\n" + md("Next card is due in "+formatUntil(stats.NextDueAt.Sub(now))+".")
	}
	text += "\n\n" + md(fmt.Sprintf("Use /cram %s to go through every card anyway.", lesson.ID))
	return text
}

// renderLessons renders the lesson list.
func renderLessons(lessons []*entities.Lesson) string {
	var sb strings.Builder
	sb.WriteString(bold("📚 Lessons"))
	sb.WriteString("\n")
	for _, l := range lessons {
		sb.WriteString("\n")
		sb.WriteString(md(fmt.Sprintf("• %s (%s), %d cards", l.Title, l.ID, len(l.Flashcards))))
	}
	return sb.String()
}

// renderStats renders lesson progress.
func renderStats(lesson *entities.Lesson, st *entities.ReviewStats, now time.Time) string {
	learned := st.Total - st.New
	lines := []string{
		bold("📊 " + lesson.Title),
		"",
		md(buildProgressBar(st.Mastered, st.Total, 20)),
		"",
		md(fmt.Sprintf("🃏 Cards: %d", st.Total)),
		md(fmt.Sprintf("📖 Studied: %d", learned)),
		md(fmt.Sprintf("🏆 Mastered: %d", st.Mastered)),
		md(fmt.Sprintf("⏰ Due now: %d", st.Due)),
		md(fmt.Sprintf("🆕 New: %d", st.New)),
		md(fmt.Sprintf("✅ Reviewed today: %d", st.ReviewedToday)),
		md(fmt.Sprintf("🔥 Streak: %d days", st.StreakDays)),
	}
	if st.NextDueAt != nil {
		lines = append(lines, md("⏭ Next due in "+formatUntil(st.NextDueAt.Sub(now))))
	}
	return strings.Join(lines, "\n")
}

// renderReminder renders a reminder notification.
func renderReminder(p entities.ReminderPayload) string {
	text := bold("⏰ Time to review") + "\n\n" +
		md(fmt.Sprintf("%d cards of %q are due.", p.Due, p.LessonTitle))
	if p.New > 0 {
		text += "\n" + md(fmt.Sprintf("%d new cards are waiting too.", p.New))
	}
	return text
}

func buildProgressBar(done, total, width int) string {
	if total <= 0 {
		return strings.Repeat("░", width)
	}
	filled := done * width / total
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// formatUntil formats a positive duration with day and hour precision.
func formatUntil(d time.Duration) string {
	if d < time.Minute {
		return "less than a minute"
	}
	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	minutes := int(d % time.Hour / time.Minute)

	switch {
	case days > 0 && hours > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case days > 0:
		return fmt.Sprintf("%dd", days)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
