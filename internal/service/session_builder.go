package service

import (
	"sort"
	"time"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
)

// SessionPlan is an ordered set of cards for one review pass.
type SessionPlan struct {
	Cards    []entities.Flashcard
	DueCount int
	NewCount int
}

// IsEmpty reports whether there is nothing to review.
func (p SessionPlan) IsEmpty() bool {
	return len(p.Cards) == 0
}

// BuildSession orders cards for review.
//
// Without forceAll the session holds cards whose entry is due at now, earliest
// first, followed by cards that have never been rated. Cards scheduled after now
// are left out. With forceAll every card is reviewed in its original order.
func BuildSession(cards []entities.Flashcard, data *entities.ReviewData, now time.Time, forceAll bool) SessionPlan {
	if forceAll {
		all := make([]entities.Flashcard, len(cards))
		copy(all, cards)
		return SessionPlan{
			Cards:    all,
			DueCount: 0,
			NewCount: len(cards),
		}
	}

	entries := data.EntriesByItem()

	var (
		due   []entities.Flashcard
		fresh []entities.Flashcard
	)
	for _, c := range cards {
		e, ok := entries[c.ID]
		switch {
		case !ok:
			fresh = append(fresh, c)
		case e.IsDue(now):
			due = append(due, c)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		return entries[due[i].ID].NextReviewAt.Before(entries[due[j].ID].NextReviewAt)
	})

	session := make([]entities.Flashcard, 0, len(due)+len(fresh))
	session = append(session, due...)
	session = append(session, fresh...)

	return SessionPlan{
		Cards:    session,
		DueCount: len(due),
		NewCount: len(fresh),
	}
}
