package entities

import (
	"math"
	"sort"
	"time"
)

// Quality is the learner's self-assessed recall strength for a card.
type Quality int

const (
	QualityBlackout  Quality = 0 // complete blackout
	QualityWrong     Quality = 1 // wrong, but the answer felt familiar
	QualityHardWrong Quality = 2 // wrong, the answer seemed easy to recall
	QualityHard      Quality = 3 // correct with serious difficulty
	QualityGood      Quality = 4 // correct after hesitation
	QualityPerfect   Quality = 5 // immediate recall
)

// Valid reports whether q lies in [0, 5].
func (q Quality) Valid() bool {
	return q >= QualityBlackout && q <= QualityPerfect
}

// Passed reports whether q counts as a successful recall.
func (q Quality) Passed() bool {
	return q >= QualityHard
}

const (
	// DefaultEaseFactor is the ease factor of a card that has never been rated.
	DefaultEaseFactor = 2.5
	// MinEaseFactor keeps intervals from collapsing for hard cards.
	MinEaseFactor = 1.3

	day = 24 * time.Hour
)

// ReviewEntry is the scheduling state of one flashcard.
type ReviewEntry struct {
	ItemID         string    `json:"item_id"`
	Repetitions    int       `json:"repetitions"`      // consecutive successful recalls
	EaseFactor     float64   `json:"ease_factor"`      // never below MinEaseFactor
	Interval       int       `json:"interval"`         // days, at least 1
	LastReviewedAt time.Time `json:"last_reviewed_at"` // time of the last rating
	NextReviewAt   time.Time `json:"next_review_at"`   // LastReviewedAt + Interval days
}

// IsDue reports whether the entry is scheduled at or before now.
func (e ReviewEntry) IsDue(now time.Time) bool {
	return !e.NextReviewAt.After(now)
}

// ReviewData is the persisted review state of a learner for one lesson.
type ReviewData struct {
	UserID   int64         `json:"user_id"`
	LessonID string        `json:"lesson_id"`
	Entries  []ReviewEntry `json:"entries"`
}

// NewReviewData builds review data from an entries map, ordered by item id.
func NewReviewData(userID int64, lessonID string, entries map[string]ReviewEntry) *ReviewData {
	list := make([]ReviewEntry, 0, len(entries))
	for _, e := range entries {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ItemID < list[j].ItemID
	})

	return &ReviewData{
		UserID:   userID,
		LessonID: lessonID,
		Entries:  list,
	}
}

// EntriesByItem indexes entries by item id. A nil receiver yields an empty map.
func (d *ReviewData) EntriesByItem() map[string]ReviewEntry {
	if d == nil {
		return make(map[string]ReviewEntry)
	}

	m := make(map[string]ReviewEntry, len(d.Entries))
	for _, e := range d.Entries {
		m[e.ItemID] = e
	}
	return m
}

// ApplySM2 computes the next review entry of an item from its previous entry and
// a quality rating.
//
// A nil prev is treated as a card that has never been rated. The quality is not
// validated; callers are expected to pass a value in [0, 5].
//
//  1. A failed recall (q < 3) resets repetitions and interval, keeping the ease.
//  2. A successful recall grows the interval (1, 6, then interval * ease), then
//     adjusts the ease and counts the repetition.
func ApplySM2(prev *ReviewEntry, quality Quality, itemID string, now time.Time) ReviewEntry {
	repetitions := 0
	easeFactor := DefaultEaseFactor
	interval := 1
	if prev != nil {
		repetitions = prev.Repetitions
		easeFactor = prev.EaseFactor
		interval = prev.Interval
	}

	if quality < QualityHard {
		repetitions = 0
		interval = 1
	} else {
		switch repetitions {
		case 0:
			interval = 1
		case 1:
			interval = 6
		default:
			interval = int(math.Round(float64(interval) * easeFactor))
		}

		q := float64(QualityPerfect - quality)
		easeFactor = max(MinEaseFactor, easeFactor+0.1-q*(0.08+q*0.02))
		repetitions++
	}

	// Stored entries from older data may carry a zero interval.
	interval = max(1, interval)

	return ReviewEntry{
		ItemID:         itemID,
		Repetitions:    repetitions,
		EaseFactor:     easeFactor,
		Interval:       interval,
		LastReviewedAt: now,
		NextReviewAt:   now.Add(time.Duration(interval) * day),
	}
}

// ReviewStats summarises a learner's progress through a lesson.
type ReviewStats struct {
	LessonID      string
	Total         int // cards in the lesson
	Due           int // cards with an entry due now
	New           int // cards never rated
	ReviewedToday int // cards rated since local midnight
	Mastered      int // cards with an interval above MasteredInterval
	StreakDays    int // consecutive days with at least one review
	TotalReviews  int // sum of current repetitions
	NextDueAt     *time.Time
}

// MasteredInterval is the interval, in days, above which a card counts as mastered.
const MasteredInterval = 30
