package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
	"github.com/aliskhannn/flashcards-bot/internal/repository"
)

const schema = `
	CREATE TABLE IF NOT EXISTS review_entries (
		user_id          INTEGER NOT NULL,
		lesson_id        TEXT    NOT NULL,
		item_id          TEXT    NOT NULL,
		repetitions      INTEGER NOT NULL,
		ease_factor      REAL    NOT NULL,
		interval_days    INTEGER NOT NULL,
		last_reviewed_at INTEGER NOT NULL,
		next_review_at   INTEGER NOT NULL,
		PRIMARY KEY (user_id, lesson_id, item_id)
	);
`

// ReviewRepository stores review entries in SQLite. Timestamps are kept as
// unix milliseconds.
type ReviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates the schema if needed and returns the repository.
func NewReviewRepository(ctx context.Context, db *sql.DB) (*ReviewRepository, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("migrate review_entries: %w", err)
	}
	return &ReviewRepository{db: db}, nil
}

// Load retrieves all entries of a learner for a lesson.
func (r *ReviewRepository) Load(ctx context.Context, userID int64, lessonID string) (*entities.ReviewData, error) {
	query := `
		SELECT item_id, repetitions, ease_factor, interval_days, last_reviewed_at, next_review_at
		FROM review_entries
		WHERE user_id = ? AND lesson_id = ?
		ORDER BY item_id
	`

	rows, err := r.db.QueryContext(ctx, query, userID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("query review entries: %w", err)
	}
	defer rows.Close()

	data := &entities.ReviewData{
		UserID:   userID,
		LessonID: lessonID,
	}
	for rows.Next() {
		var (
			e          entities.ReviewEntry
			lastMillis int64
			nextMillis int64
		)
		if err = rows.Scan(&e.ItemID, &e.Repetitions, &e.EaseFactor, &e.Interval, &lastMillis, &nextMillis); err != nil {
			return nil, fmt.Errorf("scan review entry: %w", err)
		}
		e.LastReviewedAt = time.UnixMilli(lastMillis).UTC()
		e.NextReviewAt = time.UnixMilli(nextMillis).UTC()
		data.Entries = append(data.Entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review entries: %w", err)
	}

	if len(data.Entries) == 0 {
		return nil, repository.ErrReviewDataNotFound
	}

	return data, nil
}

// Save upserts every entry of data inside a single transaction.
func (r *ReviewRepository) Save(ctx context.Context, data *entities.ReviewData) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO review_entries (
			user_id, lesson_id, item_id, repetitions, ease_factor,
			interval_days, last_reviewed_at, next_review_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, lesson_id, item_id) DO UPDATE SET
			repetitions = excluded.repetitions,
			ease_factor = excluded.ease_factor,
			interval_days = excluded.interval_days,
			last_reviewed_at = excluded.last_reviewed_at,
			next_review_at = excluded.next_review_at
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, e := range data.Entries {
		if _, err = stmt.ExecContext(
			ctx,
			data.UserID,
			data.LessonID,
			e.ItemID,
			e.Repetitions,
			e.EaseFactor,
			e.Interval,
			e.LastReviewedAt.UnixMilli(),
			e.NextReviewAt.UnixMilli(),
		); err != nil {
			return fmt.Errorf("upsert review entry: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// ListLessonIDs returns ids of lessons the learner has entries for.
func (r *ReviewRepository) ListLessonIDs(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT lesson_id FROM review_entries WHERE user_id = ? ORDER BY lesson_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan lesson id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
