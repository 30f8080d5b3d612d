package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
	"github.com/aliskhannn/flashcards-bot/internal/infra/postgres"
	"github.com/aliskhannn/flashcards-bot/internal/repository"
)

const schema = `
	CREATE TABLE IF NOT EXISTS review_entries (
		user_id          BIGINT           NOT NULL,
		lesson_id        TEXT             NOT NULL,
		item_id          TEXT             NOT NULL,
		repetitions      INTEGER          NOT NULL CHECK (repetitions >= 0),
		ease_factor      DOUBLE PRECISION NOT NULL CHECK (ease_factor >= 1.3),
		interval_days    INTEGER          NOT NULL CHECK (interval_days >= 1),
		last_reviewed_at TIMESTAMPTZ      NOT NULL,
		next_review_at   TIMESTAMPTZ      NOT NULL,
		PRIMARY KEY (user_id, lesson_id, item_id)
	);
	CREATE INDEX IF NOT EXISTS review_entries_next_review_idx
		ON review_entries (user_id, lesson_id, next_review_at);
	CREATE TABLE IF NOT EXISTS reminder_subscriptions (
		user_id       BIGINT      PRIMARY KEY,
		chat_id       BIGINT      NOT NULL,
		lesson_id     TEXT        NOT NULL,
		subscribed_at TIMESTAMPTZ NOT NULL,
		last_sent_at  TIMESTAMPTZ
	);
`

// Migrate creates the review and reminder tables if they do not exist.
func Migrate(ctx context.Context, db postgres.DBTX) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// ReviewRepository provides access to review entries in the database.
type ReviewRepository struct {
	db postgres.DBTX
}

// NewReviewRepository creates a new ReviewRepository on a pool or a transaction.
func NewReviewRepository(db postgres.DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Load retrieves all entries of a learner for a lesson.
func (r *ReviewRepository) Load(ctx context.Context, userID int64, lessonID string) (*entities.ReviewData, error) {
	query := `
		SELECT item_id, repetitions, ease_factor, interval_days, last_reviewed_at, next_review_at
		FROM review_entries
		WHERE user_id = $1 AND lesson_id = $2
		ORDER BY item_id
	`

	rows, err := r.db.Query(ctx, query, userID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("query review entries: %w", err)
	}
	defer rows.Close()

	data := &entities.ReviewData{
		UserID:   userID,
		LessonID: lessonID,
	}
	for rows.Next() {
		var e entities.ReviewEntry
		if err = rows.Scan(
			&e.ItemID,
			&e.Repetitions,
			&e.EaseFactor,
			&e.Interval,
			&e.LastReviewedAt,
			&e.NextReviewAt,
		); err != nil {
			return nil, fmt.Errorf("scan review entry: %w", err)
		}
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

// UpsertEntries creates or updates the given entries in one batch.
func (r *ReviewRepository) UpsertEntries(ctx context.Context, data *entities.ReviewData) error {
	if len(data.Entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO review_entries (
			user_id, lesson_id, item_id, repetitions, ease_factor,
			interval_days, last_reviewed_at, next_review_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, lesson_id, item_id) DO UPDATE SET
			repetitions = EXCLUDED.repetitions,
			ease_factor = EXCLUDED.ease_factor,
			interval_days = EXCLUDED.interval_days,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			next_review_at = EXCLUDED.next_review_at
	`

	batch := &pgx.Batch{}
	for _, e := range data.Entries {
		batch.Queue(
			query,
			data.UserID,
			data.LessonID,
			e.ItemID,
			e.Repetitions,
			e.EaseFactor,
			e.Interval,
			e.LastReviewedAt,
			e.NextReviewAt,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	for range data.Entries {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("upsert review entry: %w", err)
		}
	}

	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	return nil
}

// ListLessonIDs returns ids of lessons the learner has entries for.
func (r *ReviewRepository) ListLessonIDs(ctx context.Context, userID int64) ([]string, error) {
	query := `
		SELECT DISTINCT lesson_id
		FROM review_entries
		WHERE user_id = $1
		ORDER BY lesson_id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect lessons: %w", err)
	}

	return ids, nil
}
