package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
	"github.com/aliskhannn/flashcards-bot/internal/repository"
)

const reminderSchema = `
	CREATE TABLE IF NOT EXISTS reminder_subscriptions (
		user_id       INTEGER PRIMARY KEY,
		chat_id       INTEGER NOT NULL,
		lesson_id     TEXT    NOT NULL,
		subscribed_at INTEGER NOT NULL,
		last_sent_at  INTEGER
	);
`

// ReminderRepository stores reminder subscriptions in SQLite. Timestamps are
// kept as unix milliseconds.
type ReminderRepository struct {
	db *sql.DB
}

// NewReminderRepository creates the schema if needed and returns the repository.
func NewReminderRepository(ctx context.Context, db *sql.DB) (*ReminderRepository, error) {
	if _, err := db.ExecContext(ctx, reminderSchema); err != nil {
		return nil, fmt.Errorf("migrate reminder_subscriptions: %w", err)
	}
	return &ReminderRepository{db: db}, nil
}

// Subscribe creates or replaces the subscription of a user.
func (r *ReminderRepository) Subscribe(ctx context.Context, sub *entities.ReminderSubscription) error {
	var lastSent sql.NullInt64
	if sub.LastSentAt != nil {
		lastSent = sql.NullInt64{Int64: sub.LastSentAt.UnixMilli(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reminder_subscriptions (user_id, chat_id, lesson_id, subscribed_at, last_sent_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			chat_id = excluded.chat_id,
			lesson_id = excluded.lesson_id,
			subscribed_at = excluded.subscribed_at,
			last_sent_at = excluded.last_sent_at
	`, sub.UserID, sub.ChatID, sub.LessonID, sub.SubscribedAt.UnixMilli(), lastSent)
	if err != nil {
		return fmt.Errorf("upsert reminder: %w", err)
	}
	return nil
}

// Unsubscribe removes the subscription of a user and reports whether it existed.
func (r *ReminderRepository) Unsubscribe(ctx context.Context, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminder_subscriptions WHERE user_id = ?`, userID)
	if err != nil {
		return false, fmt.Errorf("delete reminder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Get retrieves the subscription of a user.
func (r *ReminderRepository) Get(ctx context.Context, userID int64) (*entities.ReminderSubscription, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, chat_id, lesson_id, subscribed_at, last_sent_at
		FROM reminder_subscriptions
		WHERE user_id = ?
	`, userID)

	sub, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrReminderNotFound
		}
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return sub, nil
}

// List retrieves all subscriptions ordered by user id.
func (r *ReminderRepository) List(ctx context.Context) ([]*entities.ReminderSubscription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, chat_id, lesson_id, subscribed_at, last_sent_at
		FROM reminder_subscriptions
		ORDER BY user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query reminders: %w", err)
	}
	defer rows.Close()

	var subs []*entities.ReminderSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}

// MarkSent records when the last reminder was sent to a user.
func (r *ReminderRepository) MarkSent(ctx context.Context, userID int64, sentAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reminder_subscriptions SET last_sent_at = ? WHERE user_id = ?`,
		sentAt.UnixMilli(), userID,
	)
	if err != nil {
		return fmt.Errorf("mark reminder as sent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrReminderNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row scanner) (*entities.ReminderSubscription, error) {
	var (
		sub          entities.ReminderSubscription
		subscribedAt int64
		lastSent     sql.NullInt64
	)

	if err := row.Scan(&sub.UserID, &sub.ChatID, &sub.LessonID, &subscribedAt, &lastSent); err != nil {
		return nil, err
	}

	sub.SubscribedAt = time.UnixMilli(subscribedAt).UTC()
	if lastSent.Valid {
		t := time.UnixMilli(lastSent.Int64).UTC()
		sub.LastSentAt = &t
	}

	return &sub, nil
}
