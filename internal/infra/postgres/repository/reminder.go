package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
	"github.com/aliskhannn/flashcards-bot/internal/infra/postgres"
	"github.com/aliskhannn/flashcards-bot/internal/repository"
)

// ReminderRepository provides access to reminder subscriptions in the database.
type ReminderRepository struct {
	db postgres.DBTX
}

// NewReminderRepository creates a new ReminderRepository with the provided database pool.
func NewReminderRepository(db postgres.DBTX) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Subscribe creates or replaces the subscription of a user.
func (r *ReminderRepository) Subscribe(ctx context.Context, sub *entities.ReminderSubscription) error {
	query := `
		INSERT INTO reminder_subscriptions (user_id, chat_id, lesson_id, subscribed_at, last_sent_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			chat_id = EXCLUDED.chat_id,
			lesson_id = EXCLUDED.lesson_id,
			subscribed_at = EXCLUDED.subscribed_at,
			last_sent_at = EXCLUDED.last_sent_at
	`

	_, err := r.db.Exec(ctx, query, sub.UserID, sub.ChatID, sub.LessonID, sub.SubscribedAt, sub.LastSentAt)
	if err != nil {
		return fmt.Errorf("upsert reminder: %w", err)
	}
	return nil
}

// Unsubscribe removes the subscription of a user and reports whether it existed.
func (r *ReminderRepository) Unsubscribe(ctx context.Context, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM reminder_subscriptions WHERE user_id = $1`, userID)
	if err != nil {
		return false, fmt.Errorf("delete reminder: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Get retrieves the subscription of a user.
func (r *ReminderRepository) Get(ctx context.Context, userID int64) (*entities.ReminderSubscription, error) {
	query := `
		SELECT user_id, chat_id, lesson_id, subscribed_at, last_sent_at
		FROM reminder_subscriptions
		WHERE user_id = $1
	`

	sub, err := scanSubscription(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrReminderNotFound
		}
		return nil, fmt.Errorf("get reminder: %w", err)
	}

	return sub, nil
}

// List retrieves all subscriptions ordered by user id.
func (r *ReminderRepository) List(ctx context.Context) ([]*entities.ReminderSubscription, error) {
	query := `
		SELECT user_id, chat_id, lesson_id, subscribed_at, last_sent_at
		FROM reminder_subscriptions
		ORDER BY user_id
	`

	rows, err := r.db.Query(ctx, query)
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
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reminders: %w", err)
	}

	return subs, nil
}

// MarkSent records when the last reminder was sent to a user.
func (r *ReminderRepository) MarkSent(ctx context.Context, userID int64, sentAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE reminder_subscriptions SET last_sent_at = $2 WHERE user_id = $1`,
		userID, sentAt,
	)
	if err != nil {
		return fmt.Errorf("mark reminder as sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrReminderNotFound
	}
	return nil
}

func scanSubscription(row pgx.Row) (*entities.ReminderSubscription, error) {
	var (
		sub      entities.ReminderSubscription
		lastSent pgtype.Timestamptz
	)

	if err := row.Scan(&sub.UserID, &sub.ChatID, &sub.LessonID, &sub.SubscribedAt, &lastSent); err != nil {
		return nil, err
	}

	if lastSent.Valid {
		t := lastSent.Time
		sub.LastSentAt = &t
	}

	return &sub, nil
}
