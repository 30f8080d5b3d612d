package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
	"github.com/aliskhannn/flashcards-bot/internal/infra/postgres"
)

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

// ReviewStore persists whole review data snapshots atomically.
type ReviewStore struct {
	*ReviewRepository
	tr Transactor
}

// NewReviewStore creates a store that reads through db and writes in transactions.
func NewReviewStore(db postgres.DBTX, tr Transactor) *ReviewStore {
	return &ReviewStore{
		ReviewRepository: NewReviewRepository(db),
		tr:               tr,
	}
}

// Save upserts every entry of data inside a single transaction.
func (s *ReviewStore) Save(ctx context.Context, data *entities.ReviewData) error {
	return s.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return NewReviewRepository(tx).UpsertEntries(ctx, data)
	})
}
