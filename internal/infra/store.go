// Package infra opens the review and reminder stores selected in configuration.
package infra

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/flashcards-bot/internal/config"
	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
	"github.com/aliskhannn/flashcards-bot/internal/infra/postgres"
	pgrepo "github.com/aliskhannn/flashcards-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/flashcards-bot/internal/infra/sqlite"
	"github.com/aliskhannn/flashcards-bot/internal/repository"
	"github.com/aliskhannn/flashcards-bot/internal/storage"
)

// ReviewStore is implemented by every review data backend.
type ReviewStore interface {
	Load(ctx context.Context, userID int64, lessonID string) (*entities.ReviewData, error)
	Save(ctx context.Context, data *entities.ReviewData) error
	ListLessonIDs(ctx context.Context, userID int64) ([]string, error)
}

// ReminderStore is implemented by every reminder subscription backend.
type ReminderStore interface {
	Subscribe(ctx context.Context, sub *entities.ReminderSubscription) error
	Unsubscribe(ctx context.Context, userID int64) (bool, error)
	Get(ctx context.Context, userID int64) (*entities.ReminderSubscription, error)
	List(ctx context.Context) ([]*entities.ReminderSubscription, error)
	MarkSent(ctx context.Context, userID int64, sentAt time.Time) error
}

// Stores groups the backends of one storage driver.
type Stores struct {
	Reviews   ReviewStore
	Reminders ReminderStore
}

// Open opens the configured stores. The returned func releases them.
// The file driver keeps reminder subscriptions in memory only.
func Open(ctx context.Context, cfg config.Storage, logger *zap.Logger) (*Stores, func(), error) {
	switch cfg.Driver {
	case config.DriverFile:
		reviews, err := repository.NewReviewRepository(cfg.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open file store: %w", err)
		}
		logger.Info("using file review store", zap.String("dir", cfg.Dir))
		return &Stores{Reviews: reviews, Reminders: storage.NewReminderStorage()}, func() {}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		reviews, err := sqlite.NewReviewRepository(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		reminders, err := sqlite.NewReminderRepository(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Info("using sqlite store", zap.String("path", cfg.SQLitePath))
		return &Stores{Reviews: reviews, Reminders: reminders}, func() { _ = db.Close() }, nil

	case config.DriverPostgres:
		dsn, err := cfg.DSN()
		if err != nil {
			return nil, nil, err
		}
		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.MaxConnections),
			MaxConnLifetime: cfg.MaxConnLifetime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err = pgrepo.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		logger.Info("using postgres store")
		return &Stores{
			Reviews:   pgrepo.NewReviewStore(pool, postgres.NewTransactor(pool)),
			Reminders: pgrepo.NewReminderRepository(pool),
		}, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownStorageDriver, cfg.Driver)
	}
}
