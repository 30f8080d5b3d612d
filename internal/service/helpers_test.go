package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
	"github.com/aliskhannn/flashcards-bot/internal/repository"
)

// memReviewRepo is an in-memory ReviewRepository double.
type memReviewRepo struct {
	mu      sync.Mutex
	data    map[string]*entities.ReviewData
	saves   int
	last    *entities.ReviewData
	saveErr error
	loadErr error

	// When block is set, Save waits for it to close or for ctx to end.
	block   chan struct{}
	started chan struct{}
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{data: make(map[string]*entities.ReviewData)}
}

func repoKey(userID int64, lessonID string) string {
	return fmt.Sprintf("%d/%s", userID, lessonID)
}

func (r *memReviewRepo) Load(_ context.Context, userID int64, lessonID string) (*entities.ReviewData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loadErr != nil {
		return nil, r.loadErr
	}
	d, ok := r.data[repoKey(userID, lessonID)]
	if !ok {
		return nil, repository.ErrReviewDataNotFound
	}
	cp := *d
	cp.Entries = append([]entities.ReviewEntry(nil), d.Entries...)
	return &cp, nil
}

func (r *memReviewRepo) Save(ctx context.Context, data *entities.ReviewData) error {
	r.mu.Lock()
	r.saves++
	block, started := r.block, r.started
	r.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.last = data
	r.data[repoKey(data.UserID, data.LessonID)] = data
	return nil
}

func (r *memReviewRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func (r *memReviewRepo) lastSaved() *entities.ReviewData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func newLessonRepo(lessons ...*entities.Lesson) *repository.LessonRepository {
	repo, err := repository.NewLessonRepositoryFrom(lessons)
	if err != nil {
		panic(err)
	}
	return repo
}
