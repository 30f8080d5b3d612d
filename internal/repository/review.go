package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
)

var (
	ErrReviewDataNotFound  = errors.New("review data not found")
	ErrMalformedReviewData = errors.New("malformed review data")
)

const reviewFileExt = ".json"

// ReviewRepository stores review data as one JSON file per learner and lesson:
// <dir>/<user id>/<lesson id>.json.
type ReviewRepository struct {
	dir string
	mu  sync.Mutex
}

// NewReviewRepository creates a file-backed review repository rooted at dir.
func NewReviewRepository(dir string) (*ReviewRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create review dir: %w", err)
	}
	return &ReviewRepository{dir: dir}, nil
}

// Load reads review data of a learner for a lesson.
func (r *ReviewRepository) Load(ctx context.Context, userID int64, lessonID string) (*entities.ReviewData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := r.path(userID, lessonID)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrReviewDataNotFound
		}
		return nil, fmt.Errorf("read review data: %w", err)
	}

	var data entities.ReviewData
	if err = json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReviewData, err)
	}
	for _, e := range data.Entries {
		if e.ItemID == "" {
			return nil, fmt.Errorf("%w: entry without item id", ErrMalformedReviewData)
		}
	}

	data.UserID = userID
	data.LessonID = lessonID

	return &data, nil
}

// Save replaces review data of a learner for a lesson.
// The file is written next to its destination and renamed into place.
func (r *ReviewRepository) Save(ctx context.Context, data *entities.ReviewData) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := r.path(data.UserID, data.LessonID)
	if err != nil {
		return err
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal review data: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create user dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".review-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write review data: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync review data: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close review data: %w", err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename review data: %w", err)
	}

	return nil
}

// ListLessonIDs returns ids of lessons the learner has review data for.
func (r *ReviewRepository) ListLessonIDs(ctx context.Context, userID int64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(r.dir, strconv.FormatInt(userID, 10)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list review data: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != reviewFileExt {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, reviewFileExt))
	}
	sort.Strings(ids)

	return ids, nil
}

func (r *ReviewRepository) path(userID int64, lessonID string) (string, error) {
	if lessonID == "" || lessonID != filepath.Base(lessonID) || strings.HasPrefix(lessonID, ".") {
		return "", fmt.Errorf("invalid lesson id %q", lessonID)
	}
	return filepath.Join(r.dir, strconv.FormatInt(userID, 10), lessonID+reviewFileExt), nil
}
