package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
)

var (
	ErrLessonNotFound = errors.New("lesson not found")
	ErrInvalidLesson  = errors.New("invalid lesson")
)

// LessonRepository provides read-only access to lessons stored as JSON files.
// Lessons are loaded once; edits on disk are picked up on the next start.
type LessonRepository struct {
	lessons []*entities.Lesson
	byID    map[string]*entities.Lesson
}

// NewLessonRepository loads every *.json file in dir as a lesson.
func NewLessonRepository(dir string) (*LessonRepository, error) {
	lessons, err := loadLessons(dir)
	if err != nil {
		return nil, err
	}

	return NewLessonRepositoryFrom(lessons)
}

// NewLessonRepositoryFrom builds a repository from already decoded lessons.
func NewLessonRepositoryFrom(lessons []*entities.Lesson) (*LessonRepository, error) {
	byID := make(map[string]*entities.Lesson, len(lessons))
	for _, l := range lessons {
		if err := validateLesson(l); err != nil {
			return nil, err
		}
		if _, ok := byID[l.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate lesson id %q", ErrInvalidLesson, l.ID)
		}
		byID[l.ID] = l
	}

	sorted := make([]*entities.Lesson, len(lessons))
	copy(sorted, lessons)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CourseID != sorted[j].CourseID {
			return sorted[i].CourseID < sorted[j].CourseID
		}
		return sorted[i].Title < sorted[j].Title
	})

	return &LessonRepository{
		lessons: sorted,
		byID:    byID,
	}, nil
}

// GetByID retrieves a lesson by its id.
func (r *LessonRepository) GetByID(_ context.Context, id string) (*entities.Lesson, error) {
	l, ok := r.byID[id]
	if !ok {
		return nil, ErrLessonNotFound
	}
	return l, nil
}

// GetAll retrieves all lessons ordered by course and title.
func (r *LessonRepository) GetAll(_ context.Context) ([]*entities.Lesson, error) {
	return r.lessons, nil
}

func loadLessons(dir string) ([]*entities.Lesson, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}

	lessons := make([]*entities.Lesson, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read lesson %s: %w", path, err)
		}

		var l entities.Lesson
		if err = json.Unmarshal(data, &l); err != nil {
			return nil, fmt.Errorf("failed to unmarshal lesson %s: %w", path, err)
		}
		lessons = append(lessons, &l)
	}

	return lessons, nil
}

func validateLesson(l *entities.Lesson) error {
	if l.ID == "" {
		return fmt.Errorf("%w: empty lesson id", ErrInvalidLesson)
	}

	seen := make(map[string]struct{}, len(l.Flashcards))
	for i, c := range l.Flashcards {
		if c.ID == "" {
			return fmt.Errorf("%w: lesson %q card %d has no id", ErrInvalidLesson, l.ID, i)
		}
		if _, ok := seen[c.ID]; ok {
			return fmt.Errorf("%w: lesson %q has duplicate card id %q", ErrInvalidLesson, l.ID, c.ID)
		}
		seen[c.ID] = struct{}{}
	}

	return nil
}
