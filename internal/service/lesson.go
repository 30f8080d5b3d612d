package service

import (
	"context"

	"github.com/aliskhannn/flashcards-bot/internal/domain/entities"
)

type LessonService struct {
	repository LessonRepository
}

func NewLessonService(repository LessonRepository) *LessonService {
	return &LessonService{repository: repository}
}

func (s *LessonService) GetByID(ctx context.Context, id string) (*entities.Lesson, error) {
	return s.repository.GetByID(ctx, id)
}

func (s *LessonService) GetAll(ctx context.Context) ([]*entities.Lesson, error) {
	return s.repository.GetAll(ctx)
}
