package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/microlesson-api/internal/domain"
)

// LessonStore persists generated lessons.
type LessonStore interface {
	// Create validates and inserts lesson, filling in its timestamps.
	// Returns domain.ValidationErrors if the lesson is invalid.
	Create(ctx context.Context, lesson *domain.Lesson) error

	// GetByID returns the lesson with id.
	// Returns ErrLessonNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Lesson, error)

	// ListByUser returns the user's lessons, newest first, at most limit rows
	// after skipping offset.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Lesson, error)
}
