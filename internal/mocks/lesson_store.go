package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/microlesson-api/internal/domain"
	"github.com/phrazzld/microlesson-api/internal/store"
)

// MockLessonStore implements store.LessonStore in memory. Function fields
// override the default behavior.
type MockLessonStore struct {
	CreateFn     func(ctx context.Context, lesson *domain.Lesson) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.Lesson, error)
	ListByUserFn func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Lesson, error)

	mu      sync.Mutex
	lessons []*domain.Lesson

	// CreateCalls counts Create invocations, including failed ones.
	CreateCalls int
}

var _ store.LessonStore = (*MockLessonStore)(nil)

// Create implements store.LessonStore. Without CreateFn it validates the
// lesson and keeps it in memory.
func (m *MockLessonStore) Create(ctx context.Context, lesson *domain.Lesson) error {
	m.mu.Lock()
	m.CreateCalls++
	m.mu.Unlock()

	if m.CreateFn != nil {
		return m.CreateFn(ctx, lesson)
	}
	if err := lesson.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lessons = append(m.lessons, lesson)
	return nil
}

// GetByID implements store.LessonStore.
func (m *MockLessonStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lesson, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.lessons {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, store.ErrLessonNotFound
}

// ListByUser implements store.LessonStore. Stored lessons are returned most
// recently created first.
func (m *MockLessonStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Lesson, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID, limit, offset)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Lesson, 0)
	for i := len(m.lessons) - 1; i >= 0; i-- {
		if m.lessons[i].UserID == userID {
			out = append(out, m.lessons[i])
		}
	}
	if offset >= len(out) {
		return []*domain.Lesson{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// Saved returns a copy of the stored lessons in insertion order.
func (m *MockLessonStore) Saved() []*domain.Lesson {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Lesson(nil), m.lessons...)
}
