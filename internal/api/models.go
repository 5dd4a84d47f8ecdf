package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/microlesson-api/internal/domain"
)

// RegisterRequest is the payload for POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt string    `json:"expires_at"`
}

// CreateLessonRequest is the payload for POST /api/lessons. Topic and level
// are checked by the lesson service so that every rejection uses the same
// 422 body.
type CreateLessonRequest struct {
	Topic string `json:"topic"`
	Level string `json:"level"`
}

// LessonResponse is the public representation of a lesson. Quiz is the
// question list exactly as generated.
type LessonResponse struct {
	ID        uuid.UUID       `json:"id"`
	Topic     string          `json:"topic"`
	Level     domain.Level    `json:"level"`
	Content   string          `json:"content"`
	Quiz      json.RawMessage `json:"quiz,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// LessonListResponse wraps a page of lessons.
type LessonListResponse struct {
	Lessons []LessonResponse `json:"lessons"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

func lessonToResponse(l *domain.Lesson) LessonResponse {
	return LessonResponse{
		ID:        l.ID,
		Topic:     l.Topic,
		Level:     l.Level,
		Content:   l.Content,
		Quiz:      l.Metadata,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func lessonsToResponse(lessons []*domain.Lesson) []LessonResponse {
	out := make([]LessonResponse, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, lessonToResponse(l))
	}
	return out
}
