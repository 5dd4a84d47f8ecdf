package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/microlesson-api/internal/domain"
	"github.com/phrazzld/microlesson-api/internal/generation"
	"github.com/phrazzld/microlesson-api/internal/platform/logger"
	"github.com/phrazzld/microlesson-api/internal/redact"
	"github.com/phrazzld/microlesson-api/internal/store"
)

// Pagination bounds for List.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// LessonGenerator produces a lesson document for a raw topic and level.
// *generation.Generator satisfies it.
type LessonGenerator interface {
	Generate(ctx context.Context, topic, level string) generation.Outcome
}

// CreateResult is the outcome of LessonService.Create. Lesson is the saved
// record when Outcome is generation.Succeeded and nil otherwise.
type CreateResult struct {
	Lesson  *domain.Lesson
	Outcome generation.Outcome
}

// Succeeded reports whether the lesson was generated and saved.
func (r CreateResult) Succeeded() bool {
	_, ok := r.Outcome.(generation.Succeeded)
	return ok && r.Lesson != nil
}

// LessonService manages generated lessons.
type LessonService interface {
	// Create validates the request, generates content and saves the lesson.
	// Every failure is reported through the returned result's Outcome.
	Create(ctx context.Context, userID uuid.UUID, topic, level string) CreateResult

	// List returns the user's lessons, newest first.
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Lesson, error)

	// Get returns one lesson if userID owns it.
	// Returns store.ErrLessonNotFound or ErrNotOwned otherwise.
	Get(ctx context.Context, userID, lessonID uuid.UUID) (*domain.Lesson, error)
}

type lessonServiceImpl struct {
	lessons   store.LessonStore
	generator LessonGenerator
	logger    *slog.Logger
}

var _ LessonService = (*lessonServiceImpl)(nil)

// NewLessonService creates a LessonService.
func NewLessonService(lessons store.LessonStore, generator LessonGenerator, log *slog.Logger) (LessonService, error) {
	if lessons == nil {
		return nil, errors.New("lesson store cannot be nil")
	}
	if generator == nil {
		return nil, errors.New("lesson generator cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &lessonServiceImpl{
		lessons:   lessons,
		generator: generator,
		logger:    log.With(slog.String("component", "lesson_service")),
	}, nil
}

// Create implements LessonService. The topic is stored as submitted; the
// generator sanitizes its own copy for the prompt.
func (s *lessonServiceImpl) Create(ctx context.Context, userID uuid.UUID, topic, level string) CreateResult {
	log := logger.FromContextOrDefault(ctx, s.logger)

	lesson := domain.NewLesson(userID, topic, domain.Level(strings.ToLower(strings.TrimSpace(level))))
	if err := lesson.Validate(); err != nil {
		log.Info("lesson request rejected", slog.String("error", err.Error()))
		return failedResult(generation.KindValidation, validationMessage(err), 0)
	}

	outcome := s.generator.Generate(ctx, lesson.Topic, string(lesson.Level))
	doc, ok := outcome.(generation.Succeeded)
	if !ok {
		return CreateResult{Outcome: outcome}
	}

	lesson.Content = doc.Document.Lesson
	lesson.Metadata = doc.Document.Quiz

	if err := s.lessons.Create(ctx, lesson); err != nil {
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) {
			log.Warn("generated lesson failed validation",
				slog.String("lesson_id", lesson.ID.String()),
				slog.String("error", verrs.Error()))
			return failedResult(generation.KindPersistence, domain.ToSentence(verrs.Messages()), doc.Attempts)
		}
		log.Error("failed to save lesson",
			slog.String("lesson_id", lesson.ID.String()),
			redact.ErrorAttr(err))
		return failedResult(generation.KindPersistence, MsgSaveFailed, doc.Attempts)
	}

	log.Info("lesson generated",
		slog.String("lesson_id", lesson.ID.String()),
		slog.Int("attempts", doc.Attempts))
	return CreateResult{Lesson: lesson, Outcome: outcome}
}

// List implements LessonService.
func (s *lessonServiceImpl) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Lesson, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.lessons.ListByUser(ctx, userID, limit, offset)
}

// Get implements LessonService.
func (s *lessonServiceImpl) Get(ctx context.Context, userID, lessonID uuid.UUID) (*domain.Lesson, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.UserID != userID {
		logger.FromContextOrDefault(ctx, s.logger).Warn("lesson access denied",
			slog.String("lesson_id", lessonID.String()),
			slog.String("user_id", userID.String()))
		return nil, ErrNotOwned
	}
	return lesson, nil
}

func failedResult(kind generation.FailureKind, message string, attempts int) CreateResult {
	return CreateResult{Outcome: generation.Failed{Kind: kind, Message: message, Attempts: attempts}}
}

func validationMessage(err error) string {
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		return domain.ToSentence(verrs.Messages())
	}
	return err.Error()
}
