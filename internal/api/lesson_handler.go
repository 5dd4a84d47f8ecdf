package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/microlesson-api/internal/api/shared"
	"github.com/phrazzld/microlesson-api/internal/generation"
	"github.com/phrazzld/microlesson-api/internal/platform/logger"
	"github.com/phrazzld/microlesson-api/internal/service"
)

// LessonHandler serves the lesson endpoints.
type LessonHandler struct {
	lessons service.LessonService
	logger  *slog.Logger
}

// NewLessonHandler creates a LessonHandler.
func NewLessonHandler(lessons service.LessonService, log *slog.Logger) *LessonHandler {
	if lessons == nil {
		// ALLOW-PANIC: constructor enforcing a required dependency
		panic("lesson service cannot be nil for LessonHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &LessonHandler{
		lessons: lessons,
		logger:  log.With(slog.String("component", "lesson_handler")),
	}
}

// Create handles POST /api/lessons. Any failed outcome is answered with
// 422 and the outcome's message.
func (h *LessonHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateLessonRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	result := h.lessons.Create(r.Context(), userID, req.Topic, req.Level)

	switch outcome := result.Outcome.(type) {
	case generation.Succeeded:
		if result.Lesson == nil {
			shared.RespondWithError(w, r, http.StatusUnprocessableEntity, service.MsgSaveFailed)
			return
		}
		shared.RespondWithJSON(w, r, http.StatusCreated, lessonToResponse(result.Lesson))
	case generation.Failed:
		logger.FromContextOrDefault(r.Context(), h.logger).Info("lesson generation failed",
			slog.String("kind", outcome.Kind.String()),
			slog.Int("attempts", outcome.Attempts))
		shared.RespondWithJSON(w, r, http.StatusUnprocessableEntity, shared.ErrorResponse{
			Error:   outcome.Message,
			TraceID: shared.GetTraceID(r.Context()),
		})
	default:
		shared.RespondWithError(w, r, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// List handles GET /api/lessons.
func (h *LessonHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit := queryInt(r, "limit", service.DefaultPageSize)
	switch {
	case limit == 0:
		limit = service.DefaultPageSize
	case limit > service.MaxPageSize:
		limit = service.MaxPageSize
	}
	offset := queryInt(r, "offset", 0)

	lessons, err := h.lessons.List(r.Context(), userID, limit, offset)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to load lessons", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LessonListResponse{
		Lessons: lessonsToResponse(lessons),
		Limit:   limit,
		Offset:  offset,
	})
}

// Get handles GET /api/lessons/{id}.
func (h *LessonHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	lessonID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	lesson, err := h.lessons.Get(r.Context(), userID, lessonID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, lessonToResponse(lesson))
}
