package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/microlesson-api/internal/domain"
	"github.com/phrazzld/microlesson-api/internal/platform/logger"
	"github.com/phrazzld/microlesson-api/internal/redact"
	"github.com/phrazzld/microlesson-api/internal/store"
)

const lessonColumns = `id, user_id, topic, level, content, metadata, created_at, updated_at`

// PostgresLessonStore implements store.LessonStore.
type PostgresLessonStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.LessonStore = (*PostgresLessonStore)(nil)

// NewPostgresLessonStore creates a lesson store over db, which may be a
// *sql.DB or a *sql.Tx. A nil logger falls back to slog.Default().
func NewPostgresLessonStore(db store.DBTX, log *slog.Logger) *PostgresLessonStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresLessonStore{
		db:     db,
		logger: log.With(slog.String("component", "lesson_store")),
	}
}

// Create implements store.LessonStore.Create. Constraint violations the
// database reports are returned as domain.ValidationErrors so callers see
// the same shape as a failed Validate.
func (s *PostgresLessonStore) Create(ctx context.Context, lesson *domain.Lesson) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := lesson.Validate(); err != nil {
		log.Warn("lesson validation failed during create",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lesson.ID.String()))
		return err
	}

	now := time.Now().UTC()
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = now
	}
	lesson.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lessons (`+lessonColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		lesson.ID,
		lesson.UserID,
		lesson.Topic,
		string(lesson.Level),
		lesson.Content,
		nullableJSON(lesson.Metadata),
		lesson.CreatedAt,
		lesson.UpdatedAt,
	)
	if err != nil {
		switch {
		case IsForeignKeyViolation(err):
			log.Warn("lesson owner does not exist",
				slog.String("lesson_id", lesson.ID.String()),
				slog.String("user_id", lesson.UserID.String()))
			return domain.ValidationErrors{
				domain.NewValidationError("user", "must exist", err),
			}
		case IsCheckConstraintViolation(err):
			return domain.ValidationErrors{
				domain.NewValidationError("level", "is not included in the list", err),
			}
		}

		log.Error("failed to create lesson",
			redact.ErrorAttr(err),
			slog.String("lesson_id", lesson.ID.String()))
		return store.NewStoreError("lesson", "create", "insert failed", MapError(err))
	}

	log.Info("lesson created",
		slog.String("lesson_id", lesson.ID.String()),
		slog.String("user_id", lesson.UserID.String()),
		slog.String("level", string(lesson.Level)))
	return nil
}

// GetByID implements store.LessonStore.GetByID.
func (s *PostgresLessonStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lesson, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE id = $1`, id)
	lesson, err := scanLesson(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("lesson not found", slog.String("lesson_id", id.String()))
			return nil, store.ErrLessonNotFound
		}
		log.Error("failed to get lesson",
			redact.ErrorAttr(err),
			slog.String("lesson_id", id.String()))
		return nil, store.NewStoreError("lesson", "get", "query failed", err)
	}
	return lesson, nil
}

// ListByUser implements store.LessonStore.ListByUser.
func (s *PostgresLessonStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Lesson, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+lessonColumns+`
		FROM lessons
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		log.Error("failed to list lessons",
			redact.ErrorAttr(err),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("lesson", "list", "query failed", err)
	}
	defer func() { _ = rows.Close() }()

	lessons := make([]*domain.Lesson, 0)
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, store.NewStoreError("lesson", "list", "scan failed", err)
		}
		lessons = append(lessons, lesson)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("lesson", "list", "iteration failed", err)
	}

	log.Debug("lessons listed",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(lessons)))
	return lessons, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLesson(row rowScanner) (*domain.Lesson, error) {
	var (
		lesson   domain.Lesson
		level    string
		metadata []byte
	)
	if err := row.Scan(
		&lesson.ID,
		&lesson.UserID,
		&lesson.Topic,
		&level,
		&lesson.Content,
		&metadata,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	); err != nil {
		return nil, err
	}
	lesson.Level = domain.Level(level)
	if len(metadata) > 0 {
		lesson.Metadata = json.RawMessage(metadata)
	}
	return &lesson, nil
}

// nullableJSON maps empty metadata to SQL NULL.
func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
