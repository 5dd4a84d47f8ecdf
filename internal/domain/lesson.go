package domain

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Level is the proficiency level a lesson is written for.
type Level string

// Known lesson levels.
const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Levels lists every known level in ascending difficulty.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

// MaxTopicLength is the longest topic, in characters, a lesson may be requested for.
const MaxTopicLength = 150

// IsValid reports whether l is one of the known levels.
func (l Level) IsValid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	default:
		return false
	}
}

// ParseLevel normalizes s and returns the matching level.
// Returns ErrInvalidLevel if s does not name a known level.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if !l.IsValid() {
		return "", ErrInvalidLevel
	}
	return l, nil
}

// Lesson is a generated micro-lesson owned by a user. Content holds the
// lesson text and Metadata holds the quiz exactly as the model produced it.
type Lesson struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Topic     string          `json:"topic"`
	Level     Level           `json:"level"`
	Content   string          `json:"content"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewLesson builds an unsaved lesson for the given owner. The topic and level
// are stored as submitted; call Validate before generating or persisting.
func NewLesson(userID uuid.UUID, topic string, level Level) *Lesson {
	now := time.Now().UTC()
	return &Lesson{
		ID:        uuid.New(),
		UserID:    userID,
		Topic:     topic,
		Level:     level,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the lesson's fields and returns every failure at once as
// ValidationErrors, or nil when the lesson is valid.
func (l *Lesson) Validate() error {
	var errs ValidationErrors

	if l.ID == uuid.Nil {
		errs = append(errs, NewValidationError("id", "can't be blank", ErrInvalidID))
	}
	if l.UserID == uuid.Nil {
		errs = append(errs, NewValidationError("user", "must exist", ErrInvalidID))
	}

	switch {
	case strings.TrimSpace(l.Topic) == "":
		errs = append(errs, NewValidationError("topic", "can't be blank", nil))
	case utf8.RuneCountInString(l.Topic) > MaxTopicLength:
		errs = append(errs, NewValidationError("topic", "is too long (maximum is 150 characters)", nil))
	}

	switch {
	case strings.TrimSpace(string(l.Level)) == "":
		errs = append(errs, NewValidationError("level", "can't be blank", nil))
	case !l.Level.IsValid():
		errs = append(errs, NewValidationError("level", "is not included in the list", ErrInvalidLevel))
	}

	if len(l.Metadata) > 0 && !json.Valid(l.Metadata) {
		errs = append(errs, NewValidationError("metadata", "is not valid JSON", nil))
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
