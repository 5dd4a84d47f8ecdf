// Package service holds the application use cases. LessonService turns a
// generation outcome into a persisted lesson, and UserService covers
// registration and credential checks. Services depend only on the store
// interfaces and the generation core, never on concrete adapters.
package service
