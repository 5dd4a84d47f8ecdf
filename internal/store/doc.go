// Package store defines the persistence interfaces for lessons and users.
// Services depend on these interfaces; internal/platform/postgres provides
// the PostgreSQL implementations.
package store
