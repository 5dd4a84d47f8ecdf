package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm" validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains the PostgreSQL connection settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains token signing and password hashing settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lte=10080"`
	BCryptCost           int    `mapstructure:"bcrypt_cost" validate:"required,gte=4,lte=31"`
}

// TokenLifetime returns the access token lifetime as a duration.
func (a AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(a.TokenLifetimeMinutes) * time.Minute
}

// LLMConfig contains the lesson generation provider settings. GroqAPIKey may
// be empty; generation requests then fail with a configuration error.
type LLMConfig struct {
	GroqAPIKey     string `mapstructure:"groq_api_key"`
	Model          string `mapstructure:"model" validate:"required"`
	BaseURL        string `mapstructure:"base_url" validate:"required,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxAttempts    int    `mapstructure:"max_attempts" validate:"required,gt=0,lte=10"`
}

// Timeout returns the provider HTTP timeout.
func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// RateLimitConfig throttles lesson creation per client IP.
type RateLimitConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	RedisURL      string   `mapstructure:"redis_url" validate:"required_if=Enabled true"`
	Requests      int      `mapstructure:"requests" validate:"gt=0"`
	PeriodSeconds int      `mapstructure:"period_seconds" validate:"gt=0"`
	Safelist      []string `mapstructure:"safelist" validate:"dive,ip"`
}

// Period returns the rate limit window.
func (r RateLimitConfig) Period() time.Duration {
	return time.Duration(r.PeriodSeconds) * time.Second
}
