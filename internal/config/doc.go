// Package config loads application settings from environment variables and
// an optional config.yaml with spf13/viper, then validates them with
// go-playground/validator. Environment variables use the MICROLESSON_ prefix
// with dots replaced by underscores (MICROLESSON_SERVER_PORT), and the LLM
// credentials also honor the conventional GROQ_API_KEY and GROQ_MODEL names.
package config
