package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/phrazzld/microlesson-api/internal/generation"
	"github.com/phrazzld/microlesson-api/internal/platform/groq"
	"github.com/phrazzld/microlesson-api/internal/platform/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// generateSettings are the resolved flag and environment values.
type generateSettings struct {
	Topic       string
	Level       string
	Model       string
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
	JSON        bool
	LogLevel    string
}

func newGenerateCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one lesson and print it",
		Example: `  lessongen generate --topic "Photosynthesis" --level beginner
  lessongen generate --topic "Go channels" --level advanced --model llama-3.3-70b-versatile --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings := resolveSettings(v)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runGenerate(ctx, cmd, settings)
		},
	}

	flags := cmd.Flags()
	flags.String("topic", "", "lesson topic (required)")
	flags.String("level", "beginner", "learner level: beginner, intermediate or advanced")
	flags.String("model", groq.DefaultModel, "Groq model name")
	flags.String("api-key", "", "Groq API key")
	flags.String("base-url", groq.DefaultBaseURL, "OpenAI-compatible API base URL")
	flags.Duration("timeout", groq.DefaultTimeout, "HTTP timeout per provider call")
	flags.Int("max-attempts", generation.DefaultMaxAttempts, "provider calls allowed for malformed replies")
	flags.Bool("json", false, "print the generated document as JSON")
	flags.String("log-level", "error", "log level written to stderr")
	_ = cmd.MarkFlagRequired("topic")
	_ = flags.MarkHidden("base-url")

	_ = v.BindPFlags(flags)
	_ = v.BindEnv("api-key", "GROQ_API_KEY", "MICROLESSON_LLM_GROQ_API_KEY")
	_ = v.BindEnv("model", "GROQ_MODEL", "MICROLESSON_LLM_MODEL")
	_ = v.BindEnv("base-url", "MICROLESSON_LLM_BASE_URL")

	return cmd
}

func resolveSettings(v *viper.Viper) generateSettings {
	return generateSettings{
		Topic:       v.GetString("topic"),
		Level:       v.GetString("level"),
		Model:       v.GetString("model"),
		APIKey:      v.GetString("api-key"),
		BaseURL:     v.GetString("base-url"),
		Timeout:     v.GetDuration("timeout"),
		MaxAttempts: v.GetInt("max-attempts"),
		JSON:        v.GetBool("json"),
		LogLevel:    v.GetString("log-level"),
	}
}

func runGenerate(ctx context.Context, cmd *cobra.Command, s generateSettings) error {
	log := logger.New(cmd.ErrOrStderr(), s.LogLevel)

	client := groq.NewClient(groq.Config{
		APIKey:  s.APIKey,
		Model:   s.Model,
		BaseURL: s.BaseURL,
		Timeout: s.Timeout,
	}, log)

	generator, err := generation.NewGenerator(client, log, generation.WithMaxAttempts(s.MaxAttempts))
	if err != nil {
		return err
	}

	switch outcome := generator.Generate(ctx, s.Topic, s.Level).(type) {
	case generation.Succeeded:
		if s.JSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"topic":    s.Topic,
				"level":    generation.SanitizeLevel(s.Level),
				"lesson":   outcome.Document.Lesson,
				"quiz":     outcome.Document.Quiz,
				"attempts": outcome.Attempts,
			})
		}
		fmt.Fprint(cmd.OutOrStdout(), renderLesson(s.Topic, generation.SanitizeLevel(s.Level), outcome))
		return nil
	case generation.Failed:
		fmt.Fprintln(cmd.ErrOrStderr(), renderFailure(outcome))
		return errReported
	default:
		return fmt.Errorf("unexpected outcome %T", outcome)
	}
}
