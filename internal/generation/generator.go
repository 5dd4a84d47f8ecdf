package generation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/microlesson-api/internal/platform/logger"
)

// ErrNilGateway is returned when a Generator is built without a gateway.
var ErrNilGateway = errors.New("generation: gateway is required")

// Option configures a Generator.
type Option func(*Generator)

// WithMaxAttempts overrides DefaultMaxAttempts.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		g.maxAttempts = n
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(g *Generator) {
		g.recorder = r
	}
}

// Generator runs the full pipeline for one request: sanitize, build the
// prompt, then hand it to the orchestrator. It holds no per-request state
// and is safe for concurrent use.
type Generator struct {
	maxAttempts  int
	recorder     Recorder
	logger       *slog.Logger
	orchestrator *Orchestrator
}

// NewGenerator creates a Generator backed by the given gateway.
func NewGenerator(gateway Gateway, log *slog.Logger, opts ...Option) (*Generator, error) {
	if gateway == nil {
		return nil, ErrNilGateway
	}
	if log == nil {
		log = slog.Default()
	}

	g := &Generator{
		maxAttempts: DefaultMaxAttempts,
		recorder:    NopRecorder{},
		logger:      log.With(slog.String("component", "generator")),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.orchestrator = NewOrchestrator(gateway, g.maxAttempts, g.recorder, g.logger)
	return g, nil
}

// Generate produces a lesson document for the raw topic and level.
func (g *Generator) Generate(ctx context.Context, topic, level string) Outcome {
	log := logger.FromContextOrDefault(ctx, g.logger)

	in := Sanitize(topic, level)
	prompt, err := BuildPrompt(in)
	if err != nil {
		log.Error("failed to build prompt", slog.String("error", err.Error()))
		return Failed{Kind: KindConfiguration, Message: "failed to build prompt"}
	}

	log.Debug("generating lesson",
		slog.String("level", string(in.Level)),
		slog.Int("topic_length", len([]rune(in.Topic))))

	return g.orchestrator.Run(ctx, prompt)
}
