package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/microlesson-api/internal/platform/logger"
)

// DefaultMaxAttempts is the number of provider calls allowed when the model
// keeps returning malformed JSON.
const DefaultMaxAttempts = 3

// Gateway sends a prompt to an LLM provider and returns its decoded response
// envelope. Implementations report failures as *Failure values of kind
// KindConfiguration or KindTransport and must not retry on their own.
type Gateway interface {
	Send(ctx context.Context, prompt string) (Envelope, error)
}

// Recorder observes attempts and outcomes. Result is "success" or a
// FailureKind name.
type Recorder interface {
	RecordAttempt(result string, duration time.Duration)
	RecordOutcome(result string, attempts int)
}

// NopRecorder discards all observations.
type NopRecorder struct{}

// RecordAttempt implements Recorder.
func (NopRecorder) RecordAttempt(string, time.Duration) {}

// RecordOutcome implements Recorder.
func (NopRecorder) RecordOutcome(string, int) {}

// ResultSuccess is the result label recorded for a successful attempt or outcome.
const ResultSuccess = "success"

type runState int

const (
	stateAttempting runState = iota
	stateSucceeded
	stateFailed
)

// run is the attempt loop's state. attempt counts completed calls.
type run struct {
	state   runState
	attempt int
	doc     *Document
	failure *Failure
}

// advance applies the result of one attempt.
func (r *run) advance(doc *Document, err error, maxAttempts int) {
	r.attempt++
	if err == nil {
		r.state = stateSucceeded
		r.doc = doc
		r.failure = nil
		return
	}

	r.failure = AsFailure(err)
	if r.failure.Retryable() && r.attempt < maxAttempts {
		r.state = stateAttempting
		return
	}
	r.state = stateFailed
}

// Orchestrator drives the Send/Extract loop for one prompt.
type Orchestrator struct {
	gateway     Gateway
	maxAttempts int
	recorder    Recorder
	logger      *slog.Logger
}

// NewOrchestrator creates an orchestrator. maxAttempts below one is treated
// as one.
func NewOrchestrator(gateway Gateway, maxAttempts int, recorder Recorder, log *slog.Logger) *Orchestrator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		gateway:     gateway,
		maxAttempts: maxAttempts,
		recorder:    recorder,
		logger:      log,
	}
}

// Run sends the prompt until a document is extracted, a terminal failure
// occurs, or the attempt budget is spent on malformed responses.
func (o *Orchestrator) Run(ctx context.Context, prompt string) Outcome {
	log := logger.FromContextOrDefault(ctx, o.logger)

	r := &run{state: stateAttempting}
	for r.state == stateAttempting {
		start := time.Now()
		doc, err := o.attempt(ctx, prompt)
		r.advance(doc, err, o.maxAttempts)

		result := ResultSuccess
		if r.failure != nil {
			result = r.failure.Kind.String()
		}
		o.recorder.RecordAttempt(result, time.Since(start))

		if r.failure != nil {
			log.Warn("generation attempt failed",
				slog.Int("attempt", r.attempt),
				slog.Int("max_attempts", o.maxAttempts),
				slog.String("kind", result),
				slog.Bool("will_retry", r.state == stateAttempting))
		}
	}

	if r.state == stateSucceeded {
		o.recorder.RecordOutcome(ResultSuccess, r.attempt)
		log.Info("generation succeeded", slog.Int("attempts", r.attempt))
		return Succeeded{Document: *r.doc, Attempts: r.attempt}
	}

	o.recorder.RecordOutcome(r.failure.Kind.String(), r.attempt)
	log.Error("generation failed",
		slog.Int("attempts", r.attempt),
		slog.String("kind", r.failure.Kind.String()))
	return failedFrom(r.failure, r.attempt)
}

// attempt performs one Send and Extract. A panicking gateway is reported as
// a transport failure.
func (o *Orchestrator) attempt(ctx context.Context, prompt string) (doc *Document, err error) {
	defer func() {
		if p := recover(); p != nil {
			doc = nil
			err = NewFailure(KindTransport, fmt.Sprintf("gateway panic: %v", p))
		}
	}()

	env, err := o.gateway.Send(ctx, prompt)
	if err != nil {
		return nil, AsFailure(err)
	}
	return Extract(env)
}
