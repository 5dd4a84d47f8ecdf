package generation

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a generation did not succeed.
type FailureKind int

// Failure kinds. Only KindMalformedContent is retryable.
const (
	// KindValidation means the request was rejected before generation started.
	KindValidation FailureKind = iota + 1
	// KindConfiguration means the provider client is missing credentials or settings.
	KindConfiguration
	// KindTransport means the provider could not be reached or its body was not JSON.
	KindTransport
	// KindUpstream means the provider answered with its own error field.
	KindUpstream
	// KindEmptyContent means the provider answered without usable text.
	KindEmptyContent
	// KindMalformedContent means the model's text was not the expected JSON document.
	KindMalformedContent
	// KindPersistence means the generated lesson could not be saved.
	KindPersistence
)

// User-facing messages with fixed wording.
const (
	MsgEmptyResponse = "AI returned empty response."
	MsgInvalidJSON   = "AI returned invalid JSON. Try again."
)

// String returns the snake_case name used in logs and metric labels.
func (k FailureKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConfiguration:
		return "configuration"
	case KindTransport:
		return "transport"
	case KindUpstream:
		return "upstream"
	case KindEmptyContent:
		return "empty_content"
	case KindMalformedContent:
		return "malformed_content"
	case KindPersistence:
		return "persistence"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Retryable reports whether another attempt may produce a different result.
func (k FailureKind) Retryable() bool {
	return k == KindMalformedContent
}

// Failure is the error type every pipeline stage reports. Message is safe to
// show to the person who requested the lesson.
type Failure struct {
	Kind    FailureKind
	Message string
}

// NewFailure creates a Failure of the given kind.
func NewFailure(kind FailureKind, message string) *Failure {
	return &Failure{Kind: kind, Message: message}
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return f.Message
}

// Retryable reports whether the failure consumes retry budget instead of
// ending the attempt loop.
func (f *Failure) Retryable() bool {
	return f.Kind.Retryable()
}

// AsFailure converts any error into a *Failure. Errors that are not already
// failures are treated as transport failures carrying their message text.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return NewFailure(KindTransport, err.Error())
}
