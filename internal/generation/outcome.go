package generation

import "encoding/json"

// Document is the lesson and quiz decoded from the model's text payload.
// Quiz is kept exactly as the model emitted it.
type Document struct {
	Lesson string
	Quiz   json.RawMessage
	Raw    json.RawMessage
}

// Outcome is the terminal result of a generation. It is either Succeeded or
// Failed, never both; switch on the concrete type to read it.
type Outcome interface {
	outcome()
}

// Succeeded carries the parsed document of the attempt that worked.
type Succeeded struct {
	Document Document
	Attempts int
}

// Failed carries the terminal failure and how many attempts were made.
type Failed struct {
	Kind     FailureKind
	Message  string
	Attempts int
}

func (Succeeded) outcome() {}
func (Failed) outcome()    {}

// Err returns the failure as an error value.
func (f Failed) Err() error {
	return NewFailure(f.Kind, f.Message)
}

// failedFrom builds a Failed outcome from a pipeline failure.
func failedFrom(f *Failure, attempts int) Failed {
	return Failed{Kind: f.Kind, Message: f.Message, Attempts: attempts}
}
