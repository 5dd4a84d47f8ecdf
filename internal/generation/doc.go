// Package generation turns a requested topic and level into a micro-lesson
// and quiz by prompting an external LLM. It owns the pipeline core: input
// sanitization, prompt construction, extraction of the model's JSON payload
// from the provider envelope, and the bounded retry loop that separates
// retryable formatting failures from terminal ones.
//
// The provider itself sits behind the Gateway interface; see
// internal/platform/groq for the HTTP implementation.
package generation
