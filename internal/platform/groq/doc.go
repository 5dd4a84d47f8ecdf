// Package groq implements generation.Gateway against Groq's OpenAI-compatible
// chat completions endpoint.
//
// The client performs exactly one HTTP request per Send and never retries;
// retry policy belongs to the generation orchestrator. Any JSON body the
// provider returns, including error bodies on non-2xx statuses, is handed
// back unmodified so the extractor can classify it.
package groq
