package assistant

import "errors"

var (
	// ErrNotConfigured means no API key is set; the chat endpoint answers 503.
	ErrNotConfigured = errors.New("assistant not configured")

	ErrEmptyMessage = errors.New("message is required")

	// ErrUpstream wraps non-200 answers and transport failures from the LLM.
	ErrUpstream = errors.New("llm request failed")

	ErrTimeout = errors.New("llm request timed out")

	ErrEmptyCompletion = errors.New("llm returned no choices")
)
