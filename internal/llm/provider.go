// Package llm wraps the text-generation backends used to top up the
// question pool. Every response is returned as plain text; callers are
// expected to treat it as untrusted input.
package llm

import "context"

// Provider is the single generation endpoint: one prompt in, text out.
type Provider interface {
	// Generate sends one request and returns the model's text.
	// Implementations make exactly one call; retries are layered on
	// with WithRetry.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes one generation call.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Prompt is the single user turn.
	Prompt string

	// JSONMode asks providers that support it to emit a bare JSON object.
	// It is a hint only; the response is still free text.
	JSONMode bool

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Response holds the model output.
type Response struct {
	Text       string
	Usage      Usage
	Model      string
	StopReason string // "end", "max_tokens"
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
