package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/quizrace/internal/question"
)

// Validator checks a generated question before it enters the pool.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier, e.g. "structural".
	Name() string

	// Validate returns nil if q passes.
	Validate(q *question.Question, req Request) *ValidationError
}

// ValidationError describes why a question was dropped.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

const maxPromptLen = 300

// StructuralValidator checks the question shape: a prompt within length
// limits, four distinct non-empty options and an answer among them.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *question.Question, _ Request) *ValidationError {
	if err := q.Validate(); err != nil {
		return &ValidationError{Validator: v.Name(), Message: err.Error()}
	}
	if len(q.Prompt) > maxPromptLen {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("question exceeds %d characters", maxPromptLen),
		}
	}
	seen := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		key := normalize(o)
		if key == "" {
			return &ValidationError{Validator: v.Name(), Message: "empty option"}
		}
		if seen[key] {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("duplicate option %q", o)}
		}
		seen[key] = true
	}
	return nil
}

// DuplicateValidator rejects prompts that were already asked.
type DuplicateValidator struct{}

func (v *DuplicateValidator) Name() string { return "duplicate" }

func (v *DuplicateValidator) Validate(q *question.Question, req Request) *ValidationError {
	key := normalize(q.Prompt)
	for _, p := range req.ExcludePrompts {
		if normalize(p) == key {
			return &ValidationError{Validator: v.Name(), Message: "question was already asked"}
		}
	}
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
