// Package questiongen produces fresh questions when a lesson's catalog runs
// low. Generation goes through a text-generation provider first and falls
// back to a curated local bank, so it always yields something playable.
package questiongen

import (
	"context"
	"fmt"

	"github.com/abhisek/quizrace/internal/question"
)

// Request describes the batch to generate.
type Request struct {
	SubjectID  string
	LessonID   int
	Category   string
	Topic      string
	Lesson     string // display label copied onto generated questions
	Difficulty question.Difficulty
	Count      int

	// ExcludeIDs and ExcludePrompts list questions already used so the
	// generator can avoid repeating them.
	ExcludeIDs     []int
	ExcludePrompts []string
}

// Source tells which step of the chain produced a batch.
type Source string

const (
	SourceLLMStrict  Source = "llm_strict"
	SourceLLMLenient Source = "llm_lenient"
	SourceFallback   Source = "fallback"
)

// Batch is the result of one generation.
type Batch struct {
	Questions []question.Question
	Source    Source
}

// Generator produces a batch of questions.
type Generator interface {
	Generate(ctx context.Context, req Request) (Batch, error)
}

// GenerationError describes which step of the LLM path failed.
type GenerationError struct {
	Stage string // "request", "parse", "validate"
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("question generation failed at %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
