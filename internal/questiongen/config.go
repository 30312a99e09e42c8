package questiongen

import "time"

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators run in order on every parsed question; the first failure
	// drops the question.
	Validators []Validator

	MaxTokens   int
	Temperature float64

	// MaxPriorQuestions caps how many excluded prompts go into the prompt.
	MaxPriorQuestions int

	// Timeout bounds the single provider call.
	Timeout time.Duration
}

// DefaultConfig returns the standard validator chain and limits.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&DuplicateValidator{},
		},
		MaxTokens:         1024,
		Temperature:       0.7,
		MaxPriorQuestions: 10,
		Timeout:           20 * time.Second,
	}
}
