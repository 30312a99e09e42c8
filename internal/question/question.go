// Package question defines the multiple-choice question model shared by the
// catalog, the generators, the pool and the game machine.
package question

import (
	"errors"
	"fmt"
	"strings"
)

// OptionCount is the number of options every question carries.
const OptionCount = 4

// Difficulty is a rung on the three-tier difficulty ladder.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Levels lists the ladder from easiest to hardest.
var Levels = []Difficulty{Easy, Medium, Hard}

// Valid reports whether d is one of the three tiers.
func (d Difficulty) Valid() bool {
	return d == Easy || d == Medium || d == Hard
}

// Harder returns the next tier up, saturating at Hard.
func (d Difficulty) Harder() Difficulty {
	switch d {
	case Easy:
		return Medium
	case Medium, Hard:
		return Hard
	}
	return Medium
}

// Easier returns the next tier down, saturating at Easy.
func (d Difficulty) Easier() Difficulty {
	switch d {
	case Hard:
		return Medium
	case Medium, Easy:
		return Easy
	}
	return Medium
}

// Rank returns 0 for easy, 1 for medium and 2 for hard. Unknown values rank -1.
func (d Difficulty) Rank() int {
	for i, l := range Levels {
		if l == d {
			return i
		}
	}
	return -1
}

// ParseDifficulty accepts a case-insensitive tier name.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}

// Question is an immutable multiple-choice question.
type Question struct {
	ID            int        `json:"id" yaml:"id"`
	Prompt        string     `json:"question" yaml:"question"`
	Options       []string   `json:"options" yaml:"options"`
	CorrectAnswer string     `json:"correctAnswer" yaml:"correctAnswer"`
	Category      string     `json:"category" yaml:"category"`
	Difficulty    Difficulty `json:"difficulty" yaml:"difficulty"`
	LessonID      int        `json:"lessonId" yaml:"lessonId"`

	// Display-only labels.
	Lesson  string `json:"lesson,omitempty" yaml:"lesson,omitempty"`
	Unit    string `json:"unit,omitempty" yaml:"unit,omitempty"`
	Chapter string `json:"chapter,omitempty" yaml:"chapter,omitempty"`
}

var (
	ErrEmptyPrompt    = errors.New("question prompt is empty")
	ErrOptionCount    = fmt.Errorf("question must have exactly %d options", OptionCount)
	ErrAnswerNotFound = errors.New("correct answer is not one of the options")
	ErrBadDifficulty  = errors.New("question difficulty is not easy, medium or hard")
)

// Validate checks the structural invariants of q.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return ErrEmptyPrompt
	}
	if len(q.Options) != OptionCount {
		return ErrOptionCount
	}
	if !q.HasOption(q.CorrectAnswer) {
		return ErrAnswerNotFound
	}
	if !q.Difficulty.Valid() {
		return ErrBadDifficulty
	}
	return nil
}

// HasOption reports whether answer matches one of the options after trimming.
func (q Question) HasOption(answer string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}
	for _, o := range q.Options {
		if strings.TrimSpace(o) == answer {
			return true
		}
	}
	return false
}

// IsCorrect reports whether answer is the correct option.
func (q Question) IsCorrect(answer string) bool {
	return strings.TrimSpace(answer) == strings.TrimSpace(q.CorrectAnswer)
}

// OptionIndex returns the index of answer in Options, or -1.
func (q Question) OptionIndex(answer string) int {
	answer = strings.TrimSpace(answer)
	for i, o := range q.Options {
		if strings.TrimSpace(o) == answer {
			return i
		}
	}
	return -1
}
