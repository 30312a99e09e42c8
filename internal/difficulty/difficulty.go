// Package difficulty implements the three-tier adaptive difficulty ladder.
//
// The controller is pure: Next takes the previous state and an answer
// outcome and returns the next state. It never moves more than one tier
// per call.
package difficulty

import "github.com/abhisek/quizrace/internal/question"

// DefaultThreshold is the streak length that shifts the tier.
const DefaultThreshold = 1

// State is the ladder position plus the running streak counters.
type State struct {
	Level                question.Difficulty `json:"level"`
	ConsecutiveCorrect   int                 `json:"consecutiveCorrect"`
	ConsecutiveIncorrect int                 `json:"consecutiveIncorrect"`
}

// NewState returns a fresh state at level.
func NewState(level question.Difficulty) State {
	if !level.Valid() {
		level = question.Medium
	}
	return State{Level: level}
}

// Controller maps answer outcomes to ladder moves.
type Controller struct {
	// Threshold is how many consecutive answers of the same kind move the
	// tier. Values below 1 are treated as 1.
	Threshold int
}

// New returns a controller with the given threshold.
func New(threshold int) Controller {
	return Controller{Threshold: threshold}
}

func (c Controller) threshold() int {
	if c.Threshold < 1 {
		return DefaultThreshold
	}
	return c.Threshold
}

// Next returns the state after one answer.
func (c Controller) Next(s State, correct bool) State {
	if !s.Level.Valid() {
		s.Level = question.Medium
	}

	if correct {
		s.ConsecutiveCorrect++
		s.ConsecutiveIncorrect = 0
		if s.ConsecutiveCorrect >= c.threshold() {
			s.Level = s.Level.Harder()
			s.ConsecutiveCorrect = 0
		}
		return s
	}

	s.ConsecutiveIncorrect++
	s.ConsecutiveCorrect = 0
	if s.ConsecutiveIncorrect >= c.threshold() {
		s.Level = s.Level.Easier()
		s.ConsecutiveIncorrect = 0
	}
	return s
}

// HazardActive reports whether renderers should show obstacles.
func HazardActive(level question.Difficulty) bool {
	return level == question.Hard
}
