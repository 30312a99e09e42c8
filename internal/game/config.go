// Package game runs one quiz race: a timer-driven state machine that turns
// answers into race dynamics, adapts difficulty, pulls questions from the
// pool and records the result when the race ends.
package game

import (
	"errors"
	"time"

	"github.com/abhisek/quizrace/internal/difficulty"
	"github.com/abhisek/quizrace/internal/question"
)

// Config holds the race tuning. Positions are in track units; speeds are
// track units per tick.
type Config struct {
	TickInterval     time.Duration
	PressureInterval time.Duration
	OpponentTimeout  time.Duration
	OpponentJump     float64

	MaxQuestions  int
	StartingLives int
	MaxLives      int

	BasePlayerSpeed    float64
	BoostSpeedBonus    float64 // extra speed at full boost
	PenaltySpeedFactor float64
	AISpeed            float64
	PenaltyDuration    time.Duration

	BoostGain int
	BoostLoss int
	MaxBoost  int

	CorrectAdvance       float64
	IncorrectSetback     float64
	AIAdvanceOnIncorrect float64
	PointsPerCorrect     int

	EndDelay          time.Duration
	NextQuestionDelay time.Duration

	DifficultyThreshold int
	StartDifficulty     question.Difficulty
}

// DefaultConfig returns the standard race tuning.
func DefaultConfig() Config {
	return Config{
		TickInterval:     100 * time.Millisecond,
		PressureInterval: time.Second,
		OpponentTimeout:  15 * time.Second,
		OpponentJump:     25,

		MaxQuestions:  8,
		StartingLives: 5,
		MaxLives:      5,

		BasePlayerSpeed:    0.5,
		BoostSpeedBonus:    0.5,
		PenaltySpeedFactor: 0.5,
		AISpeed:            0.45,
		PenaltyDuration:    3 * time.Second,

		BoostGain: 25,
		BoostLoss: 20,
		MaxBoost:  100,

		CorrectAdvance:       15,
		IncorrectSetback:     10,
		AIAdvanceOnIncorrect: 12,
		PointsPerCorrect:     2,

		EndDelay:          time.Second,
		NextQuestionDelay: 1500 * time.Millisecond,

		DifficultyThreshold: difficulty.DefaultThreshold,
		StartDifficulty:     question.Medium,
	}
}

// Validate checks that the tuning can run a race.
func (c Config) Validate() error {
	var errs []error
	if c.TickInterval <= 0 || c.PressureInterval <= 0 {
		errs = append(errs, errors.New("tick and pressure intervals must be positive"))
	}
	if c.OpponentTimeout <= 0 {
		errs = append(errs, errors.New("opponent timeout must be positive"))
	}
	if c.MaxQuestions <= 0 {
		errs = append(errs, errors.New("max questions must be positive"))
	}
	if c.StartingLives <= 0 || c.StartingLives > c.MaxLives {
		errs = append(errs, errors.New("starting lives must be between 1 and max lives"))
	}
	if c.MaxBoost <= 0 {
		errs = append(errs, errors.New("max boost must be positive"))
	}
	if !c.StartDifficulty.Valid() {
		errs = append(errs, errors.New("start difficulty must be easy, medium or hard"))
	}
	return errors.Join(errs...)
}
