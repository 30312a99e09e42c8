package game

import (
	"maps"
	"time"

	"github.com/abhisek/quizrace/internal/difficulty"
	"github.com/abhisek/quizrace/internal/progression"
	"github.com/abhisek/quizrace/internal/question"
)

// Weather is the cosmetic track condition.
type Weather string

const (
	WeatherClear Weather = "clear"
	WeatherRain  Weather = "rain"
	WeatherFog   Weather = "fog"
	WeatherSnow  Weather = "snow"
)

// Next returns the following weather in the cycle.
func (w Weather) Next() Weather {
	switch w {
	case WeatherClear:
		return WeatherRain
	case WeatherRain:
		return WeatherFog
	case WeatherFog:
		return WeatherSnow
	}
	return WeatherClear
}

// End reasons.
const (
	ReasonLives     = "lives"
	ReasonQuestions = "questions"
)

// Feedback describes the last answer while the next question loads.
type Feedback struct {
	Answer        string `json:"answer"`
	CorrectAnswer string `json:"correctAnswer"`
	Correct       bool   `json:"correct"`
}

// State is the ephemeral race state of one session. Reducers treat it as a
// value: they return a new State and never mutate shared data in place.
type State struct {
	Score          int
	Lives          int
	PlayerPosition float64
	AIPosition     float64
	Boost          int

	Difficulty difficulty.State

	CurrentQuestion   *question.Question
	QuestionsAnswered int
	CorrectAnswers    int
	MaxQuestions      int
	UsedQuestionIDs   map[int]bool

	SpeedPenaltyUntil time.Time

	IsPlaying bool
	IsLoading bool
	Ended     bool
	EndReason string

	Weather  Weather
	Feedback *Feedback

	StartedAt       time.Time
	QuestionShownAt time.Time
	EndedAt         time.Time
}

// NewState returns the state of a race about to load its first question.
func NewState(cfg Config, now time.Time) State {
	return State{
		Lives:           cfg.StartingLives,
		Difficulty:      difficulty.NewState(cfg.StartDifficulty),
		MaxQuestions:    cfg.MaxQuestions,
		UsedQuestionIDs: make(map[int]bool),
		IsPlaying:       true,
		IsLoading:       true,
		Weather:         WeatherClear,
		StartedAt:       now,
	}
}

func (s State) withUsed(id int) State {
	used := maps.Clone(s.UsedQuestionIDs)
	if used == nil {
		used = make(map[int]bool)
	}
	used[id] = true
	s.UsedQuestionIDs = used
	return s
}

// Accepting reports whether an answer would be processed now.
func (s State) Accepting() bool {
	return s.IsPlaying && !s.IsLoading && s.CurrentQuestion != nil
}

// Elapsed is the race time so far, frozen once the race ends.
func (s State) Elapsed(now time.Time) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	end := now
	if s.Ended {
		end = s.EndedAt
	}
	if end.Before(s.StartedAt) {
		return 0
	}
	return end.Sub(s.StartedAt)
}

// Stats builds the end-of-game record. Score is the accuracy percentage.
func (s State) Stats(now time.Time) progression.GameStats {
	score := 0
	if s.QuestionsAnswered > 0 {
		score = s.CorrectAnswers * 100 / s.QuestionsAnswered
	}
	return progression.GameStats{
		Score:             score,
		Points:            s.Score,
		QuestionsAnswered: s.QuestionsAnswered,
		CorrectAnswers:    s.CorrectAnswers,
		Duration:          s.Elapsed(now),
		Difficulty:        s.Difficulty.Level,
		Timestamp:         now.UTC(),
	}
}
