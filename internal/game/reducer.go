package game

import (
	"time"

	"github.com/abhisek/quizrace/internal/difficulty"
	"github.com/abhisek/quizrace/internal/question"
)

// AnswerOutcome reports what one answer did.
type AnswerOutcome struct {
	Accepted      bool   `json:"accepted"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
	GameOver      bool   `json:"gameOver"`
	Reason        string `json:"reason,omitempty"`
}

// PlayerSpeed is the per-tick player advance at now.
func PlayerSpeed(s State, cfg Config, now time.Time) float64 {
	speed := cfg.BasePlayerSpeed
	if cfg.MaxBoost > 0 {
		speed += cfg.BoostSpeedBonus * float64(s.Boost) / float64(cfg.MaxBoost)
	}
	if now.Before(s.SpeedPenaltyUntil) {
		speed *= cfg.PenaltySpeedFactor
	}
	return speed
}

// Tick advances both racers by one tick.
func Tick(s State, cfg Config, now time.Time) State {
	if !s.IsPlaying {
		return s
	}
	s.PlayerPosition += PlayerSpeed(s, cfg, now)
	s.AIPosition += cfg.AISpeed
	return s
}

// ApplyPressure jumps the opponent forward when the current question has
// been on screen longer than the opponent timeout, then restarts the
// question clock.
func ApplyPressure(s State, cfg Config, now time.Time) State {
	if !s.IsPlaying || s.IsLoading || s.CurrentQuestion == nil || s.QuestionShownAt.IsZero() {
		return s
	}
	if now.Sub(s.QuestionShownAt) <= cfg.OpponentTimeout {
		return s
	}
	s.AIPosition += cfg.OpponentJump
	s.QuestionShownAt = now
	return s
}

// ApplyAnswer scores answer against the current question. Answers arriving
// while loading or with no question are ignored.
func ApplyAnswer(s State, cfg Config, ctl difficulty.Controller, answer string, now time.Time) (State, AnswerOutcome) {
	if !s.Accepting() {
		return s, AnswerOutcome{}
	}
	q := *s.CurrentQuestion
	correct := q.IsCorrect(answer)

	s = s.withUsed(q.ID)
	s.QuestionsAnswered++
	if correct {
		s.CorrectAnswers++
		s.Score += cfg.PointsPerCorrect
		s.Boost = min(cfg.MaxBoost, s.Boost+cfg.BoostGain)
		s.PlayerPosition += cfg.CorrectAdvance
	} else {
		s.Lives = max(0, s.Lives-1)
		s.Boost = max(0, s.Boost-cfg.BoostLoss)
		s.PlayerPosition = max(0, s.PlayerPosition-cfg.IncorrectSetback)
		s.AIPosition += cfg.AIAdvanceOnIncorrect
		s.SpeedPenaltyUntil = now.Add(cfg.PenaltyDuration)
	}
	s.Difficulty = ctl.Next(s.Difficulty, correct)
	s.Feedback = &Feedback{Answer: answer, CorrectAnswer: q.CorrectAnswer, Correct: correct}
	s.IsLoading = true

	out := AnswerOutcome{Accepted: true, Correct: correct, CorrectAnswer: q.CorrectAnswer}
	switch {
	case s.Lives == 0:
		out.GameOver, out.Reason = true, ReasonLives
	case s.QuestionsAnswered >= s.MaxQuestions:
		out.GameOver, out.Reason = true, ReasonQuestions
	}
	return s, out
}

// PresentQuestion makes q the live question and restarts the question clock.
func PresentQuestion(s State, q question.Question, now time.Time) State {
	if !s.IsPlaying {
		return s
	}
	s.CurrentQuestion = &q
	s.IsLoading = false
	s.Feedback = nil
	s.QuestionShownAt = now
	return s
}

// End stops the race. It is a no-op on an ended race.
func End(s State, reason string, now time.Time) State {
	if s.Ended {
		return s
	}
	s.IsPlaying = false
	s.IsLoading = false
	s.Ended = true
	s.EndReason = reason
	s.EndedAt = now
	return s
}
