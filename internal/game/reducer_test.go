package game

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/abhisek/quizrace/internal/difficulty"
	"github.com/abhisek/quizrace/internal/question"
)

var t0 = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func sampleQuestion(id int) question.Question {
	return question.Question{
		ID:            id,
		Prompt:        "What is 2 + 2?",
		Options:       []string{"3", "4", "5", "6"},
		CorrectAnswer: "4",
		Category:      "math",
		Difficulty:    question.Medium,
	}
}

func playing(cfg Config) State {
	return PresentQuestion(NewState(cfg, t0), sampleQuestion(1), t0)
}

func TestTick(t *testing.T) {
	cfg := DefaultConfig()
	s := playing(cfg)

	s = Tick(s, cfg, t0)
	if s.PlayerPosition != 0.5 {
		t.Errorf("PlayerPosition = %v, want 0.5", s.PlayerPosition)
	}
	if s.AIPosition != 0.45 {
		t.Errorf("AIPosition = %v, want 0.45", s.AIPosition)
	}

	s.Boost = 100
	s = Tick(s, cfg, t0)
	if s.PlayerPosition != 1.5 {
		t.Errorf("with full boost PlayerPosition = %v, want 1.5", s.PlayerPosition)
	}

	s.Boost = 0
	s.SpeedPenaltyUntil = t0.Add(time.Second)
	s = Tick(s, cfg, t0)
	if s.PlayerPosition != 1.75 {
		t.Errorf("under penalty PlayerPosition = %v, want 1.75", s.PlayerPosition)
	}

	s = End(s, ReasonLives, t0)
	before := s
	if s = Tick(s, cfg, t0); s.PlayerPosition != before.PlayerPosition || s.AIPosition != before.AIPosition {
		t.Error("Tick moved racers after the race ended")
	}
}

func TestApplyPressure(t *testing.T) {
	cfg := DefaultConfig()
	s := playing(cfg)

	s = ApplyPressure(s, cfg, t0.Add(15*time.Second))
	if s.AIPosition != 0 {
		t.Errorf("jump at exactly the timeout: AIPosition = %v, want 0", s.AIPosition)
	}

	now := t0.Add(16 * time.Second)
	s = ApplyPressure(s, cfg, now)
	if s.AIPosition != 25 {
		t.Errorf("AIPosition = %v, want 25", s.AIPosition)
	}
	if !s.QuestionShownAt.Equal(now) {
		t.Errorf("QuestionShownAt = %v, want %v", s.QuestionShownAt, now)
	}
	if !s.IsPlaying {
		t.Error("pressure must not end the race")
	}

	s = ApplyPressure(s, cfg, now.Add(time.Second))
	if s.AIPosition != 25 {
		t.Errorf("second jump too early: AIPosition = %v", s.AIPosition)
	}
}

func TestApplyAnswer_Correct(t *testing.T) {
	cfg := DefaultConfig()
	ctl := difficulty.New(1)
	s := playing(cfg)

	next, out := ApplyAnswer(s, cfg, ctl, "4", t0)
	if !out.Accepted || !out.Correct {
		t.Fatalf("outcome = %+v, want accepted and correct", out)
	}
	if next.Score != 2 || next.Boost != 25 || next.PlayerPosition != 15 {
		t.Errorf("score/boost/position = %d/%d/%v, want 2/25/15", next.Score, next.Boost, next.PlayerPosition)
	}
	if next.Difficulty.Level != question.Hard {
		t.Errorf("difficulty = %s, want hard", next.Difficulty.Level)
	}
	if !next.UsedQuestionIDs[1] {
		t.Error("question 1 not marked used")
	}
	if s.UsedQuestionIDs[1] {
		t.Error("ApplyAnswer mutated the previous state's used set")
	}
	if !next.IsLoading || next.Feedback == nil || !next.Feedback.Correct {
		t.Error("answered state should be loading with feedback")
	}
}

func TestApplyAnswer_Incorrect(t *testing.T) {
	cfg := DefaultConfig()
	s := playing(cfg)
	s.PlayerPosition = 4
	s.Boost = 10

	next, out := ApplyAnswer(s, cfg, difficulty.New(1), "5", t0)
	if !out.Accepted || out.Correct || out.CorrectAnswer != "4" {
		t.Fatalf("outcome = %+v", out)
	}
	if next.Lives != 4 {
		t.Errorf("Lives = %d, want 4", next.Lives)
	}
	if next.Boost != 0 {
		t.Errorf("Boost = %d, want 0", next.Boost)
	}
	if next.PlayerPosition != 0 {
		t.Errorf("PlayerPosition = %v, want 0", next.PlayerPosition)
	}
	if next.AIPosition != 12 {
		t.Errorf("AIPosition = %v, want 12", next.AIPosition)
	}
	if want := t0.Add(3 * time.Second); !next.SpeedPenaltyUntil.Equal(want) {
		t.Errorf("SpeedPenaltyUntil = %v, want %v", next.SpeedPenaltyUntil, want)
	}
	if next.Difficulty.Level != question.Easy {
		t.Errorf("difficulty = %s, want easy", next.Difficulty.Level)
	}
}

func TestApplyAnswer_IgnoredWhileLoading(t *testing.T) {
	cfg := DefaultConfig()
	s := NewState(cfg, t0)
	if _, out := ApplyAnswer(s, cfg, difficulty.New(1), "4", t0); out.Accepted {
		t.Error("answer accepted with no question")
	}

	s, _ = ApplyAnswer(playing(cfg), cfg, difficulty.New(1), "4", t0)
	if _, out := ApplyAnswer(s, cfg, difficulty.New(1), "4", t0); out.Accepted {
		t.Error("answer accepted while loading")
	}
}

func TestApplyAnswer_GameOver(t *testing.T) {
	cfg := DefaultConfig()
	ctl := difficulty.New(1)

	s := playing(cfg)
	s.Lives = 1
	if _, out := ApplyAnswer(s, cfg, ctl, "x", t0); !out.GameOver || out.Reason != ReasonLives {
		t.Errorf("last life: outcome = %+v", out)
	}

	s = playing(cfg)
	s.QuestionsAnswered = cfg.MaxQuestions - 1
	if _, out := ApplyAnswer(s, cfg, ctl, "4", t0); !out.GameOver || out.Reason != ReasonQuestions {
		t.Errorf("last question: outcome = %+v", out)
	}
}

// Any answer sequence keeps lives in [0, MaxLives] and boost in [0, MaxBoost].
func TestApplyAnswer_Bounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxQuestions = 1000
	ctl := difficulty.New(1)
	rng := rand.New(rand.NewPCG(7, 11))

	for run := range 50 {
		s := playing(cfg)
		for i := range 40 {
			answer := "4"
			if rng.IntN(2) == 0 {
				answer = "3"
			}
			var out AnswerOutcome
			s, out = ApplyAnswer(s, cfg, ctl, answer, t0)
			if s.Lives < 0 || s.Lives > cfg.MaxLives {
				t.Fatalf("run %d step %d: lives = %d", run, i, s.Lives)
			}
			if s.Boost < 0 || s.Boost > cfg.MaxBoost {
				t.Fatalf("run %d step %d: boost = %d", run, i, s.Boost)
			}
			if out.GameOver {
				break
			}
			s = PresentQuestion(s, sampleQuestion(i+2), t0)
		}
	}
}

func TestEnd_Once(t *testing.T) {
	cfg := DefaultConfig()
	s := End(playing(cfg), ReasonLives, t0.Add(time.Minute))
	again := End(s, ReasonQuestions, t0.Add(2*time.Minute))
	if again.EndReason != ReasonLives || !again.EndedAt.Equal(t0.Add(time.Minute)) {
		t.Errorf("second End changed the result: %s at %v", again.EndReason, again.EndedAt)
	}
	if again.IsPlaying || !again.Ended {
		t.Error("ended race still playing")
	}
}

func TestStats(t *testing.T) {
	cfg := DefaultConfig()
	s := playing(cfg)
	s.QuestionsAnswered = 8
	s.CorrectAnswers = 5
	s.Score = 10
	s = End(s, ReasonQuestions, t0.Add(95*time.Second))

	st := s.Stats(t0.Add(2 * time.Minute))
	if st.Score != 62 {
		t.Errorf("Score = %d, want 62", st.Score)
	}
	if st.Points != 10 {
		t.Errorf("Points = %d, want 10", st.Points)
	}
	if st.Duration != 95*time.Second {
		t.Errorf("Duration = %v, want 95s", st.Duration)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{9 * time.Second, "0:09"},
		{65 * time.Second, "1:05"},
		{10*time.Minute + 1500*time.Millisecond, "10:01"},
		{-time.Second, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.d); got != tt.want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestWeatherCycle(t *testing.T) {
	w := WeatherClear
	want := []Weather{WeatherRain, WeatherFog, WeatherSnow, WeatherClear}
	for _, exp := range want {
		w = w.Next()
		if w != exp {
			t.Errorf("Next = %s, want %s", w, exp)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	cfg := DefaultConfig()
	cfg.StartingLives = 6
	if cfg.Validate() == nil {
		t.Error("starting lives above max lives should be rejected")
	}
}
