package difficulty

import (
	"math/rand/v2"
	"testing"

	"github.com/abhisek/quizrace/internal/question"
)

func TestNextThresholdOne(t *testing.T) {
	c := New(1)

	s := NewState(question.Hard)
	s = c.Next(s, false)
	if s.Level != question.Medium {
		t.Fatalf("after one incorrect at hard: level = %s, want medium", s.Level)
	}
	s = c.Next(s, false)
	if s.Level != question.Easy {
		t.Fatalf("after two incorrect: level = %s, want easy", s.Level)
	}
	s = c.Next(s, false)
	if s.Level != question.Easy {
		t.Errorf("easy should saturate, got %s", s.Level)
	}

	s = c.Next(s, true)
	if s.Level != question.Medium {
		t.Errorf("after one correct at easy: level = %s, want medium", s.Level)
	}
	if s.ConsecutiveCorrect != 0 || s.ConsecutiveIncorrect != 0 {
		t.Errorf("counters = %d/%d, want reset", s.ConsecutiveCorrect, s.ConsecutiveIncorrect)
	}
}

func TestNextLongerStreak(t *testing.T) {
	c := New(3)
	s := NewState(question.Easy)

	for i := 0; i < 2; i++ {
		s = c.Next(s, true)
		if s.Level != question.Easy {
			t.Fatalf("answer %d: level = %s, want easy", i+1, s.Level)
		}
	}
	s = c.Next(s, true)
	if s.Level != question.Medium {
		t.Fatalf("third correct: level = %s, want medium", s.Level)
	}

	// An incorrect answer breaks the streak.
	s = c.Next(s, true)
	s = c.Next(s, false)
	if s.ConsecutiveCorrect != 0 || s.ConsecutiveIncorrect != 1 {
		t.Errorf("counters = %d/%d, want 0/1", s.ConsecutiveCorrect, s.ConsecutiveIncorrect)
	}
	if s.Level != question.Medium {
		t.Errorf("level = %s, want medium", s.Level)
	}
}

func TestNextNeverSkipsATier(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for _, threshold := range []int{0, 1, 2, 3} {
		c := New(threshold)
		s := NewState(question.Medium)
		for i := 0; i < 500; i++ {
			prev := s.Level
			s = c.Next(s, r.IntN(2) == 0)
			diff := s.Level.Rank() - prev.Rank()
			if diff < -1 || diff > 1 {
				t.Fatalf("threshold %d: moved %s -> %s", threshold, prev, s.Level)
			}
		}
	}
}

func TestHazardActive(t *testing.T) {
	tests := []struct {
		level question.Difficulty
		want  bool
	}{
		{question.Easy, false},
		{question.Medium, false},
		{question.Hard, true},
	}
	for _, tt := range tests {
		if got := HazardActive(tt.level); got != tt.want {
			t.Errorf("HazardActive(%s) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
