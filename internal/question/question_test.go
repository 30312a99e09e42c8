package question

import (
	"errors"
	"sync"
	"testing"
)

func validQuestion() Question {
	return Question{
		ID:            1,
		Prompt:        "What is 2 + 2?",
		Options:       []string{"3", "4", "5", "6"},
		CorrectAnswer: "4",
		Category:      "math",
		Difficulty:    Easy,
		LessonID:      4,
	}
}

func TestDifficultyLadder(t *testing.T) {
	tests := []struct {
		in           Difficulty
		harder, easy Difficulty
	}{
		{Easy, Medium, Easy},
		{Medium, Hard, Easy},
		{Hard, Hard, Medium},
	}
	for _, tt := range tests {
		if got := tt.in.Harder(); got != tt.harder {
			t.Errorf("%s.Harder() = %s, want %s", tt.in, got, tt.harder)
		}
		if got := tt.in.Easier(); got != tt.easy {
			t.Errorf("%s.Easier() = %s, want %s", tt.in, got, tt.easy)
		}
	}
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty(" HARD ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != Hard {
		t.Errorf("got %s, want hard", d)
	}
	if _, err := ParseDifficulty("brutal"); err == nil {
		t.Error("expected error for unknown difficulty")
	}
}

func TestValidate(t *testing.T) {
	q := validQuestion()
	if err := q.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Question)
		want   error
	}{
		{"empty prompt", func(q *Question) { q.Prompt = "  " }, ErrEmptyPrompt},
		{"three options", func(q *Question) { q.Options = q.Options[:3] }, ErrOptionCount},
		{"answer missing", func(q *Question) { q.CorrectAnswer = "7" }, ErrAnswerNotFound},
		{"bad difficulty", func(q *Question) { q.Difficulty = "expert" }, ErrBadDifficulty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			q.Options = append([]string(nil), q.Options...)
			tt.mutate(&q)
			if err := q.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestIsCorrect(t *testing.T) {
	q := validQuestion()
	if !q.IsCorrect(" 4 ") {
		t.Error("expected trimmed answer to be correct")
	}
	if q.IsCorrect("5") {
		t.Error("expected 5 to be incorrect")
	}
	if got := q.OptionIndex("5"); got != 2 {
		t.Errorf("OptionIndex(5) = %d, want 2", got)
	}
}

func TestIDSourceConcurrent(t *testing.T) {
	src := NewIDSource()
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[int]bool)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := src.Next()
			mu.Lock()
			defer mu.Unlock()
			if seen[id] {
				t.Errorf("duplicate id %d", id)
			}
			seen[id] = true
		}()
	}
	wg.Wait()

	for id := range seen {
		if !IsSynthetic(id) {
			t.Errorf("id %d below synthetic base", id)
		}
	}
}

func TestIDSourceObserve(t *testing.T) {
	src := NewIDSource()
	src.Observe(10019)
	src.Observe(10005)
	src.Observe(7)
	if got := src.Next(); got != 10020 {
		t.Errorf("Next after Observe(10019) = %d, want 10020", got)
	}
}
