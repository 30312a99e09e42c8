package summary

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizrace/internal/game"
	"github.com/abhisek/quizrace/internal/progression"
	"github.com/abhisek/quizrace/internal/question"
	"github.com/abhisek/quizrace/internal/router"
	"github.com/abhisek/quizrace/internal/screen"
)

func testResult() game.Result {
	return game.Result{
		Stats: progression.GameStats{
			Score:             87,
			Points:            14,
			QuestionsAnswered: 8,
			CorrectAnswers:    7,
			Duration:          95 * time.Second,
			Difficulty:        question.Hard,
		},
		Reason: game.ReasonQuestions,
		Completion: &progression.CompletionResult{
			Progress: progression.LessonProgress{
				Status:       progression.StatusCompleted,
				HighScore:    87,
				AverageScore: 87,
				Attempts:     1,
			},
			Passed:          true,
			FirstCompletion: true,
			UnlockedLesson:  5,
		},
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testResult(), "Addition", nil)
	if s.Title() != "Race Summary" {
		t.Errorf("Title = %q, want %q", s.Title(), "Race Summary")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	s := New(testResult(), "Addition", nil)
	view := s.View(80, 30)

	for _, want := range []string{"Race complete!", "Addition", "1:35", "Score: 87%", "7/8", "Lesson completed!", "New lesson unlocked: #5"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryScreen_PracticeAndLivesOut(t *testing.T) {
	res := testResult()
	res.Practice = true
	res.Completion = nil
	res.Reason = game.ReasonLives

	view := New(res, "", nil).View(80, 30)
	if !strings.Contains(view, "Out of lives!") {
		t.Error("expected lives headline")
	}
	if !strings.Contains(view, "progress is not saved") {
		t.Error("expected practice notice")
	}
	if strings.Contains(view, "unlocked") {
		t.Error("practice summary must not mention unlocks")
	}
}

func TestSummaryScreen_EnterPops(t *testing.T) {
	s := New(testResult(), "Addition", nil)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

type stubScreen struct{}

func (stubScreen) Init() tea.Cmd                             { return nil }
func (s stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (stubScreen) View(int, int) string                      { return "" }
func (stubScreen) Title() string                             { return "race" }

func TestSummaryScreen_RaceAgain(t *testing.T) {
	s := New(testResult(), "Addition", func() screen.Screen { return stubScreen{} })
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if msg.Screen.Title() != "race" {
		t.Errorf("replacement title = %q", msg.Screen.Title())
	}

	_, cmd = New(testResult(), "Addition", nil).Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	if cmd != nil {
		t.Error("no rematch without a builder")
	}
}
