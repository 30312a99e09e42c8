package history

import (
	"context"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizrace/internal/curriculum"
	"github.com/abhisek/quizrace/internal/kv"
	"github.com/abhisek/quizrace/internal/progression"
	"github.com/abhisek/quizrace/internal/question"
)

func TestHistoryScreen_Empty(t *testing.T) {
	store := progression.New(kv.NewMemory(), curriculum.Default(), progression.DefaultConfig())
	s := New(store, "1", 4, "Addition and Subtraction")

	assert.Contains(t, s.View(80, 20), "Loading")
	s.Update(s.Init()())
	assert.Contains(t, s.View(80, 20), "No races yet")
	assert.Equal(t, "History: Addition and Subtraction", s.Title())
}

func TestHistoryScreen_NewestFirstAndDetails(t *testing.T) {
	ctx := context.Background()
	store := progression.New(kv.NewMemory(), curriculum.Default(), progression.DefaultConfig())
	for _, score := range []int{40, 75} {
		_, err := store.RecordGameCompletion(ctx, "1", 4, progression.GameStats{
			Score:             score,
			Points:            score / 10,
			QuestionsAnswered: 8,
			CorrectAnswers:    score * 8 / 100,
			Duration:          72 * time.Second,
			Difficulty:        question.Hard,
		})
		require.NoError(t, err)
	}

	s := New(store, "1", 4, "Addition and Subtraction")
	s.Update(s.Init()())
	require.Len(t, s.games, 2)
	assert.Equal(t, 75, s.games[0].Score)

	view := s.View(80, 20)
	assert.Contains(t, view, "75%")
	assert.Contains(t, view, "1:12")
	assert.NotContains(t, view, "points")

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Contains(t, s.View(80, 20), "4 points, finished on hard questions")
}
