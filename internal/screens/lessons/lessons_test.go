package lessons

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizrace/internal/curriculum"
	"github.com/abhisek/quizrace/internal/kv"
	"github.com/abhisek/quizrace/internal/progression"
	"github.com/abhisek/quizrace/internal/router"
	"github.com/abhisek/quizrace/internal/screens/race"
)

func newScreen(t *testing.T) (*LessonsScreen, *progression.Store) {
	t.Helper()
	cm := curriculum.Default()
	store := progression.New(kv.NewMemory(), cm, progression.DefaultConfig())
	return New(nil, store, cm, "1"), store
}

func TestLessonsScreen_ListsLessons(t *testing.T) {
	s, _ := newScreen(t)

	assert.Equal(t, "Mathematics", s.Title())
	require.Len(t, s.menu.Items, 6)
	assert.Equal(t, 0, s.menu.Selected, "first playable lesson is selected")

	view := s.View(100, 30)
	assert.Contains(t, view, "4. Addition and Subtraction")
	assert.Contains(t, view, "0 of 6 lessons completed")
}

func TestLessonsScreen_LockedLessonShowsNotice(t *testing.T) {
	s, _ := newScreen(t)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, s.View(100, 30), "is locked")

	// Moving clears the notice.
	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.NotContains(t, s.View(100, 30), "is locked")
}

func TestLessonsScreen_UnlockedLessonStartsRace(t *testing.T) {
	s, _ := newScreen(t)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	r, ok := msg.Screen.(*race.RaceScreen)
	require.True(t, ok)
	assert.Equal(t, "Addition and Subtraction", r.Title())
}

func TestLessonsScreen_ResumeRefreshesProgress(t *testing.T) {
	s, store := newScreen(t)
	ctx := context.Background()

	_, err := store.RecordGameCompletion(ctx, "1", 4, progression.GameStats{
		Score: 90, QuestionsAnswered: 8, CorrectAnswers: 7,
	})
	require.NoError(t, err)

	s.Resume()
	view := s.View(100, 30)
	assert.Contains(t, view, "1 of 6 lessons completed")
	assert.Contains(t, view, "best 90%")

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd, "the next lesson is unlocked after a pass")
	_, ok := cmd().(router.PushScreenMsg)
	assert.True(t, ok)
}

func TestLessonsScreen_HistoryKey(t *testing.T) {
	s, _ := newScreen(t)

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'h', Text: "h"})
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "History: Addition and Subtraction", msg.Screen.Title())
}
