package home

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizrace/internal/curriculum"
	"github.com/abhisek/quizrace/internal/kv"
	"github.com/abhisek/quizrace/internal/progression"
	"github.com/abhisek/quizrace/internal/router"
	"github.com/abhisek/quizrace/internal/screens/lessons"
	"github.com/abhisek/quizrace/internal/screens/race"
)

func newHome(t *testing.T) *HomeScreen {
	t.Helper()
	cm := curriculum.Default()
	store := progression.New(kv.NewMemory(), cm, progression.DefaultConfig())
	return New(nil, store, cm)
}

func pick(t *testing.T, h *HomeScreen, downs int) tea.Msg {
	t.Helper()
	for range downs {
		h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	return cmd()
}

func TestHomeScreen_Menu(t *testing.T) {
	h := newHome(t)

	// Three subjects, practice and quit.
	require.Len(t, h.menu.Items, 5)
	assert.Equal(t, "MATHEMATICS", h.menu.Items[0].Label)
	assert.Equal(t, "0/6", h.menu.Items[0].Detail)
	assert.Equal(t, 16, h.total)

	view := h.View(120, 40)
	assert.Contains(t, view, "PRACTICE RACE")
	assert.Contains(t, view, "0/16 LESSONS")
}

func TestHomeScreen_SubjectOpensLessons(t *testing.T) {
	msg, ok := pick(t, newHome(t), 1).(router.PushScreenMsg)
	require.True(t, ok)
	l, ok := msg.Screen.(*lessons.LessonsScreen)
	require.True(t, ok)
	assert.Equal(t, "Science", l.Title())
}

func TestHomeScreen_PracticeRace(t *testing.T) {
	msg, ok := pick(t, newHome(t), 3).(router.PushScreenMsg)
	require.True(t, ok)
	r, ok := msg.Screen.(*race.RaceScreen)
	require.True(t, ok)
	assert.Equal(t, "Practice Race", r.Title())
}

func TestHomeScreen_CompactView(t *testing.T) {
	view := newHome(t).View(60, 15)
	assert.Contains(t, view, "Q · U · I · Z")
}
