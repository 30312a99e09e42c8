// Package race is the race screen: it drives one game.Machine from the
// Bubble Tea loop and renders its view.
package race

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizrace/internal/curriculum"
	"github.com/abhisek/quizrace/internal/game"
	"github.com/abhisek/quizrace/internal/progression"
	"github.com/abhisek/quizrace/internal/router"
	"github.com/abhisek/quizrace/internal/screen"
	"github.com/abhisek/quizrace/internal/screens/summary"
	"github.com/abhisek/quizrace/internal/ui/components"
	"github.com/abhisek/quizrace/internal/ui/layout"
)

// RaceScreen implements screen.Screen for one race.
type RaceScreen struct {
	engine     *game.Engine
	curriculum *curriculum.Map
	subjectID  string
	lessonID   int
	title      string

	machine *game.Machine
	view    game.View
	pad     components.AnswerPad
	padKey  string

	timerInput *components.NumberInput
	errMsg     string
}

var _ screen.Screen = (*RaceScreen)(nil)
var _ screen.KeyHintProvider = (*RaceScreen)(nil)
var _ screen.StatusProvider = (*RaceScreen)(nil)
var _ screen.Closer = (*RaceScreen)(nil)
var _ screen.InputCapturer = (*RaceScreen)(nil)

// New creates a race screen. An empty subjectID or zero lessonID races in
// practice mode.
func New(engine *game.Engine, cm *curriculum.Map, subjectID string, lessonID int) *RaceScreen {
	title := "Practice Race"
	if cm != nil && subjectID != "" {
		if l, ok := cm.Lesson(subjectID, lessonID); ok {
			title = l.Title
		}
	}
	return &RaceScreen{
		engine:     engine,
		curriculum: cm,
		subjectID:  subjectID,
		lessonID:   lessonID,
		title:      title,
	}
}

func (s *RaceScreen) Init() tea.Cmd {
	engine, subjectID, lessonID := s.engine, s.subjectID, s.lessonID
	return func() tea.Msg {
		m, err := engine.StartSession(context.Background(), subjectID, lessonID)
		return raceStartedMsg{Machine: m, Err: err}
	}
}

func (s *RaceScreen) Title() string {
	return s.title
}

func (s *RaceScreen) Status() []string {
	if s.machine == nil {
		return nil
	}
	return []string{
		fmt.Sprintf("♥ %d", s.view.Lives),
		fmt.Sprintf("★ %d", s.view.Score),
		s.view.FormattedElapsedTime,
	}
}

func (s *RaceScreen) KeyHints() []layout.KeyHint {
	if s.timerInput != nil {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Set timer"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "1-4", Description: "Answer"},
		{Key: "W", Description: "Weather"},
		{Key: "T", Description: "Opponent timer"},
		{Key: "R", Description: "Restart"},
		{Key: "Esc", Description: "Leave"},
	}
}

func (s *RaceScreen) CapturingInput() bool {
	return s.timerInput != nil
}

// Close abandons the race when the screen leaves the stack.
func (s *RaceScreen) Close() {
	if s.machine != nil {
		s.machine.Close()
	}
}

func (s *RaceScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case raceStartedMsg:
		return s.handleStarted(msg)

	case tickMsg:
		return s.handleTick(time.Time(msg))

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.timerInput != nil {
		var cmd tea.Cmd
		*s.timerInput, cmd = s.timerInput.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *RaceScreen) handleStarted(msg raceStartedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		if errors.Is(msg.Err, progression.ErrLessonLocked) {
			s.errMsg = "This lesson is locked. Finish the lesson before it to unlock it."
		} else {
			s.errMsg = "Could not start the race: " + msg.Err.Error()
		}
		return s, nil
	}
	s.machine = msg.Machine
	s.refresh()
	return s, s.tick()
}

func (s *RaceScreen) tick() tea.Cmd {
	return tea.Tick(s.engine.Config().TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (s *RaceScreen) handleTick(now time.Time) (screen.Screen, tea.Cmd) {
	if s.machine == nil || s.machine.Closed() {
		return s, nil
	}
	s.machine.Step(now)
	s.refresh()

	if res := s.view.Result; res != nil {
		engine, cm, subjectID, lessonID := s.engine, s.curriculum, s.subjectID, s.lessonID
		again := func() screen.Screen { return New(engine, cm, subjectID, lessonID) }
		next := summary.New(*res, s.title, again)
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
	}
	return s, s.tick()
}

func (s *RaceScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.machine == nil {
		return s, nil
	}

	if s.timerInput != nil {
		switch msg.String() {
		case "esc":
			s.timerInput = nil
			return s, nil
		case "enter":
			secs, err := s.timerInput.Value()
			if err == nil {
				err = s.machine.UpdateOpponentTimerDuration(secs)
			}
			if err != nil {
				s.timerInput.Err = "enter a positive number of seconds"
				return s, nil
			}
			s.timerInput = nil
			s.refresh()
			return s, nil
		}
		var cmd tea.Cmd
		*s.timerInput, cmd = s.timerInput.Update(msg)
		return s, cmd
	}

	switch msg.String() {
	case "w":
		s.machine.CycleWeather()
		s.refresh()
		return s, nil
	case "t":
		in := components.NewNumberInput(strconv.Itoa(s.view.OpponentTimeoutSeconds), 3)
		s.timerInput = &in
		return s, in.Init()
	case "r":
		s.machine.ResetGame()
		s.refresh()
		return s, nil
	}

	var chosen string
	s.pad, chosen = s.pad.Update(msg)
	if chosen != "" {
		s.machine.AnswerQuestion(chosen)
		s.refresh()
	}
	return s, nil
}

// refresh pulls the latest view and keeps the answer pad in step with the
// live question.
func (s *RaceScreen) refresh() {
	s.view = s.machine.View()

	q := s.view.CurrentQuestion
	if q == nil {
		return
	}
	key := fmt.Sprintf("%d/%d", q.ID, s.view.QuestionsAnswered)
	if fb := s.view.Feedback; fb != nil {
		key = fmt.Sprintf("%d/%d", q.ID, s.view.QuestionsAnswered-1)
		if key == s.padKey {
			s.pad.Reveal = true
			s.pad.Chosen = fb.Answer
			s.pad.Correct = fb.CorrectAnswer
			return
		}
	}
	if key != s.padKey {
		s.pad = components.NewAnswerPad(q.Options)
		s.padKey = key
	}
}
