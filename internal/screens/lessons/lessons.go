// Package lessons lists a subject's lessons with their unlock state and
// starts races for the playable ones.
package lessons

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizrace/internal/curriculum"
	"github.com/abhisek/quizrace/internal/game"
	"github.com/abhisek/quizrace/internal/progression"
	"github.com/abhisek/quizrace/internal/router"
	"github.com/abhisek/quizrace/internal/screen"
	"github.com/abhisek/quizrace/internal/screens/history"
	"github.com/abhisek/quizrace/internal/screens/race"
	"github.com/abhisek/quizrace/internal/ui/components"
	"github.com/abhisek/quizrace/internal/ui/layout"
	"github.com/abhisek/quizrace/internal/ui/theme"
)

// LessonsScreen shows one subject's lessons.
type LessonsScreen struct {
	engine     *game.Engine
	progress   *progression.Store
	curriculum *curriculum.Map
	subjectID  string

	menu    components.Menu
	summary progression.SubjectProgress
	notice  string
}

var _ screen.Screen = (*LessonsScreen)(nil)
var _ screen.KeyHintProvider = (*LessonsScreen)(nil)
var _ screen.Resumer = (*LessonsScreen)(nil)

// New creates the lesson list of subjectID.
func New(engine *game.Engine, progress *progression.Store, cm *curriculum.Map, subjectID string) *LessonsScreen {
	s := &LessonsScreen{engine: engine, progress: progress, curriculum: cm, subjectID: subjectID}
	s.rebuild()
	return s
}

func (s *LessonsScreen) rebuild() {
	ctx := context.Background()
	selected := s.menu.Selected
	s.summary = s.progress.GetSubjectProgress(ctx, s.subjectID)

	subj, ok := s.curriculum.Subject(s.subjectID)
	if !ok {
		s.menu = components.NewMenu(nil)
		return
	}

	items := make([]components.MenuItem, 0, len(subj.Lessons))
	firstPlayable := -1
	for i, l := range subj.Lessons {
		lp := s.progress.GetLessonProgress(ctx, s.subjectID, l.ID)
		if firstPlayable < 0 && lp.Status != progression.StatusLocked {
			firstPlayable = i
		}
		items = append(items, components.MenuItem{
			Label:  fmt.Sprintf("%d. %s", l.ID, l.Title),
			Badge:  badge(lp.Status),
			Detail: detail(lp),
			Action: s.startAction(l, lp.Status),
		})
	}

	s.menu = components.NewMenu(items)
	switch {
	case selected > 0 && selected < len(items):
		s.menu.Selected = selected
	case firstPlayable >= 0:
		s.menu.Selected = firstPlayable
	}
}

func (s *LessonsScreen) startAction(l curriculum.Lesson, status progression.LessonStatus) func() tea.Cmd {
	return func() tea.Cmd {
		if status == progression.StatusLocked {
			s.notice = fmt.Sprintf("%q is locked. Complete the lesson before it to unlock it.", l.Title)
			return nil
		}
		s.notice = ""
		next := race.New(s.engine, s.curriculum, s.subjectID, l.ID)
		return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
	}
}

func (s *LessonsScreen) openHistory() tea.Cmd {
	subj, ok := s.curriculum.Subject(s.subjectID)
	if !ok || s.menu.Selected >= len(subj.Lessons) {
		return nil
	}
	l := subj.Lessons[s.menu.Selected]
	next := history.New(s.progress, s.subjectID, l.ID, l.Title)
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func badge(status progression.LessonStatus) string {
	switch status {
	case progression.StatusCompleted:
		return theme.BadgeCompleted.Render("✓")
	case progression.StatusInProgress:
		return theme.BadgeInProgress.Render("▶")
	}
	return theme.BadgeLocked.Render("🔒")
}

func detail(lp progression.LessonProgress) string {
	if lp.Attempts == 0 {
		return ""
	}
	return fmt.Sprintf("best %d%% · %d attempts", lp.HighScore, lp.Attempts)
}

func (s *LessonsScreen) Init() tea.Cmd {
	return nil
}

func (s *LessonsScreen) Resume() tea.Cmd {
	s.rebuild()
	return nil
}

func (s *LessonsScreen) Title() string {
	return s.curriculum.Name(s.subjectID)
}

func (s *LessonsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Select"},
		{Key: "Enter", Description: "Race"},
		{Key: "H", Description: "History"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LessonsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter":
		case "h":
			s.notice = ""
			return s, s.openHistory()
		default:
			s.notice = ""
		}
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *LessonsScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render(s.curriculum.Name(s.subjectID)))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(
		fmt.Sprintf("%d of %d lessons completed (%d%%)",
			s.summary.CompletedLessons, s.summary.TotalLessons, s.summary.ProgressPercentage)))
	b.WriteString("\n\n")

	if len(s.menu.Items) == 0 {
		b.WriteString(theme.Hint.Render("No lessons in this subject."))
	} else {
		b.WriteString(s.menu.View())
	}

	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Warning).Render(s.notice))
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		Render(b.String())
}
