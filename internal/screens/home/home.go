package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizrace/internal/curriculum"
	"github.com/abhisek/quizrace/internal/game"
	"github.com/abhisek/quizrace/internal/progression"
	"github.com/abhisek/quizrace/internal/router"
	"github.com/abhisek/quizrace/internal/screen"
	"github.com/abhisek/quizrace/internal/screens/lessons"
	"github.com/abhisek/quizrace/internal/screens/race"
	"github.com/abhisek/quizrace/internal/ui/components"
)

// HomeScreen lists the subjects and the practice race.
type HomeScreen struct {
	engine     *game.Engine
	progress   *progression.Store
	curriculum *curriculum.Map

	menu      components.Menu
	completed int
	total     int
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(engine *game.Engine, progress *progression.Store, cm *curriculum.Map) *HomeScreen {
	h := &HomeScreen{engine: engine, progress: progress, curriculum: cm}
	h.rebuild()
	return h
}

// rebuild reloads subject progress into the menu, keeping the selection.
func (h *HomeScreen) rebuild() {
	ctx := context.Background()
	selected := h.menu.Selected
	h.completed, h.total = 0, 0

	var items []components.MenuItem
	for _, subj := range h.curriculum.Subjects {
		subjectID := subj.ID
		sp := h.progress.GetSubjectProgress(ctx, subjectID)
		h.completed += sp.CompletedLessons
		h.total += sp.TotalLessons

		items = append(items, components.MenuItem{
			Label:  strings.ToUpper(h.curriculum.Name(subjectID)),
			Detail: fmt.Sprintf("%d/%d", sp.CompletedLessons, sp.TotalLessons),
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: lessons.New(h.engine, h.progress, h.curriculum, subjectID)}
				}
			},
		})
	}

	items = append(items,
		components.MenuItem{Label: "PRACTICE RACE", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: race.New(h.engine, h.curriculum, "", 0)}
			}
		}},
		components.MenuItem{Label: "QUIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	)

	h.menu = components.NewMenu(items)
	if selected > 0 && selected < len(items) {
		h.menu.Selected = selected
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Resume() tea.Cmd {
	h.rebuild()
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height excludes header and footer; add them back for the full terminal.
	compact := height+8 < 30 || width < 100
	cw := contentWidth(width)

	labels := make([]string, len(h.menu.Items))
	details := make([]string, len(h.menu.Items))
	for i, item := range h.menu.Items {
		labels[i], details[i] = item.Label, item.Detail
	}

	sections := []string{
		renderTitle(cw, compact),
		renderStatsBar(h.completed, h.total, len(h.curriculum.Subjects), cw, compact),
	}
	if compact {
		sections = append(sections, renderArcadeMenuCompact(labels, details, h.menu.Selected, cw))
	} else {
		sections = append(sections, renderArcadeMenu(labels, details, h.menu.Selected, cw))
	}

	return renderCabinetFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
