// Package app is the terminal renderer: a Bubble Tea program hosting the
// screen stack.
package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizrace/internal/curriculum"
	"github.com/abhisek/quizrace/internal/game"
	"github.com/abhisek/quizrace/internal/progression"
	"github.com/abhisek/quizrace/internal/router"
	"github.com/abhisek/quizrace/internal/screen"
	"github.com/abhisek/quizrace/internal/screens/home"
	"github.com/abhisek/quizrace/internal/screens/lessons"
	"github.com/abhisek/quizrace/internal/screens/race"
	"github.com/abhisek/quizrace/internal/ui/layout"
)

// Options holds the services the screens use.
type Options struct {
	Engine     *game.Engine
	Progress   *progression.Store
	Curriculum *curriculum.Map

	// SubjectID and LessonID, when set, skip the menus and open a race
	// (LessonID set) or the subject's lesson list.
	SubjectID string
	LessonID  int
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	initCmd tea.Cmd
	width   int
	height  int
}

// newAppModel creates the model and picks the first screen.
func newAppModel(opts Options) AppModel {
	first := home.New(opts.Engine, opts.Progress, opts.Curriculum)
	r := router.New(first)
	cmds := []tea.Cmd{first.Init()}

	if opts.SubjectID != "" {
		cmds = append(cmds, r.Push(lessons.New(opts.Engine, opts.Progress, opts.Curriculum, opts.SubjectID)))
		if opts.LessonID != 0 {
			cmds = append(cmds, r.Push(race.New(opts.Engine, opts.Curriculum, opts.SubjectID, opts.LessonID)))
		}
	}
	return AppModel{router: r, initCmd: tea.Batch(cmds...)}
}

func (m AppModel) Init() tea.Cmd {
	return m.initCmd
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if c, ok := m.router.Active().(screen.InputCapturer); ok && c.CapturingInput() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	var status []string
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}

	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = kp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program and closes any live race on exit.
func Run(opts Options) error {
	model := newAppModel(opts)
	defer model.router.CloseAll()

	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
