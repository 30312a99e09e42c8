package components

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizrace/internal/ui/theme"
)

// AnswerPad shows the four options of a race question. Options are picked
// with the number keys or the arrows and Enter.
type AnswerPad struct {
	Options  []string
	Selected int

	// Reveal switches the pad to feedback mode: the correct option is
	// highlighted and, if different, the chosen one is marked wrong.
	Reveal  bool
	Chosen  string
	Correct string
}

// NewAnswerPad creates a pad for options.
func NewAnswerPad(options []string) AnswerPad {
	return AnswerPad{Options: options}
}

// Update handles navigation. It returns the picked option, or "" when the
// key did not pick one.
func (p AnswerPad) Update(msg tea.Msg) (AnswerPad, string) {
	if p.Reveal {
		return p, ""
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, ""
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if p.Selected > 0 {
			p.Selected--
		}
	case "down", "j":
		if p.Selected < len(p.Options)-1 {
			p.Selected++
		}
	case "enter":
		if p.Selected < len(p.Options) {
			return p, p.Options[p.Selected]
		}
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(p.Options) {
			p.Selected = n - 1
			return p, p.Options[n-1]
		}
	}
	return p, ""
}

// View renders the options.
func (p AnswerPad) View() string {
	var b strings.Builder
	for i, opt := range p.Options {
		prefix := "  "
		if i == p.Selected && !p.Reveal {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, opt)

		switch {
		case p.Reveal && opt == p.Correct:
			b.WriteString(theme.Correct.Render(line + "  ✓"))
		case p.Reveal && opt == p.Chosen:
			b.WriteString(theme.Incorrect.Render(line + "  ✗"))
		case p.Reveal:
			b.WriteString(theme.Disabled.Render(line))
		case i == p.Selected:
			b.WriteString(theme.Selected.Render(line))
		default:
			b.WriteString(theme.Unselected.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
