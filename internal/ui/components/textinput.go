package components

import (
	"strconv"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizrace/internal/ui/theme"
)

// NumberInput wraps bubbles/textinput for small positive integers such as
// the opponent timer in seconds.
type NumberInput struct {
	Model textinput.Model
	Err   string
}

// NewNumberInput creates a focused input limited to digits.
func NewNumberInput(placeholder string, maxDigits int) NumberInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = maxDigits
	ti.Focus()
	return NumberInput{Model: ti}
}

// Init returns the cursor blink command.
func (t NumberInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update forwards messages to the input, dropping non-digit keys.
func (t NumberInput) Update(msg tea.Msg) (NumberInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		key := kmsg.String()
		if len(key) == 1 && (key[0] < '0' || key[0] > '9') {
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the input and the last validation error, if any.
func (t NumberInput) View() string {
	view := t.Model.View()
	if t.Err != "" {
		view += "  " + lipgloss.NewStyle().Foreground(theme.Error).Render(t.Err)
	}
	return view
}

// Value parses the input.
func (t NumberInput) Value() (int, error) {
	return strconv.Atoi(t.Model.Value())
}
