package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizrace/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is implemented by screens that show live figures
// (lives, score) in the header.
type StatusProvider interface {
	Status() []string
}

// Closer is implemented by screens that own a resource, such as a running
// race, that must be released when the screen leaves the stack.
type Closer interface {
	Close()
}

// Resumer is implemented by screens that refresh their data when they
// become active again after the screen above them is popped.
type Resumer interface {
	Resume() tea.Cmd
}

// InputCapturer is implemented by screens with a focused text field. While
// CapturingInput is true, Esc goes to the screen instead of navigating back.
type InputCapturer interface {
	CapturingInput() bool
}
