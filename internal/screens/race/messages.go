package race

import (
	"time"

	"github.com/abhisek/quizrace/internal/game"
)

// raceStartedMsg is sent when the session has started (or failed to).
type raceStartedMsg struct {
	Machine *game.Machine
	Err     error
}

// tickMsg drives the machine's scheduler at the tick interval.
type tickMsg time.Time
