package game

import (
	"fmt"
	"time"

	"github.com/abhisek/quizrace/internal/difficulty"
	"github.com/abhisek/quizrace/internal/progression"
	"github.com/abhisek/quizrace/internal/question"
)

// QuestionView is the live question as shown to the player. The correct
// answer is withheld until the question is answered.
type QuestionView struct {
	ID       int      `json:"id"`
	Prompt   string   `json:"question"`
	Options  []string `json:"options"`
	Category string   `json:"category"`
	Lesson   string   `json:"lesson,omitempty"`
}

// Result is published once when the race ends.
type Result struct {
	Stats      progression.GameStats         `json:"stats"`
	Completion *progression.CompletionResult `json:"completion,omitempty"`
	Reason     string                        `json:"reason"`
	Practice   bool                          `json:"practice"`
}

// View is the renderer contract: a read-only snapshot of the race.
type View struct {
	SessionID string `json:"sessionId"`
	SubjectID string `json:"subjectId,omitempty"`
	LessonID  int    `json:"lessonId,omitempty"`
	Practice  bool   `json:"practice"`

	Score             int                 `json:"score"`
	Lives             int                 `json:"lives"`
	PlayerPosition    float64             `json:"playerPosition"`
	AIPosition        float64             `json:"aiPosition"`
	Boost             int                 `json:"boost"`
	CurrentQuestion   *QuestionView       `json:"currentQuestion"`
	CurrentDifficulty question.Difficulty `json:"currentDifficulty"`
	HazardActive      bool                `json:"hazardActive"`
	QuestionsAnswered int                 `json:"questionsAnswered"`
	MaxQuestions      int                 `json:"maxQuestions"`
	IsLoading         bool                `json:"isLoading"`
	IsPlaying         bool                `json:"isPlaying"`
	SpeedPenalty      bool                `json:"speedPenalty"`

	FormattedElapsedTime string `json:"formattedElapsedTime"`

	// OpponentTimeoutSeconds uses the same unit as
	// UpdateOpponentTimerDuration.
	OpponentTimeoutSeconds int       `json:"opponentTimeoutSeconds"`
	Weather                Weather   `json:"weather"`
	Feedback               *Feedback `json:"feedback,omitempty"`
	Result                 *Result   `json:"result,omitempty"`
}

// FormatElapsed renders d as m:ss.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func buildView(s State, now time.Time) View {
	v := View{
		Score:                s.Score,
		Lives:                s.Lives,
		PlayerPosition:       s.PlayerPosition,
		AIPosition:           s.AIPosition,
		Boost:                s.Boost,
		CurrentDifficulty:    s.Difficulty.Level,
		HazardActive:         difficulty.HazardActive(s.Difficulty.Level),
		QuestionsAnswered:    s.QuestionsAnswered,
		MaxQuestions:         s.MaxQuestions,
		IsLoading:            s.IsLoading,
		IsPlaying:            s.IsPlaying,
		SpeedPenalty:         s.IsPlaying && now.Before(s.SpeedPenaltyUntil),
		FormattedElapsedTime: FormatElapsed(s.Elapsed(now)),
		Weather:              s.Weather,
	}
	if q := s.CurrentQuestion; q != nil {
		v.CurrentQuestion = &QuestionView{
			ID:       q.ID,
			Prompt:   q.Prompt,
			Options:  append([]string(nil), q.Options...),
			Category: q.Category,
			Lesson:   q.Lesson,
		}
	}
	if s.Feedback != nil {
		fb := *s.Feedback
		v.Feedback = &fb
	}
	return v
}
