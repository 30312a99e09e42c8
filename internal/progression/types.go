// Package progression tracks per-lesson mastery and lesson unlocking across
// sessions on top of a key-value store.
package progression

import (
	"slices"
	"time"

	"github.com/abhisek/quizrace/internal/question"
)

// LessonStatus is the unlock state of a lesson.
type LessonStatus string

const (
	StatusLocked     LessonStatus = "locked"
	StatusInProgress LessonStatus = "in_progress"
	StatusCompleted  LessonStatus = "completed"
)

// Valid reports whether s is a known status.
func (s LessonStatus) Valid() bool {
	return s == StatusLocked || s == StatusInProgress || s == StatusCompleted
}

func (s LessonStatus) rank() int {
	switch s {
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	}
	return 0
}

// LessonProgress is the persisted record of one lesson.
type LessonProgress struct {
	LessonID        int          `json:"lessonId"`
	SubjectID       string       `json:"subjectId"`
	Status          LessonStatus `json:"status"`
	HighScore       int          `json:"highScore"`
	AverageScore    float64      `json:"averageScore"`
	Attempts        int          `json:"attempts"`
	LastPlayed      *time.Time   `json:"lastPlayed,omitempty"`
	UsedQuestionIDs []int        `json:"usedQuestionIds"`
	CompletedAt     *time.Time   `json:"completedAt,omitempty"`
}

func (lp LessonProgress) clone() LessonProgress {
	lp.UsedQuestionIDs = slices.Clone(lp.UsedQuestionIDs)
	if lp.UsedQuestionIDs == nil {
		lp.UsedQuestionIDs = []int{}
	}
	if lp.LastPlayed != nil {
		t := *lp.LastPlayed
		lp.LastPlayed = &t
	}
	if lp.CompletedAt != nil {
		t := *lp.CompletedAt
		lp.CompletedAt = &t
	}
	return lp
}

// SubjectProgress aggregates a subject's lessons. Only lessons that were
// touched are present in Lessons; the rest take their lazy default.
type SubjectProgress struct {
	SubjectID          string                 `json:"subjectId"`
	SubjectName        string                 `json:"subjectName"`
	TotalLessons       int                    `json:"totalLessons"`
	CompletedLessons   int                    `json:"completedLessons"`
	CurrentLesson      int                    `json:"currentLesson"`
	ProgressPercentage int                    `json:"progressPercentage"`
	Lessons            map[int]LessonProgress `json:"lessons"`
}

func (sp *SubjectProgress) clone() SubjectProgress {
	out := *sp
	out.Lessons = make(map[int]LessonProgress, len(sp.Lessons))
	for id, lp := range sp.Lessons {
		out.Lessons[id] = lp.clone()
	}
	return out
}

// GameStats is the end-of-game record. Score is the accuracy percentage
// (0-100) used by the completion rule; Points is the in-race score.
type GameStats struct {
	Score             int                 `json:"score"`
	Points            int                 `json:"points"`
	QuestionsAnswered int                 `json:"questionsAnswered"`
	CorrectAnswers    int                 `json:"correctAnswers"`
	Duration          time.Duration       `json:"duration"`
	Difficulty        question.Difficulty `json:"difficulty"`
	Timestamp         time.Time           `json:"timestamp"`
}

// LessonUpdate carries the fields to merge into a lesson. Nil fields are
// left untouched.
type LessonUpdate struct {
	Status       *LessonStatus
	HighScore    *int
	AverageScore *float64
	Attempts     *int
}

// CompletionResult reports what RecordGameCompletion changed.
type CompletionResult struct {
	Progress LessonProgress

	// Passed is set when this game met the completion rule.
	Passed bool

	// FirstCompletion is set when the lesson became completed by this game.
	FirstCompletion bool

	// UnlockedLesson is the successor unlocked by this game, or 0.
	UnlockedLesson int
}
