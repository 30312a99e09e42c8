// Package analytics delivers the end-of-game event to one or more sinks.
// Delivery is fire-and-forget; failures are logged and never reach the game.
package analytics

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/quizrace/internal/logging"
	"github.com/abhisek/quizrace/internal/store"
)

// GameEndEvent is emitted once per finished game.
type GameEndEvent struct {
	SessionID       string        `json:"sessionId"`
	SubjectID       string        `json:"subjectId,omitempty"`
	LessonID        int           `json:"lessonId,omitempty"`
	Practice        bool          `json:"practice"`
	Duration        time.Duration `json:"duration"`
	Score           int           `json:"score"`
	Points          int           `json:"points"`
	Lives           int           `json:"lives"`
	Accuracy        float64       `json:"accuracy"`
	Difficulty      string        `json:"difficulty"`
	LessonCompleted bool          `json:"lessonCompleted"`
	Questions       int           `json:"questionsAnswered"`
	Correct         int           `json:"correctAnswers"`
	Timestamp       time.Time     `json:"timestamp"`
}

// Sink receives game-end events.
type Sink interface {
	Track(ctx context.Context, ev GameEndEvent) error
}

// LogSink writes events to a zap logger.
type LogSink struct {
	Logger *zap.Logger
}

func (s LogSink) Track(_ context.Context, ev GameEndEvent) error {
	logging.OrNop(s.Logger).Info("game ended",
		zap.String("session", ev.SessionID),
		zap.String("subject", ev.SubjectID),
		zap.Int("lesson", ev.LessonID),
		zap.Bool("practice", ev.Practice),
		zap.Duration("duration", ev.Duration),
		zap.Int("score", ev.Score),
		zap.Int("points", ev.Points),
		zap.Int("lives", ev.Lives),
		zap.Float64("accuracy", ev.Accuracy),
		zap.String("difficulty", ev.Difficulty),
		zap.Bool("lesson_completed", ev.LessonCompleted),
	)
	return nil
}

// StoreSink appends events to the sqlite game event log.
type StoreSink struct {
	Repo store.EventRepo
}

func (s StoreSink) Track(ctx context.Context, ev GameEndEvent) error {
	return s.Repo.AppendGameEvent(ctx, store.GameEventData{
		SessionID:         ev.SessionID,
		SubjectID:         ev.SubjectID,
		LessonID:          ev.LessonID,
		Practice:          ev.Practice,
		Score:             ev.Score,
		Points:            ev.Points,
		QuestionsAnswered: ev.Questions,
		CorrectAnswers:    ev.Correct,
		Lives:             ev.Lives,
		Accuracy:          ev.Accuracy,
		Duration:          ev.Duration,
		Difficulty:        ev.Difficulty,
		LessonCompleted:   ev.LessonCompleted,
	})
}

// Multi fans an event out to every sink and joins their errors.
type Multi []Sink

func (m Multi) Track(ctx context.Context, ev GameEndEvent) error {
	var errs []error
	for _, s := range m {
		if err := s.Track(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DeliveryTimeout bounds a single Dispatch.
const DeliveryTimeout = 5 * time.Second

// Dispatch delivers ev in the background. The returned channel is closed
// when delivery finishes; callers may ignore it.
func Dispatch(sink Sink, ev GameEndEvent, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if sink == nil {
		close(done)
		return done
	}
	logger = logging.OrNop(logger)
	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(context.Background(), DeliveryTimeout)
		defer cancel()
		if err := sink.Track(ctx, ev); err != nil {
			logger.Warn("analytics delivery failed", zap.String("session", ev.SessionID), zap.Error(err))
		}
	}()
	return done
}
