package progression

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// RecordGameCompletion folds one finished game into the lesson: running
// average, high score and attempts, then the completion rule. The first
// completion unlocks the successor lesson. The stats are appended to the
// lesson's history.
func (s *Store) RecordGameCompletion(ctx context.Context, subjectID string, lessonID int, stats GameStats) (CompletionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)

	lp := s.lessonLocked(subjectID, lessonID)
	if lp.Status == StatusLocked {
		return CompletionResult{Progress: lp.clone()}, &LockedError{SubjectID: subjectID, LessonID: lessonID}
	}

	prevAvg := lp.AverageScore
	lp.AverageScore = (prevAvg*float64(lp.Attempts) + float64(stats.Score)) / float64(lp.Attempts+1)
	lp.Attempts++
	lp.HighScore = max(lp.HighScore, stats.Score)

	now := s.stamp()
	lp.LastPlayed = &now

	res := CompletionResult{Passed: s.passes(stats.Score, prevAvg)}
	if res.Passed && lp.Status != StatusCompleted {
		lp.Status = StatusCompleted
		res.FirstCompletion = true
	}
	if lp.Status == StatusCompleted && lp.CompletedAt == nil {
		lp.CompletedAt = &now
	}
	s.putLocked(lp)

	if res.FirstCompletion {
		if next, ok := s.unlockLocked(subjectID, lessonID); ok {
			res.UnlockedLesson = next
		}
	}
	res.Progress = lp.clone()

	s.logger.Info("game recorded",
		zap.String("subject", subjectID),
		zap.Int("lesson", lessonID),
		zap.Int("score", stats.Score),
		zap.Bool("passed", res.Passed),
		zap.Int("unlocked", res.UnlockedLesson),
	)

	var errs []error
	if err := s.saveLocked(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.appendHistoryLocked(ctx, subjectID, lessonID, stats); err != nil {
		errs = append(errs, err)
	}
	return res, errors.Join(errs...)
}

func (s *Store) passes(score int, prevAvg float64) bool {
	if score >= s.cfg.PassThreshold {
		return true
	}
	return s.cfg.LenientCompletion && float64(score) > prevAvg
}
