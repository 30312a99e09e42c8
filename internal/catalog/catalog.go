package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/quizrace/internal/logging"
	"github.com/abhisek/quizrace/internal/question"
)

// Set is the question set of one lesson.
type Set struct {
	Questions []question.Question

	// Fallback is true when the built-in set was served because the
	// source failed, returned nothing, or no lesson was selected.
	Fallback bool
}

// Catalog resolves per-lesson question sets from a Source.
type Catalog struct {
	source Source
	logger *zap.Logger
}

// New creates a Catalog. A nil source always serves the built-in set.
func New(source Source, logger *zap.Logger) *Catalog {
	return &Catalog{source: source, logger: logging.OrNop(logger)}
}

// ForLesson fetches the subject document once and keeps the questions of
// lessonID. It never fails: any problem degrades to the built-in set for
// category.
func (c *Catalog) ForLesson(ctx context.Context, subjectID string, lessonID int, category string) Set {
	if subjectID == "" || lessonID == 0 || c.source == nil {
		return Set{Questions: Builtin(category, lessonID), Fallback: true}
	}

	all, err := c.source.Fetch(ctx, subjectID)
	if err != nil {
		c.logger.Warn("catalog fetch failed, using built-in questions",
			zap.String("subject", subjectID),
			zap.Int("lesson", lessonID),
			zap.Error(err))
		return Set{Questions: Builtin(category, lessonID), Fallback: true}
	}

	var out []question.Question
	for _, q := range all {
		if q.LessonID != lessonID {
			continue
		}
		if q.Category == "" {
			q.Category = category
		}
		if q.Difficulty == "" {
			q.Difficulty = question.Medium
		}
		if err := q.Validate(); err != nil {
			c.logger.Debug("skipping invalid catalog question",
				zap.Int("id", q.ID), zap.Error(err))
			continue
		}
		if question.IsSynthetic(q.ID) {
			c.logger.Debug("skipping catalog question in synthetic id range", zap.Int("id", q.ID))
			continue
		}
		out = append(out, q)
	}

	if len(out) == 0 {
		c.logger.Warn("catalog has no questions for lesson, using built-in questions",
			zap.String("subject", subjectID), zap.Int("lesson", lessonID))
		return Set{Questions: Builtin(category, lessonID), Fallback: true}
	}
	return Set{Questions: out}
}
