package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var gameEventFields = []string{
	"id", "sequence", "timestamp", "session_id", "subject_id", "lesson_id",
	"practice", "score", "points", "questions_answered", "correct_answers",
	"lives", "accuracy", "duration_ms", "difficulty", "lesson_completed",
}

func (r *eventRepo) AppendGameEvent(ctx context.Context, data GameEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().
		Insert(gameEventsTable).
		Columns(gameEventFields[1:]...).
		Values(
			seqNum, time.Now().UTC(), data.SessionID, data.SubjectID, data.LessonID,
			data.Practice, data.Score, data.Points, data.QuestionsAnswered, data.CorrectAnswers,
			data.Lives, data.Accuracy, data.Duration.Milliseconds(), data.Difficulty, data.LessonCompleted,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save game event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryGameEvents(ctx context.Context, opts QueryOpts) ([]GameEvent, error) {
	sel := builder().Select(gameEventFields...).From(entsql.Table(gameEventsTable))
	if opts.SubjectID != "" {
		sel.Where(entsql.EQ("subject_id", opts.SubjectID))
	}
	if opts.LessonID != 0 {
		sel.Where(entsql.EQ("lesson_id", opts.LessonID))
	}
	applyOpts(sel, opts)

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query game events: %w", err)
	}
	defer rows.Close()

	var out []GameEvent
	for rows.Next() {
		var e GameEvent
		var durationMs int64
		err := rows.Scan(
			&e.ID, &e.Sequence, &e.Timestamp, &e.SessionID, &e.SubjectID, &e.LessonID,
			&e.Practice, &e.Score, &e.Points, &e.QuestionsAnswered, &e.CorrectAnswers,
			&e.Lives, &e.Accuracy, &durationMs, &e.Difficulty, &e.LessonCompleted,
		)
		if err != nil {
			return nil, fmt.Errorf("scan game event: %w", err)
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}
