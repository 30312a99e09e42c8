// Package pool selects the next question for a lesson so that no question
// repeats within a play-through, topping up from the generator when the
// lesson runs low and wrapping around when it runs dry.
package pool

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/quizrace/internal/logging"
	"github.com/abhisek/quizrace/internal/question"
	"github.com/abhisek/quizrace/internal/questiongen"
)

// ErrEmpty is returned when a lesson has no questions at all, not even
// after generation.
var ErrEmpty = errors.New("pool: no questions available")

// UsedTracker persists which questions a lesson has already served.
type UsedTracker interface {
	UsedQuestionIDs(ctx context.Context, subjectID string, lessonID int) ([]int, error)
	ResetUsedQuestions(ctx context.Context, subjectID string, lessonID int) error
}

// WrapObserver is notified when a lesson wraps around.
type WrapObserver interface {
	PoolWrapped()
}

// Lesson is everything the pool needs to know about the lesson being played.
// A Lesson without a subject or lesson id is practice mode: nothing is
// persisted and only the session's own used set is honored.
type Lesson struct {
	SubjectID string
	LessonID  int
	Category  string
	Topic     string
	Title     string
	Catalog   []question.Question
}

// Practice reports whether the lesson runs unpersisted.
func (l Lesson) Practice() bool {
	return l.SubjectID == "" || l.LessonID == 0
}

func (l Lesson) key() lessonKey {
	return lessonKey{subject: l.SubjectID, lesson: l.LessonID}
}

type lessonKey struct {
	subject string
	lesson  int
}

// Pick is one selected question.
type Pick struct {
	Question question.Question

	// Generated is set when the question came from a fresh generator batch.
	Generated bool

	// Wrapped is set when the lesson was exhausted and its used set reset.
	// The caller must clear its session-scoped used set.
	Wrapped bool
}

// Config tunes replenishment.
type Config struct {
	// LowWaterMark triggers generation when fewer unused questions remain.
	LowWaterMark int

	// BatchSize is the number of questions requested per generation.
	BatchSize int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{LowWaterMark: 3, BatchSize: 5}
}

// Pool is shared by all sessions in a process. Generated questions are kept
// per lesson for the lifetime of the pool.
type Pool struct {
	tracker  UsedTracker
	gen      questiongen.Generator
	cfg      Config
	observer WrapObserver
	ids      *question.IDSource
	logger   *zap.Logger

	mu     sync.Mutex
	extras map[lessonKey][]question.Question
}

// Option configures a Pool.
type Option func(*Pool)

// WithObserver sets the wrap observer.
func WithObserver(o WrapObserver) Option {
	return func(p *Pool) { p.observer = o }
}

// WithIDs shares the synthetic id source with the generators. The pool
// advances it past every persisted id it reads and re-keys generated
// questions whose ids were already used.
func WithIDs(ids *question.IDSource) Option {
	return func(p *Pool) { p.ids = ids }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pool) { p.logger = logging.OrNop(l).Named("pool") }
}

// New creates a pool. gen may be nil, in which case exhaustion goes
// straight to wrap-around.
func New(tracker UsedTracker, gen questiongen.Generator, cfg Config, opts ...Option) *Pool {
	if cfg.LowWaterMark <= 0 {
		cfg.LowWaterMark = DefaultConfig().LowWaterMark
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	p := &Pool{
		tracker: tracker,
		gen:     gen,
		cfg:     cfg,
		logger:  zap.NewNop(),
		extras:  make(map[lessonKey][]question.Question),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// GetUnused returns the lesson's catalog plus generated extras, minus the
// persisted used ids and the session's used ids.
func (p *Pool) GetUnused(ctx context.Context, l Lesson, sessionUsed map[int]bool) []question.Question {
	used := p.usedSet(ctx, l, sessionUsed)
	return filterUnused(p.all(l), used)
}

// GetNext picks the next question, preferring the requested difficulty.
func (p *Pool) GetNext(ctx context.Context, l Lesson, diff question.Difficulty, sessionUsed map[int]bool) (Pick, error) {
	used := p.usedSet(ctx, l, sessionUsed)
	unused := filterUnused(p.all(l), used)

	if len(unused) < p.cfg.LowWaterMark && p.gen != nil {
		if fresh := p.replenish(ctx, l, diff, used); len(fresh) > 0 {
			return Pick{Question: choose(fresh, diff), Generated: true}, nil
		}
	}
	if len(unused) > 0 {
		return Pick{Question: choose(unused, diff)}, nil
	}

	all := p.all(l)
	if len(all) == 0 {
		return Pick{}, ErrEmpty
	}
	p.wrap(ctx, l)
	return Pick{Question: choose(all, diff), Wrapped: true}, nil
}

// replenish asks the generator for a batch and returns the questions that
// are new to this lesson.
func (p *Pool) replenish(ctx context.Context, l Lesson, diff question.Difficulty, used map[int]bool) []question.Question {
	req := questiongen.Request{
		SubjectID:  l.SubjectID,
		LessonID:   l.LessonID,
		Category:   l.Category,
		Topic:      l.Topic,
		Lesson:     l.Title,
		Difficulty: diff,
		Count:      p.cfg.BatchSize,
	}
	for _, q := range p.all(l) {
		if used[q.ID] {
			req.ExcludeIDs = append(req.ExcludeIDs, q.ID)
			req.ExcludePrompts = append(req.ExcludePrompts, q.Prompt)
		}
	}

	batch, err := p.gen.Generate(ctx, req)
	if err != nil {
		p.logger.Warn("question generation failed",
			zap.String("subject", l.SubjectID),
			zap.Int("lesson", l.LessonID),
			zap.Error(err),
		)
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	known := make(map[int]bool)
	for _, q := range l.Catalog {
		known[q.ID] = true
	}
	for _, q := range p.extras[l.key()] {
		known[q.ID] = true
	}

	var fresh []question.Question
	for _, q := range batch.Questions {
		if known[q.ID] || used[q.ID] {
			if p.ids == nil || !question.IsSynthetic(q.ID) {
				continue
			}
			for known[q.ID] || used[q.ID] {
				q.ID = p.ids.Next()
			}
		}
		known[q.ID] = true
		fresh = append(fresh, q)
	}
	p.extras[l.key()] = append(p.extras[l.key()], fresh...)
	p.logger.Debug("pool replenished",
		zap.String("subject", l.SubjectID),
		zap.Int("lesson", l.LessonID),
		zap.String("source", string(batch.Source)),
		zap.Int("count", len(fresh)),
	)
	return fresh
}

func (p *Pool) wrap(ctx context.Context, l Lesson) {
	if !l.Practice() && p.tracker != nil {
		if err := p.tracker.ResetUsedQuestions(ctx, l.SubjectID, l.LessonID); err != nil {
			p.logger.Warn("reset used questions failed", zap.Error(err))
		}
	}
	p.logger.Info("lesson pool wrapped", zap.String("subject", l.SubjectID), zap.Int("lesson", l.LessonID))
	if p.observer != nil {
		p.observer.PoolWrapped()
	}
}

func (p *Pool) usedSet(ctx context.Context, l Lesson, sessionUsed map[int]bool) map[int]bool {
	used := make(map[int]bool, len(sessionUsed))
	for id, ok := range sessionUsed {
		if ok {
			used[id] = true
		}
	}
	if l.Practice() || p.tracker == nil {
		return used
	}
	ids, err := p.tracker.UsedQuestionIDs(ctx, l.SubjectID, l.LessonID)
	if err != nil {
		p.logger.Warn("read used questions failed", zap.Error(err))
		return used
	}
	for _, id := range ids {
		used[id] = true
		if p.ids != nil {
			p.ids.Observe(id)
		}
	}
	return used
}

func (p *Pool) all(l Lesson) []question.Question {
	p.mu.Lock()
	defer p.mu.Unlock()
	extras := p.extras[l.key()]
	out := make([]question.Question, 0, len(l.Catalog)+len(extras))
	out = append(out, l.Catalog...)
	return append(out, extras...)
}

func filterUnused(qs []question.Question, used map[int]bool) []question.Question {
	var out []question.Question
	for _, q := range qs {
		if !used[q.ID] {
			out = append(out, q)
		}
	}
	return out
}

// choose returns the first question matching diff, else the first question.
func choose(qs []question.Question, diff question.Difficulty) question.Question {
	for _, q := range qs {
		if q.Difficulty == diff {
			return q
		}
	}
	return qs[0]
}
