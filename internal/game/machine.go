package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/quizrace/internal/analytics"
	"github.com/abhisek/quizrace/internal/catalog"
	"github.com/abhisek/quizrace/internal/curriculum"
	"github.com/abhisek/quizrace/internal/difficulty"
	"github.com/abhisek/quizrace/internal/metrics"
	"github.com/abhisek/quizrace/internal/pool"
	"github.com/abhisek/quizrace/internal/progression"
	"github.com/abhisek/quizrace/internal/question"
)

// Progress is the slice of the progression store a race needs.
type Progress interface {
	IsLessonPlayable(ctx context.Context, subjectID string, lessonID int) error
	MarkQuestionUsed(ctx context.Context, subjectID string, lessonID, id int) error
	RecordGameCompletion(ctx context.Context, subjectID string, lessonID int, stats progression.GameStats) (progression.CompletionResult, error)
}

// QuestionSource picks the next question of a lesson.
type QuestionSource interface {
	GetNext(ctx context.Context, l pool.Lesson, diff question.Difficulty, sessionUsed map[int]bool) (pool.Pick, error)
}

// Catalog loads a lesson's question set.
type Catalog interface {
	ForLesson(ctx context.Context, subjectID string, lessonID int, category string) catalog.Set
}

// ErrClosed is returned by operations on a closed machine.
var ErrClosed = errors.New("game: session closed")

type effectKind int

const (
	effectEnd effectKind = iota
	effectNextQuestion
)

// effect is a one-shot action scheduled by an answer. It only applies to
// the session generation it was scheduled in.
type effect struct {
	kind   effectKind
	at     time.Time
	gen    uint64
	reason string
}

// Machine runs one race. Step is the single scheduler: it applies due ticks,
// opponent pressure and deferred effects as pure reducers over one state.
// All methods are safe for concurrent use.
type Machine struct {
	id         string
	subjectID  string
	lessonID   int
	cfg        Config
	ctl        difficulty.Controller
	progress   Progress
	questions  QuestionSource
	catalog    Catalog
	curriculum *curriculum.Map
	sink       analytics.Sink
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
	spawn      func(func())

	mu           sync.Mutex
	ctx          context.Context
	state        State
	lesson       pool.Lesson
	gen          uint64
	starting     bool
	started      bool
	closed       bool
	restarts     chan struct{}
	lastTick     time.Time
	lastPressure time.Time
	pending      []effect
	result       *Result
	subs         map[int]chan View
	nextSub      int
}

// ID returns the session id.
func (m *Machine) ID() string { return m.id }

// Practice reports whether the race runs without persistence.
func (m *Machine) Practice() bool {
	return m.subjectID == "" || m.lessonID == 0
}

// Start checks the lesson lock, loads the lesson's catalog and presents the
// first question. A locked lesson is rejected before any state changes.
func (m *Machine) Start(ctx context.Context) error {
	if !m.Practice() && m.progress != nil {
		if err := m.progress.IsLessonPlayable(ctx, m.subjectID, m.lessonID); err != nil {
			return err
		}
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.started || m.starting {
		m.mu.Unlock()
		return errors.New("game: session already started")
	}
	m.starting = true
	m.mu.Unlock()

	lesson := m.loadLesson(ctx)

	m.mu.Lock()
	now := m.now()
	m.ctx = context.WithoutCancel(ctx)
	m.lesson = lesson
	m.starting = false
	m.started = true
	m.state = NewState(m.cfg, now)
	m.lastTick, m.lastPressure = now, now
	gen := m.gen
	m.mu.Unlock()

	m.metrics.GameStarted(m.subjectID)
	m.logger.Info("race started",
		zap.String("subject", m.subjectID),
		zap.Int("lesson", m.lessonID),
		zap.Int("catalog_size", len(lesson.Catalog)),
	)

	if err := m.loadNext(gen); err != nil {
		return fmt.Errorf("load first question: %w", err)
	}
	return nil
}

func (m *Machine) loadLesson(ctx context.Context) pool.Lesson {
	category := "general"
	l := pool.Lesson{SubjectID: m.subjectID, LessonID: m.lessonID}
	if m.curriculum != nil && m.subjectID != "" {
		category = m.curriculum.Category(m.subjectID)
		if info, ok := m.curriculum.Lesson(m.subjectID, m.lessonID); ok {
			l.Title, l.Topic = info.Title, info.Topic
		}
	}
	l.Category = category
	if m.catalog != nil {
		l.Catalog = m.catalog.ForLesson(ctx, m.subjectID, m.lessonID, category).Questions
	} else {
		l.Catalog = catalog.Builtin(category, m.lessonID)
	}
	return l
}

// loadNext fetches a question from the pool and presents it, if the race
// is still the generation that asked for it.
func (m *Machine) loadNext(gen uint64) error {
	m.mu.Lock()
	if m.closed || gen != m.gen || !m.state.IsPlaying {
		m.mu.Unlock()
		return nil
	}
	ctx, lesson, level := m.ctx, m.lesson, m.state.Difficulty.Level
	used := make(map[int]bool, len(m.state.UsedQuestionIDs))
	for id := range m.state.UsedQuestionIDs {
		used[id] = true
	}
	m.mu.Unlock()

	pick, err := m.questions.GetNext(ctx, lesson, level, used)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || gen != m.gen || !m.state.IsPlaying {
		return nil
	}
	if err != nil {
		m.logger.Warn("next question unavailable, retrying", zap.Error(err))
		m.pending = append(m.pending, effect{kind: effectNextQuestion, at: m.now().Add(m.cfg.NextQuestionDelay), gen: gen})
		return err
	}
	if pick.Wrapped {
		m.state.UsedQuestionIDs = make(map[int]bool)
	}
	m.state = PresentQuestion(m.state, pick.Question, m.now())
	m.publishLocked()
	return nil
}

// AnswerQuestion submits the player's answer. It returns false when no
// answer is being accepted (loading, no question, race over).
func (m *Machine) AnswerQuestion(answer string) (AnswerOutcome, bool) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return AnswerOutcome{}, false
	}
	now := m.now()
	next, out := ApplyAnswer(m.state, m.cfg, m.ctl, answer, now)
	if !out.Accepted {
		m.mu.Unlock()
		return out, false
	}
	qid := m.state.CurrentQuestion.ID
	m.state = next

	if out.GameOver {
		m.pending = append(m.pending, effect{kind: effectEnd, at: now.Add(m.cfg.EndDelay), gen: m.gen, reason: out.Reason})
	} else {
		m.pending = append(m.pending, effect{kind: effectNextQuestion, at: now.Add(m.cfg.NextQuestionDelay), gen: m.gen})
	}
	ctx := m.ctx
	m.publishLocked()
	m.mu.Unlock()

	m.metrics.Answered(out.Correct)
	if !m.Practice() && m.progress != nil {
		if err := m.progress.MarkQuestionUsed(ctx, m.subjectID, m.lessonID, qid); err != nil {
			m.logger.Warn("mark question used failed", zap.Int("question", qid), zap.Error(err))
		}
	}
	return out, true
}

// Step advances the race to now: due ticks, opponent pressure, then due
// deferred effects.
func (m *Machine) Step(now time.Time) {
	m.mu.Lock()
	if m.closed || !m.started {
		m.mu.Unlock()
		return
	}

	changed := false
	if m.state.IsPlaying {
		if n := ticksDue(m.lastTick, now, m.cfg.TickInterval); n > 0 {
			for i := range n {
				m.state = Tick(m.state, m.cfg, m.lastTick.Add(time.Duration(i+1)*m.cfg.TickInterval))
			}
			m.lastTick = m.lastTick.Add(time.Duration(n) * m.cfg.TickInterval)
			if n == maxCatchUpTicks && now.Sub(m.lastTick) >= m.cfg.TickInterval {
				// Time lost to a stall is dropped, not replayed.
				m.lastTick = now
			}
			changed = true
		}
		if now.Sub(m.lastPressure) >= m.cfg.PressureInterval {
			m.state = ApplyPressure(m.state, m.cfg, now)
			m.lastPressure = now
			changed = true
		}
	} else {
		m.lastTick, m.lastPressure = now, now
	}

	var due []effect
	keep := m.pending[:0]
	for _, e := range m.pending {
		switch {
		case e.gen != m.gen:
		case !e.at.After(now):
			due = append(due, e)
		default:
			keep = append(keep, e)
		}
	}
	m.pending = keep
	if changed {
		m.publishLocked()
	}
	m.mu.Unlock()

	for _, e := range due {
		switch e.kind {
		case effectEnd:
			m.finish(e.gen, e.reason, now)
		case effectNextQuestion:
			gen := e.gen
			m.spawn(func() { _ = m.loadNext(gen) })
		}
	}
}

// maxCatchUpTicks bounds the ticks applied by one Step after a stall.
const maxCatchUpTicks = 50

func ticksDue(last, now time.Time, interval time.Duration) int {
	if interval <= 0 || now.Before(last) {
		return 0
	}
	return min(int(now.Sub(last)/interval), maxCatchUpTicks)
}

// finish ends the race exactly once and records the result.
func (m *Machine) finish(gen uint64, reason string, now time.Time) {
	m.mu.Lock()
	if m.closed || gen != m.gen || m.state.Ended {
		m.mu.Unlock()
		return
	}
	m.state = End(m.state, reason, now)
	stats := m.state.Stats(now)
	ctx := m.ctx
	lives := m.state.Lives
	m.publishLocked()
	m.mu.Unlock()

	res := &Result{Stats: stats, Reason: reason, Practice: m.Practice()}
	if !m.Practice() && m.progress != nil {
		completion, err := m.progress.RecordGameCompletion(ctx, m.subjectID, m.lessonID, stats)
		if err != nil {
			m.logger.Warn("record game completion failed", zap.Error(err))
		}
		res.Completion = &completion
	}

	accuracy := 0.0
	if stats.QuestionsAnswered > 0 {
		accuracy = float64(stats.CorrectAnswers) / float64(stats.QuestionsAnswered)
	}
	analytics.Dispatch(m.sink, analytics.GameEndEvent{
		SessionID:       m.id,
		SubjectID:       m.subjectID,
		LessonID:        m.lessonID,
		Practice:        m.Practice(),
		Duration:        stats.Duration,
		Score:           stats.Score,
		Points:          stats.Points,
		Lives:           lives,
		Accuracy:        accuracy,
		Difficulty:      string(stats.Difficulty),
		LessonCompleted: res.Completion != nil && res.Completion.Progress.Status == progression.StatusCompleted,
		Questions:       stats.QuestionsAnswered,
		Correct:         stats.CorrectAnswers,
		Timestamp:       stats.Timestamp,
	}, m.logger)
	m.metrics.GameFinished(m.subjectID, reason)
	m.logger.Info("race finished",
		zap.String("reason", reason),
		zap.Int("score", stats.Score),
		zap.Int("points", stats.Points),
	)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen == m.gen && !m.closed {
		m.result = res
		m.publishLocked()
	}
}

// ResetGame restarts the same lesson with a fresh race. Effects scheduled
// by the previous race are dropped.
func (m *Machine) ResetGame() {
	m.mu.Lock()
	if m.closed || !m.started {
		m.mu.Unlock()
		return
	}
	wasRunning := !m.state.Ended
	now := m.now()
	m.gen++
	gen := m.gen
	m.pending = nil
	m.result = nil
	weather := m.state.Weather
	m.state = NewState(m.cfg, now)
	m.state.Weather = weather
	m.lastTick, m.lastPressure = now, now
	m.publishLocked()
	m.mu.Unlock()

	if wasRunning {
		m.metrics.GameFinished(m.subjectID, "reset")
	}
	m.metrics.GameStarted(m.subjectID)
	select {
	case m.restarts <- struct{}{}:
	default:
	}
	m.spawn(func() { _ = m.loadNext(gen) })
}

// CycleWeather moves to the next weather.
func (m *Machine) CycleWeather() Weather {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Weather = m.state.Weather.Next()
	m.publishLocked()
	return m.state.Weather
}

// UpdateOpponentTimerDuration sets how long a question may stay on screen
// before the opponent jumps ahead.
func (m *Machine) UpdateOpponentTimerDuration(seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("opponent timer must be positive, got %d", seconds)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.OpponentTimeout = time.Duration(seconds) * time.Second
	m.publishLocked()
	return nil
}

// View returns the current renderer snapshot.
func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewLocked()
}

// State returns a copy of the raw race state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) viewLocked() View {
	v := buildView(m.state, m.now())
	v.SessionID = m.id
	v.SubjectID = m.subjectID
	v.LessonID = m.lessonID
	v.Practice = m.Practice()
	v.OpponentTimeoutSeconds = int(m.cfg.OpponentTimeout / time.Second)
	if m.result != nil {
		r := *m.result
		v.Result = &r
	}
	return v
}

// Subscribe returns a channel of views. Slow readers only see the latest
// view. The returned func unsubscribes.
func (m *Machine) Subscribe() (<-chan View, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan View, 1)
	if m.closed {
		close(ch)
		return ch, func() {}
	}
	if m.subs == nil {
		m.subs = make(map[int]chan View)
	}
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	ch <- m.viewLocked()

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(c)
		}
	}
}

func (m *Machine) publishLocked() {
	if len(m.subs) == 0 {
		return
	}
	v := m.viewLocked()
	for _, ch := range m.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

// Run drives Step in real time until ctx is done, the machine closes or
// the race ends. A race restarted with ResetGame needs a new Run; see
// Restarted.
func (m *Machine) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.Closed() {
				return
			}
			m.Step(m.now())
			if m.Ended() {
				return
			}
		}
	}
}

// Ended reports whether the race has finished.
func (m *Machine) Ended() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started && m.state.Ended
}

// Restarted receives after each ResetGame. Signals are coalesced.
func (m *Machine) Restarted() <-chan struct{} {
	return m.restarts
}

// Closed reports whether Close was called.
func (m *Machine) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Close tears the session down. Pending effects are dropped and
// subscribers are closed.
func (m *Machine) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.gen++
	m.pending = nil
	abandoned := m.started && !m.state.Ended
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
	m.mu.Unlock()

	if abandoned {
		m.metrics.GameFinished(m.subjectID, "abandoned")
	}
}
