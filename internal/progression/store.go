package progression

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/quizrace/internal/curriculum"
	"github.com/abhisek/quizrace/internal/kv"
	"github.com/abhisek/quizrace/internal/logging"
)

// Config holds the completion rule and history size.
type Config struct {
	// PassThreshold is the score that always completes a lesson.
	PassThreshold int

	// HistoryLimit caps the per-lesson history ring buffer.
	HistoryLimit int

	// LenientCompletion also completes a lesson when the score beats the
	// lesson's previous average.
	LenientCompletion bool
}

// DefaultConfig returns the standard completion rule.
func DefaultConfig() Config {
	return Config{PassThreshold: 60, HistoryLimit: 10, LenientCompletion: true}
}

// ErrorObserver is notified of every failed write.
type ErrorObserver interface {
	PersistenceFailed()
}

// Store is the progression service. One Store is created per process and
// shared by every session; its methods are safe for concurrent use.
type Store struct {
	kv         kv.Store
	curriculum *curriculum.Map
	cfg        Config
	logger     *zap.Logger
	observer   ErrorObserver
	now        func() time.Time

	mu       sync.Mutex
	subjects map[string]*SubjectProgress
	history  map[string][]GameStats

	// dirty is set while the in-memory copy holds changes that failed to
	// persist; loads are skipped until a write succeeds.
	dirty bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = logging.OrNop(l).Named("progression") }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithObserver sets the persistence failure observer.
func WithObserver(o ErrorObserver) Option {
	return func(s *Store) { s.observer = o }
}

// New creates a Store over the given KV backend and curriculum.
func New(store kv.Store, cm *curriculum.Map, cfg Config, opts ...Option) *Store {
	if cm == nil {
		cm = curriculum.Default()
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultConfig().HistoryLimit
	}
	s := &Store{
		kv:         store,
		curriculum: cm,
		cfg:        cfg,
		logger:     zap.NewNop(),
		now:        time.Now,
		subjects:   make(map[string]*SubjectProgress),
		history:    make(map[string][]GameStats),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Curriculum returns the curriculum the store was built with.
func (s *Store) Curriculum() *curriculum.Map { return s.curriculum }

// GetLessonProgress returns a lesson's progress, or its lazy default when
// the lesson was never touched. Defaults are not persisted.
func (s *Store) GetLessonProgress(ctx context.Context, subjectID string, lessonID int) LessonProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)
	return s.lessonLocked(subjectID, lessonID).clone()
}

// GetSubjectProgress returns a subject's aggregate with totals recomputed
// from the curriculum.
func (s *Store) GetSubjectProgress(ctx context.Context, subjectID string) SubjectProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)

	sp, ok := s.subjects[subjectID]
	if !ok {
		sp = s.newSubject(subjectID)
	}
	out := sp.clone()
	s.recompute(&out)
	return out
}

// AllProgress returns every persisted subject.
func (s *Store) AllProgress(ctx context.Context) map[string]SubjectProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)

	out := make(map[string]SubjectProgress, len(s.subjects))
	for id, sp := range s.subjects {
		out[id] = sp.clone()
	}
	return out
}

// IsLessonPlayable returns a *LockedError if the lesson is locked.
func (s *Store) IsLessonPlayable(ctx context.Context, subjectID string, lessonID int) error {
	if lp := s.GetLessonProgress(ctx, subjectID, lessonID); lp.Status == StatusLocked {
		return &LockedError{SubjectID: subjectID, LessonID: lessonID}
	}
	return nil
}

// UpdateLessonProgress merges upd into the lesson, stamps LastPlayed and
// recomputes the subject aggregate. Status never moves backwards.
func (s *Store) UpdateLessonProgress(ctx context.Context, subjectID string, lessonID int, upd LessonUpdate) (LessonProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)

	lp := s.lessonLocked(subjectID, lessonID)
	if upd.Status != nil && upd.Status.Valid() && upd.Status.rank() > lp.Status.rank() {
		lp.Status = *upd.Status
		if lp.Status == StatusCompleted && lp.CompletedAt == nil {
			now := s.stamp()
			lp.CompletedAt = &now
		}
	}
	if upd.HighScore != nil {
		lp.HighScore = max(lp.HighScore, *upd.HighScore)
	}
	if upd.AverageScore != nil {
		lp.AverageScore = *upd.AverageScore
	}
	if upd.Attempts != nil {
		lp.Attempts = *upd.Attempts
	}
	now := s.stamp()
	lp.LastPlayed = &now

	s.putLocked(lp)
	return lp.clone(), s.saveLocked(ctx)
}

// UnlockNextLesson moves the successor of lessonID from locked to
// in_progress. It returns the successor and whether it was unlocked by this
// call; calling it again is a no-op.
func (s *Store) UnlockNextLesson(ctx context.Context, subjectID string, lessonID int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)

	next, unlocked := s.unlockLocked(subjectID, lessonID)
	if !unlocked {
		return next, false, nil
	}
	return next, true, s.saveLocked(ctx)
}

func (s *Store) unlockLocked(subjectID string, lessonID int) (int, bool) {
	next, ok := s.curriculum.Successor(subjectID, lessonID)
	if !ok {
		return 0, false
	}
	lp := s.lessonLocked(subjectID, next)
	if lp.Status != StatusLocked {
		return next, false
	}
	lp.Status = StatusInProgress
	s.putLocked(lp)
	s.logger.Info("lesson unlocked", zap.String("subject", subjectID), zap.Int("lesson", next))
	return next, true
}

// MarkQuestionUsed adds id to the lesson's used set.
func (s *Store) MarkQuestionUsed(ctx context.Context, subjectID string, lessonID, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)

	lp := s.lessonLocked(subjectID, lessonID)
	if slices.Contains(lp.UsedQuestionIDs, id) {
		return nil
	}
	lp.UsedQuestionIDs = append(lp.UsedQuestionIDs, id)
	s.putLocked(lp)
	return s.saveLocked(ctx)
}

// UsedQuestionIDs returns the lesson's used set.
func (s *Store) UsedQuestionIDs(ctx context.Context, subjectID string, lessonID int) ([]int, error) {
	return s.GetLessonProgress(ctx, subjectID, lessonID).UsedQuestionIDs, nil
}

// ResetUsedQuestions empties the lesson's used set.
func (s *Store) ResetUsedQuestions(ctx context.Context, subjectID string, lessonID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)

	lp := s.lessonLocked(subjectID, lessonID)
	if len(lp.UsedQuestionIDs) == 0 {
		return nil
	}
	lp.UsedQuestionIDs = []int{}
	s.putLocked(lp)
	return s.saveLocked(ctx)
}

// ResetSubject drops a subject's progress and history.
func (s *Store) ResetSubject(ctx context.Context, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)

	delete(s.subjects, subjectID)
	var errs []error
	if err := s.deleteHistoryLocked(ctx, kv.SubjectHistoryPrefix(subjectID)); err != nil {
		errs = append(errs, err)
	}
	if err := s.saveLocked(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ClearAll drops every subject and all history.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subjects = make(map[string]*SubjectProgress)
	var errs []error
	if err := s.deleteHistoryLocked(ctx, kv.HistoryPrefix); err != nil {
		errs = append(errs, err)
	}
	if err := s.kv.Delete(ctx, kv.ProgressionKey); err != nil {
		s.dirty = true
		errs = append(errs, s.writeFailed("delete", kv.ProgressionKey, err))
	} else {
		s.dirty = false
	}
	return errors.Join(errs...)
}

// load refreshes the in-memory copy from the store. A read failure keeps
// the last copy.
func (s *Store) load(ctx context.Context) {
	if s.dirty {
		return
	}
	data, err := s.kv.Get(ctx, kv.ProgressionKey)
	if errors.Is(err, kv.ErrNotFound) {
		s.subjects = make(map[string]*SubjectProgress)
		return
	}
	if err != nil {
		s.logger.Warn("read progression failed, using in-memory copy", zap.Error(err))
		return
	}

	var subjects map[string]*SubjectProgress
	if err := json.Unmarshal(data, &subjects); err != nil {
		s.logger.Warn("decode progression failed, using in-memory copy", zap.Error(err))
		return
	}
	for id, sp := range subjects {
		if sp == nil {
			delete(subjects, id)
			continue
		}
		normalizeSubject(id, sp)
	}
	s.subjects = subjects
}

func normalizeSubject(id string, sp *SubjectProgress) {
	if sp.SubjectID == "" {
		sp.SubjectID = id
	}
	if sp.Lessons == nil {
		sp.Lessons = make(map[int]LessonProgress)
	}
	for lid, lp := range sp.Lessons {
		if lp.UsedQuestionIDs == nil {
			lp.UsedQuestionIDs = []int{}
		}
		if !lp.Status.Valid() {
			lp.Status = StatusLocked
		}
		sp.Lessons[lid] = lp
	}
}

func (s *Store) saveLocked(ctx context.Context) error {
	data, err := json.Marshal(s.subjects)
	if err != nil {
		return s.writeFailed("encode", kv.ProgressionKey, err)
	}
	if err := s.kv.Set(ctx, kv.ProgressionKey, data); err != nil {
		s.dirty = true
		return s.writeFailed("write", kv.ProgressionKey, err)
	}
	s.dirty = false
	return nil
}

func (s *Store) writeFailed(op, key string, err error) error {
	s.logger.Warn("progression write failed, keeping in-memory copy",
		zap.String("op", op), zap.String("key", key), zap.Error(err))
	if s.observer != nil {
		s.observer.PersistenceFailed()
	}
	return &PersistenceError{Op: op, Key: key, Err: err}
}

func (s *Store) newSubject(subjectID string) *SubjectProgress {
	return &SubjectProgress{
		SubjectID:    subjectID,
		SubjectName:  s.curriculum.Name(subjectID),
		TotalLessons: s.curriculum.TotalLessons(subjectID),
		Lessons:      make(map[int]LessonProgress),
	}
}

func (s *Store) defaultLesson(subjectID string, lessonID int) LessonProgress {
	status := StatusLocked
	if s.curriculum.IsFirstLesson(subjectID, lessonID) {
		status = StatusInProgress
	}
	return LessonProgress{
		LessonID:        lessonID,
		SubjectID:       subjectID,
		Status:          status,
		UsedQuestionIDs: []int{},
	}
}

func (s *Store) lessonLocked(subjectID string, lessonID int) LessonProgress {
	if sp, ok := s.subjects[subjectID]; ok {
		if lp, ok := sp.Lessons[lessonID]; ok {
			return lp
		}
	}
	return s.defaultLesson(subjectID, lessonID)
}

// putLocked stores lp and recomputes its subject's aggregate.
func (s *Store) putLocked(lp LessonProgress) {
	sp, ok := s.subjects[lp.SubjectID]
	if !ok {
		sp = s.newSubject(lp.SubjectID)
		s.subjects[lp.SubjectID] = sp
	}
	sp.Lessons[lp.LessonID] = lp
	s.recompute(sp)
}

// recompute derives the aggregate fields. Lessons missing from the map
// count with their default status.
func (s *Store) recompute(sp *SubjectProgress) {
	order := s.curriculum.LessonOrder(sp.SubjectID)
	sp.SubjectName = s.curriculum.Name(sp.SubjectID)
	sp.TotalLessons = len(order)
	if sp.TotalLessons == 0 {
		sp.TotalLessons = len(sp.Lessons)
	}

	completed, current := 0, 0
	consider := func(lp LessonProgress) {
		if lp.Status == StatusCompleted {
			completed++
		}
		if lp.Status != StatusLocked && lp.LessonID > current {
			current = lp.LessonID
		}
	}
	for _, id := range order {
		if lp, ok := sp.Lessons[id]; ok {
			consider(lp)
		} else {
			consider(s.defaultLesson(sp.SubjectID, id))
		}
	}
	for id, lp := range sp.Lessons {
		if !slices.Contains(order, id) {
			consider(lp)
		}
	}

	sp.CompletedLessons = completed
	sp.CurrentLesson = current
	sp.ProgressPercentage = 0
	if sp.TotalLessons > 0 {
		sp.ProgressPercentage = completed * 100 / sp.TotalLessons
	}
}

func (s *Store) stamp() time.Time {
	return s.now().UTC()
}
