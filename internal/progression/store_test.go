package progression

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizrace/internal/curriculum"
	"github.com/abhisek/quizrace/internal/kv"
	"github.com/abhisek/quizrace/internal/question"
)

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, backend kv.Store) *Store {
	t.Helper()
	if backend == nil {
		backend = kv.NewMemory()
	}
	clock := fixedNow
	return New(backend, curriculum.Default(), DefaultConfig(), WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
}

func stats(score int) GameStats {
	return GameStats{
		Score:             score,
		QuestionsAnswered: 8,
		CorrectAnswers:    score * 8 / 100,
		Duration:          90 * time.Second,
		Difficulty:        question.Medium,
		Timestamp:         fixedNow,
	}
}

// flakyKV fails writes on demand.
type flakyKV struct {
	*kv.Memory
	mu       sync.Mutex
	failSet  bool
	failRead bool
}

func (f *flakyKV) Set(ctx context.Context, key string, v []byte) error {
	f.mu.Lock()
	fail := f.failSet
	f.mu.Unlock()
	if fail {
		return errors.New("quota exceeded")
	}
	return f.Memory.Set(ctx, key, v)
}

func (f *flakyKV) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	fail := f.failRead
	f.mu.Unlock()
	if fail {
		return nil, errors.New("storage unavailable")
	}
	return f.Memory.Get(ctx, key)
}

func TestLazyDefaults(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	first := s.GetLessonProgress(ctx, "1", 4)
	if first.Status != StatusInProgress {
		t.Errorf("lesson 4 status = %q, want %q", first.Status, StatusInProgress)
	}
	second := s.GetLessonProgress(ctx, "1", 5)
	if second.Status != StatusLocked {
		t.Errorf("lesson 5 status = %q, want %q", second.Status, StatusLocked)
	}
	if second.UsedQuestionIDs == nil {
		t.Error("UsedQuestionIDs should be empty, not nil")
	}

	// Reading does not persist.
	assert.Empty(t, s.AllProgress(ctx))

	assert.NoError(t, s.IsLessonPlayable(ctx, "1", 4))
	err := s.IsLessonPlayable(ctx, "1", 5)
	assert.ErrorIs(t, err, ErrLessonLocked)
	var locked *LockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, 5, locked.LessonID)
}

func TestRecordGameCompletion_UnlocksSuccessor(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	res, err := s.RecordGameCompletion(ctx, "1", 4, stats(75))
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.True(t, res.FirstCompletion)
	assert.Equal(t, 5, res.UnlockedLesson)
	assert.Equal(t, StatusCompleted, res.Progress.Status)
	assert.Equal(t, 75, res.Progress.HighScore)
	assert.Equal(t, 1, res.Progress.Attempts)
	require.NotNil(t, res.Progress.CompletedAt)

	assert.Equal(t, StatusInProgress, s.GetLessonProgress(ctx, "1", 5).Status)

	sp := s.GetSubjectProgress(ctx, "1")
	assert.Equal(t, 6, sp.TotalLessons)
	assert.Equal(t, 1, sp.CompletedLessons)
	assert.Equal(t, 5, sp.CurrentLesson)
	assert.Equal(t, 16, sp.ProgressPercentage)
	assert.Equal(t, "Mathematics", sp.SubjectName)

	// A second passing game neither re-stamps completion nor unlocks again.
	completedAt := *res.Progress.CompletedAt
	res2, err := s.RecordGameCompletion(ctx, "1", 4, stats(90))
	require.NoError(t, err)
	assert.False(t, res2.FirstCompletion)
	assert.Zero(t, res2.UnlockedLesson)
	assert.Equal(t, completedAt, *res2.Progress.CompletedAt)
	assert.InDelta(t, 82.5, res2.Progress.AverageScore, 0.001)
	assert.Equal(t, 90, res2.Progress.HighScore)
}

func TestRecordGameCompletion_PassThresholdAlwaysCompletes(t *testing.T) {
	ctx := context.Background()
	for _, prior := range []int{0, 59, 60, 100} {
		s := newTestStore(t, nil)
		cfg := s.cfg
		cfg.LenientCompletion = false
		s.cfg = cfg
		if prior > 0 {
			_, err := s.UpdateLessonProgress(ctx, "1", 4, LessonUpdate{AverageScore: ptr(float64(prior)), Attempts: ptr(3)})
			require.NoError(t, err)
		}
		res, err := s.RecordGameCompletion(ctx, "1", 4, stats(60))
		require.NoError(t, err)
		if res.Progress.Status != StatusCompleted {
			t.Errorf("prior avg %d: status = %q, want completed", prior, res.Progress.Status)
		}
	}
}

func TestRecordGameCompletion_LenientRule(t *testing.T) {
	ctx := context.Background()

	s := newTestStore(t, nil)
	res, err := s.RecordGameCompletion(ctx, "1", 4, stats(25))
	require.NoError(t, err)
	assert.True(t, res.Passed, "score above a zero average completes under the lenient rule")

	strict := New(kv.NewMemory(), curriculum.Default(), Config{PassThreshold: 60, HistoryLimit: 10})
	res, err = strict.RecordGameCompletion(ctx, "1", 4, stats(25))
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Equal(t, StatusInProgress, res.Progress.Status)
	assert.Zero(t, res.UnlockedLesson)
}

func TestRecordGameCompletion_LockedLesson(t *testing.T) {
	s := newTestStore(t, nil)
	_, err := s.RecordGameCompletion(context.Background(), "1", 6, stats(100))
	assert.ErrorIs(t, err, ErrLessonLocked)
	assert.Empty(t, s.AllProgress(context.Background()))
}

func TestUnlockNextLesson_Idempotent(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	next, unlocked, err := s.UnlockNextLesson(ctx, "1", 4)
	require.NoError(t, err)
	assert.Equal(t, 5, next)
	assert.True(t, unlocked)
	before := s.GetLessonProgress(ctx, "1", 5)

	next, unlocked, err = s.UnlockNextLesson(ctx, "1", 4)
	require.NoError(t, err)
	assert.Equal(t, 5, next)
	assert.False(t, unlocked)
	assert.Equal(t, before, s.GetLessonProgress(ctx, "1", 5))

	_, unlocked, err = s.UnlockNextLesson(ctx, "1", 9)
	require.NoError(t, err)
	assert.False(t, unlocked, "last lesson has no successor")
}

func TestUpdateLessonProgress_StatusNeverRegresses(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	lp, err := s.UpdateLessonProgress(ctx, "1", 4, LessonUpdate{Status: ptr(StatusCompleted)})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, lp.Status)
	require.NotNil(t, lp.LastPlayed)

	lp, err = s.UpdateLessonProgress(ctx, "1", 4, LessonUpdate{Status: ptr(StatusLocked), HighScore: ptr(40)})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, lp.Status)
	assert.Equal(t, 40, lp.HighScore)
}

func TestUsedQuestions(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, s.MarkQuestionUsed(ctx, "1", 4, 7))
	require.NoError(t, s.MarkQuestionUsed(ctx, "1", 4, 3))
	require.NoError(t, s.MarkQuestionUsed(ctx, "1", 4, 7))

	ids, err := s.UsedQuestionIDs(ctx, "1", 4)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 3}, ids)

	require.NoError(t, s.ResetUsedQuestions(ctx, "1", 4))
	ids, err = s.UsedQuestionIDs(ctx, "1", 4)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestHistory_RingBuffer(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	for i := range 12 {
		_, err := s.RecordGameCompletion(ctx, "1", 4, stats(i*5))
		require.NoError(t, err)
	}
	h, err := s.History(ctx, "1", 4)
	require.NoError(t, err)
	require.Len(t, h, 10)
	assert.Equal(t, 10, h[0].Score)
	assert.Equal(t, 55, h[9].Score)
}

func TestPersistenceSharedAcrossStores(t *testing.T) {
	backend := kv.NewMemory()
	ctx := context.Background()

	_, err := newTestStore(t, backend).RecordGameCompletion(ctx, "1", 4, stats(80))
	require.NoError(t, err)

	other := newTestStore(t, backend)
	assert.Equal(t, StatusCompleted, other.GetLessonProgress(ctx, "1", 4).Status)
	assert.Equal(t, StatusInProgress, other.GetLessonProgress(ctx, "1", 5).Status)
	h, err := other.History(ctx, "1", 4)
	require.NoError(t, err)
	assert.Len(t, h, 1)
}

func TestWriteFailureKeepsMemory(t *testing.T) {
	backend := &flakyKV{Memory: kv.NewMemory(), failSet: true}
	s := newTestStore(t, backend)
	ctx := context.Background()

	_, err := s.RecordGameCompletion(ctx, "1", 4, stats(80))
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)

	assert.Equal(t, StatusCompleted, s.GetLessonProgress(ctx, "1", 4).Status)
	assert.Equal(t, StatusInProgress, s.GetLessonProgress(ctx, "1", 5).Status)

	backend.mu.Lock()
	backend.failSet = false
	backend.mu.Unlock()
	require.NoError(t, s.MarkQuestionUsed(ctx, "1", 4, 1))
	assert.Equal(t, StatusCompleted, newTestStore(t, backend).GetLessonProgress(ctx, "1", 4).Status)
}

func TestReadFailureUsesMemory(t *testing.T) {
	backend := &flakyKV{Memory: kv.NewMemory()}
	s := newTestStore(t, backend)
	ctx := context.Background()

	require.NoError(t, s.MarkQuestionUsed(ctx, "1", 4, 9))
	backend.mu.Lock()
	backend.failRead = true
	backend.mu.Unlock()

	ids, err := s.UsedQuestionIDs(ctx, "1", 4)
	require.NoError(t, err)
	assert.Equal(t, []int{9}, ids)
}

func TestResetSubjectAndClearAll(t *testing.T) {
	backend := kv.NewMemory()
	s := newTestStore(t, backend)
	ctx := context.Background()

	_, err := s.RecordGameCompletion(ctx, "1", 4, stats(80))
	require.NoError(t, err)
	_, err = s.RecordGameCompletion(ctx, "2", 1, stats(80))
	require.NoError(t, err)

	require.NoError(t, s.ResetSubject(ctx, "1"))
	assert.Equal(t, StatusLocked, s.GetLessonProgress(ctx, "1", 5).Status)
	assert.Equal(t, StatusCompleted, s.GetLessonProgress(ctx, "2", 1).Status)
	keys, err := backend.Keys(ctx, kv.HistoryPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"history:2:1"}, keys)

	require.NoError(t, s.ClearAll(ctx))
	assert.Empty(t, s.AllProgress(ctx))
	keys, err = backend.Keys(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	_, err := s.RecordGameCompletion(ctx, "1", 4, stats(80))
	require.NoError(t, err)
	require.NoError(t, s.MarkQuestionUsed(ctx, "1", 5, 12))
	_, err = s.RecordGameCompletion(ctx, "3", 1, stats(40))
	require.NoError(t, err)

	before := s.AllProgress(ctx)
	data, err := s.Export(ctx)
	require.NoError(t, err)

	require.NoError(t, s.ClearAll(ctx))
	require.Empty(t, s.AllProgress(ctx))

	require.NoError(t, s.Import(ctx, data))
	assert.Equal(t, before, s.AllProgress(ctx))

	h, err := s.History(ctx, "1", 4)
	require.NoError(t, err)
	assert.Len(t, h, 1)

	fresh := newTestStore(t, nil)
	require.NoError(t, fresh.Import(ctx, data))
	assert.Equal(t, before, fresh.AllProgress(ctx))
}

func TestImportRejectsBadStatus(t *testing.T) {
	s := newTestStore(t, nil)
	err := s.Import(context.Background(), []byte(`{"version":1,"progression":{"1":{"subjectId":"1","lessons":{"4":{"lessonId":4,"status":"mastered"}}}}}`))
	assert.Error(t, err)
}

func TestImportBareMap(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()
	err := s.Import(ctx, []byte(`{"2":{"subjectId":"2","lessons":{"1":{"lessonId":1,"subjectId":"2","status":"completed","usedQuestionIds":[]}}}}`))
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s.GetLessonProgress(ctx, "2", 1).Status)
}

func ptr[T any](v T) *T { return &v }
