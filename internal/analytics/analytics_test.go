package analytics

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/quizrace/internal/store"
)

type recordingSink struct {
	mu     sync.Mutex
	events []GameEndEvent
	err    error
}

func (r *recordingSink) Track(_ context.Context, ev GameEndEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func sampleEvent() GameEndEvent {
	return GameEndEvent{
		SessionID:       "s-1",
		SubjectID:       "1",
		LessonID:        4,
		Duration:        95 * time.Second,
		Score:           75,
		Points:          12,
		Lives:           3,
		Accuracy:        0.75,
		Difficulty:      "medium",
		LessonCompleted: true,
		Questions:       8,
		Correct:         6,
		Timestamp:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestMulti_JoinsErrors(t *testing.T) {
	ok := &recordingSink{}
	bad := &recordingSink{err: errors.New("boom")}

	err := Multi{ok, bad}.Track(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Len(t, ok.events, 1)
	assert.Len(t, bad.events, 1)
}

func TestDispatch_LogsFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	sink := &recordingSink{err: errors.New("offline")}

	<-Dispatch(sink, sampleEvent(), zap.New(core))
	assert.Equal(t, 1, logs.FilterMessage("analytics delivery failed").Len())
}

func TestDispatch_NilSink(t *testing.T) {
	select {
	case <-Dispatch(nil, sampleEvent(), nil):
	case <-time.After(time.Second):
		t.Fatal("dispatch with nil sink did not complete")
	}
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	require.NoError(t, LogSink{Logger: zap.New(core)}.Track(context.Background(), sampleEvent()))
	entries := logs.FilterMessage("game ended").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(75), entries[0].ContextMap()["score"])
}

func TestStoreSink(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, StoreSink{Repo: st.EventRepo()}.Track(ctx, sampleEvent()))

	events, err := st.EventRepo().QueryGameEvents(ctx, store.QueryOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "s-1", events[0].SessionID)
	assert.Equal(t, 75, events[0].Score)
	assert.True(t, events[0].LessonCompleted)
}

func TestTaskHandler_RoundTrip(t *testing.T) {
	task, err := NewTask(sampleEvent())
	require.NoError(t, err)
	assert.Equal(t, TypeGameEnd, task.Type())

	sink := &recordingSink{}
	require.NoError(t, TaskHandler(sink).ProcessTask(context.Background(), task))
	require.Len(t, sink.events, 1)
	assert.Equal(t, sampleEvent(), sink.events[0])
}

func TestTaskHandler_BadPayloadSkipsRetry(t *testing.T) {
	err := TaskHandler(&recordingSink{}).ProcessTask(context.Background(), asynq.NewTask(TypeGameEnd, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
