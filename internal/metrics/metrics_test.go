package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_Exposition(t *testing.T) {
	m := New()
	m.GameStarted("1")
	m.GameStarted("")
	m.GameFinished("1", "questions")
	m.Answered(true)
	m.Answered(true)
	m.Answered(false)
	m.QuestionsGenerated("fallback", 5)
	m.PoolWrapped()
	m.PersistenceFailed()

	out := scrape(t, m)
	assert.Contains(t, out, `quizrace_games_started_total{subject="1"} 1`)
	assert.Contains(t, out, `quizrace_games_started_total{subject="practice"} 1`)
	assert.Contains(t, out, `quizrace_games_finished_total{reason="questions",subject="1"} 1`)
	assert.Contains(t, out, `quizrace_answers_total{result="correct"} 2`)
	assert.Contains(t, out, `quizrace_answers_total{result="incorrect"} 1`)
	assert.Contains(t, out, `quizrace_questions_generated_total{source="fallback"} 5`)
	assert.Contains(t, out, "quizrace_pool_wraps_total 1")
	assert.Contains(t, out, "quizrace_persistence_errors_total 1")
	assert.Contains(t, out, "quizrace_active_sessions 1")
	assert.Contains(t, out, "go_goroutines")
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.GameStarted("1")
		m.GameFinished("1", "lives")
		m.Answered(false)
		m.QuestionsGenerated("llm_strict", 2)
		m.PoolWrapped()
		m.PersistenceFailed()
	})
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}
