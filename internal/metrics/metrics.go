// Package metrics exposes gameplay counters on a private prometheus registry.
// Every method is safe on a nil *Metrics so callers never need to check.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quizrace"

// Metrics holds the process-wide collectors.
type Metrics struct {
	registry *prometheus.Registry

	gamesStarted       *prometheus.CounterVec
	gamesFinished      *prometheus.CounterVec
	answers            *prometheus.CounterVec
	questionsGenerated *prometheus.CounterVec
	poolWraps          prometheus.Counter
	persistenceErrors  prometheus.Counter
	activeSessions     prometheus.Gauge
}

// New registers all collectors plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		gamesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Games started, by subject.",
		}, []string{"subject"}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Games finished, by subject and end reason.",
		}, []string{"subject", "reason"}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Answers submitted, by result.",
		}, []string{"result"}),
		questionsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_generated_total",
			Help:      "Questions produced by the generation chain, by source.",
		}, []string{"source"}),
		poolWraps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_wraps_total",
			Help:      "Lessons whose question pool wrapped around.",
		}),
		persistenceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_errors_total",
			Help:      "Failed progression writes.",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently playing.",
		}),
	}
	m.registry.MustRegister(
		m.gamesStarted,
		m.gamesFinished,
		m.answers,
		m.questionsGenerated,
		m.poolWraps,
		m.persistenceErrors,
		m.activeSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) GameStarted(subject string) {
	if m == nil {
		return
	}
	m.gamesStarted.WithLabelValues(label(subject)).Inc()
	m.activeSessions.Inc()
}

// GameFinished records a game end. reason is "lives" or "questions".
func (m *Metrics) GameFinished(subject, reason string) {
	if m == nil {
		return
	}
	m.gamesFinished.WithLabelValues(label(subject), reason).Inc()
	m.activeSessions.Dec()
}

func (m *Metrics) Answered(correct bool) {
	if m == nil {
		return
	}
	result := "incorrect"
	if correct {
		result = "correct"
	}
	m.answers.WithLabelValues(result).Inc()
}

// QuestionsGenerated implements questiongen.SourceRecorder.
func (m *Metrics) QuestionsGenerated(source string, n int) {
	if m == nil {
		return
	}
	m.questionsGenerated.WithLabelValues(source).Add(float64(n))
}

// PoolWrapped implements pool.WrapObserver.
func (m *Metrics) PoolWrapped() {
	if m == nil {
		return
	}
	m.poolWraps.Inc()
}

// PersistenceFailed implements progression.ErrorObserver.
func (m *Metrics) PersistenceFailed() {
	if m == nil {
		return
	}
	m.persistenceErrors.Inc()
}

func label(subject string) string {
	if subject == "" {
		return "practice"
	}
	return subject
}
