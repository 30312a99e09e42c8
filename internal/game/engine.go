package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/quizrace/internal/analytics"
	"github.com/abhisek/quizrace/internal/curriculum"
	"github.com/abhisek/quizrace/internal/difficulty"
	"github.com/abhisek/quizrace/internal/logging"
	"github.com/abhisek/quizrace/internal/metrics"
)

// Deps are the process-wide services shared by every race.
type Deps struct {
	Progress   Progress
	Questions  QuestionSource
	Catalog    Catalog
	Curriculum *curriculum.Map
	Analytics  analytics.Sink
	Metrics    *metrics.Metrics
	Logger     *zap.Logger

	// Now and Spawn default to time.Now and a goroutine per call. Tests
	// replace them to drive the machine deterministically.
	Now   func() time.Time
	Spawn func(func())
}

// Engine creates race sessions. One Engine is built per process.
type Engine struct {
	deps Deps
	cfg  Config
}

// NewEngine validates cfg and returns an engine.
func NewEngine(cfg Config, deps Deps) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Spawn == nil {
		deps.Spawn = func(f func()) { go f() }
	}
	deps.Logger = logging.OrNop(deps.Logger).Named("game")
	return &Engine{deps: deps, cfg: cfg}, nil
}

// Config returns the engine's race tuning.
func (e *Engine) Config() Config { return e.cfg }

// NewMachine builds an unstarted session. An empty subjectID or zero
// lessonID gives a practice race.
func (e *Engine) NewMachine(subjectID string, lessonID int) *Machine {
	id := uuid.NewString()
	return &Machine{
		id:         id,
		subjectID:  subjectID,
		lessonID:   lessonID,
		cfg:        e.cfg,
		ctl:        difficulty.New(e.cfg.DifficultyThreshold),
		progress:   e.deps.Progress,
		questions:  e.deps.Questions,
		catalog:    e.deps.Catalog,
		curriculum: e.deps.Curriculum,
		sink:       e.deps.Analytics,
		metrics:    e.deps.Metrics,
		logger:     e.deps.Logger.With(zap.String("session", id)),
		now:        e.deps.Now,
		spawn:      e.deps.Spawn,
		ctx:        context.Background(),
		restarts:   make(chan struct{}, 1),
	}
}

// StartSession builds and starts a session. A locked lesson yields a
// *progression.LockedError and no session.
func (e *Engine) StartSession(ctx context.Context, subjectID string, lessonID int) (*Machine, error) {
	m := e.NewMachine(subjectID, lessonID)
	if err := m.Start(ctx); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}
