package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/quizrace/internal/analytics"
	"github.com/abhisek/quizrace/internal/app"
	"github.com/abhisek/quizrace/internal/catalog"
	"github.com/abhisek/quizrace/internal/config"
	"github.com/abhisek/quizrace/internal/curriculum"
	"github.com/abhisek/quizrace/internal/game"
	"github.com/abhisek/quizrace/internal/kv"
	"github.com/abhisek/quizrace/internal/llm"
	"github.com/abhisek/quizrace/internal/logging"
	"github.com/abhisek/quizrace/internal/metrics"
	"github.com/abhisek/quizrace/internal/pool"
	"github.com/abhisek/quizrace/internal/progression"
	"github.com/abhisek/quizrace/internal/question"
	"github.com/abhisek/quizrace/internal/questiongen"
	"github.com/abhisek/quizrace/internal/store"
)

// services is the process-wide object graph shared by the TUI, the HTTP
// server and the maintenance commands.
type services struct {
	cfg        *config.Config
	logger     *zap.Logger
	store      *store.Store
	events     store.EventRepo
	curriculum *curriculum.Map
	progress   *progression.Store
	chain      *questiongen.Chain
	engine     *game.Engine
	metrics    *metrics.Metrics

	closers []func() error
}

// Close releases everything newServices opened, last opened first.
func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("close failed", zap.Error(err))
		}
	}
	_ = s.logger.Sync()
}

// newServices wires storage, curriculum, question generation, progression,
// analytics and the game engine from cfg.
func newServices(ctx context.Context, cfg *config.Config) (*services, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	s := &services{cfg: cfg, logger: logger}
	if cfg.Metrics.Enabled {
		s.metrics = metrics.New()
	}

	if err := s.openStorage(); err != nil {
		s.Close()
		return nil, err
	}

	s.curriculum = curriculum.Default()
	if cfg.Curriculum.Path != "" {
		if s.curriculum, err = curriculum.Load(cfg.Curriculum.Path); err != nil {
			s.Close()
			return nil, err
		}
	}

	kvStore, err := s.openKV(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.progress = progression.New(kvStore, s.curriculum, cfg.Progression,
		progression.WithObserver(s.metrics),
		progression.WithLogger(logger))

	ids := question.NewIDSource()
	var primary questiongen.Generator
	if cfg.LLM.Enabled() {
		var recorder llm.EventRecorder
		if s.events != nil {
			recorder = s.events
		}
		provider, err := llm.NewProvider(ctx, cfg.LLM, recorder, logger)
		if err != nil {
			logger.Warn("LLM provider unavailable, using the offline question bank", zap.Error(err))
		} else {
			primary = questiongen.New(provider, questiongen.DefaultConfig(), ids, logger)
		}
	}
	s.chain = questiongen.NewChain(primary, questiongen.NewFallbackBank(ids), s.metrics, logger)

	sink, err := s.analyticsSink()
	if err != nil {
		s.Close()
		return nil, err
	}

	s.engine, err = game.NewEngine(cfg.Game, game.Deps{
		Progress: s.progress,
		Questions: pool.New(s.progress, s.chain, pool.DefaultConfig(),
			pool.WithObserver(s.metrics),
			pool.WithIDs(ids),
			pool.WithLogger(logger)),
		Catalog:    catalog.New(s.catalogSource(), logger),
		Curriculum: s.curriculum,
		Analytics:  sink,
		Metrics:    s.metrics,
		Logger:     logger,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// openStorage opens the sqlite database, which holds the LLM and game event
// logs. The memory backend runs without it.
func (s *services) openStorage() error {
	if s.cfg.Storage.Backend == config.BackendMemory {
		return nil
	}
	path := s.cfg.Storage.DBPath
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		path = p
	} else if err := store.EnsureDir(path); err != nil {
		return fmt.Errorf("create DB directory: %w", err)
	}

	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	s.store, s.events = st, st.EventRepo()
	s.closers = append(s.closers, st.Close)
	return nil
}

func (s *services) openKV(ctx context.Context) (kv.Store, error) {
	switch s.cfg.Storage.Backend {
	case config.BackendMemory:
		return kv.NewMemory(), nil
	case config.BackendRedis:
		r, err := kv.NewRedis(ctx, kv.RedisOptions{
			Addr:      s.cfg.Storage.RedisAddr,
			Password:  s.cfg.Storage.RedisPassword,
			DB:        s.cfg.Storage.RedisDB,
			Namespace: s.cfg.Storage.RedisNamespace,
		})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, r.Close)
		return r, nil
	default:
		return s.store.KV(), nil
	}
}

func (s *services) catalogSource() catalog.Source {
	switch c := s.cfg.Catalog; {
	case c.URL != "":
		return catalog.NewHTTPSource(c.URL, c.Timeout)
	case c.Dir != "":
		return catalog.FileSource{Dir: c.Dir}
	}
	return nil
}

func (s *services) analyticsSink() (analytics.Sink, error) {
	var sinks analytics.Multi
	for _, name := range s.cfg.Analytics.Sinks {
		switch name {
		case config.SinkLog:
			sinks = append(sinks, analytics.LogSink{Logger: s.logger.Named("analytics")})
		case config.SinkStore:
			if s.events == nil {
				s.logger.Warn("store analytics sink needs sqlite storage, skipping")
				continue
			}
			sinks = append(sinks, analytics.StoreSink{Repo: s.events})
		case config.SinkAsynq:
			a := analytics.NewAsynqSink(s.cfg.Analytics.AsynqAddr)
			s.closers = append(s.closers, a.Close)
			sinks = append(sinks, a)
		default:
			return nil, fmt.Errorf("unknown analytics sink %q", name)
		}
	}
	if len(sinks) == 0 {
		return nil, nil
	}
	return sinks, nil
}

// runApp launches the TUI. Logs go to a file so they never reach the
// terminal.
func runApp(cmd *cobra.Command, subjectID string, lessonID int) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Log.File == "" {
		dir, err := store.DataDir()
		if err != nil {
			return err
		}
		cfg.Log.File = filepath.Join(dir, "quizrace.log")
		if err := store.EnsureDir(cfg.Log.File); err != nil {
			return err
		}
	}

	svc, err := newServices(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	if subjectID != "" {
		if _, ok := svc.curriculum.Subject(subjectID); !ok {
			return fmt.Errorf("unknown subject %q", subjectID)
		}
	}

	return app.Run(app.Options{
		Engine:     svc.engine,
		Progress:   svc.progress,
		Curriculum: svc.curriculum,
		SubjectID:  subjectID,
		LessonID:   lessonID,
	})
}

var errNoStore = errors.New("this command needs sqlite storage (QUIZRACE_STORAGE=sqlite)")
