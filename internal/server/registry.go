package server

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/quizrace/internal/game"
)

// DefaultSessionLinger is how long a finished race stays readable.
const DefaultSessionLinger = 2 * time.Minute

// Registry tracks the live sessions and the goroutine driving each one.
// A finished race is evicted once it has lingered without a reset.
type Registry struct {
	logger *zap.Logger
	linger time.Duration

	mu       sync.Mutex
	sessions map[string]*liveSession
}

type liveSession struct {
	machine *game.Machine
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRegistry returns an empty registry. A non-positive linger means
// DefaultSessionLinger.
func NewRegistry(logger *zap.Logger, linger time.Duration) *Registry {
	if linger <= 0 {
		linger = DefaultSessionLinger
	}
	return &Registry{logger: logger, linger: linger, sessions: make(map[string]*liveSession)}
}

// Add registers a started machine and runs its real-time loop.
func (r *Registry) Add(m *game.Machine) {
	ctx, cancel := context.WithCancel(context.Background())
	ls := &liveSession{machine: m, cancel: cancel, done: make(chan struct{})}

	r.mu.Lock()
	r.sessions[m.ID()] = ls
	r.mu.Unlock()

	go func() {
		defer close(ls.done)
		for {
			m.Run(ctx)
			if ctx.Err() != nil || m.Closed() {
				return
			}
			linger := time.NewTimer(r.linger)
			select {
			case <-ctx.Done():
				linger.Stop()
				return
			case <-m.Restarted():
				linger.Stop()
			case <-linger.C:
				r.evict(m.ID(), ls)
				return
			}
		}
	}()
}

// evict drops a finished session from its own loop goroutine, so it must
// not wait on done.
func (r *Registry) evict(id string, ls *liveSession) {
	r.mu.Lock()
	if r.sessions[id] == ls {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	ls.cancel()
	ls.machine.Close()
	r.logger.Debug("finished session evicted", zap.String("session", id))
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*game.Machine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ls, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	return ls.machine, true
}

// IDs lists the live session ids.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Remove stops and closes a session. It reports whether it existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	ls, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return false
	}
	ls.stop()
	r.logger.Debug("session removed", zap.String("session", id))
	return true
}

// CloseAll stops every session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*liveSession)
	r.mu.Unlock()

	for _, ls := range all {
		ls.stop()
	}
}

func (ls *liveSession) stop() {
	ls.cancel()
	<-ls.done
	ls.machine.Close()
}
