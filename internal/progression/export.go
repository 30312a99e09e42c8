package progression

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/quizrace/internal/kv"
)

// exportVersion is bumped when the export document changes shape.
const exportVersion = 1

// Export is the portable backup document.
type Export struct {
	Version     int                         `json:"version"`
	ExportedAt  time.Time                   `json:"exportedAt"`
	Progression map[string]*SubjectProgress `json:"progression"`
	History     map[string][]GameStats      `json:"history,omitempty"`
}

// Export serializes every subject and every lesson history.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)

	doc := Export{
		Version:     exportVersion,
		ExportedAt:  s.stamp(),
		Progression: make(map[string]*SubjectProgress, len(s.subjects)),
		History:     make(map[string][]GameStats),
	}
	for id, sp := range s.subjects {
		c := sp.clone()
		doc.Progression[id] = &c
	}

	keys, err := s.kv.Keys(ctx, kv.HistoryPrefix)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	for k := range s.history {
		keys = append(keys, k)
	}
	for _, key := range keys {
		if _, done := doc.History[key]; done {
			continue
		}
		if list := s.historyLocked(ctx, key); len(list) > 0 {
			doc.History[key] = list
		}
	}

	return json.MarshalIndent(doc, "", "  ")
}

// Import replaces all progress with the contents of an export document.
// A bare {subjectId: SubjectProgress} map is accepted as well.
func (s *Store) Import(ctx context.Context, data []byte) error {
	var doc Export
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode export: %w", err)
	}
	if doc.Progression == nil {
		var bare map[string]*SubjectProgress
		if err := json.Unmarshal(data, &bare); err != nil {
			return fmt.Errorf("decode progression: %w", err)
		}
		doc.Progression = bare
	}
	if doc.Version > exportVersion {
		return fmt.Errorf("unsupported export version %d", doc.Version)
	}
	for id, sp := range doc.Progression {
		if sp == nil {
			return fmt.Errorf("subject %q: empty progress", id)
		}
		for lid, lp := range sp.Lessons {
			if !lp.Status.Valid() {
				return fmt.Errorf("subject %q lesson %d: invalid status %q", id, lid, lp.Status)
			}
		}
		normalizeSubject(id, sp)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if err := s.deleteHistoryLocked(ctx, kv.HistoryPrefix); err != nil {
		errs = append(errs, err)
	}
	s.subjects = doc.Progression
	for key, list := range doc.History {
		if over := len(list) - s.cfg.HistoryLimit; over > 0 {
			list = list[over:]
		}
		s.history[key] = list
		if err := s.writeHistoryLocked(ctx, key, list); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.saveLocked(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
