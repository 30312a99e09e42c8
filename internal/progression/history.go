package progression

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/quizrace/internal/kv"
)

// History returns up to HistoryLimit recent games of a lesson, oldest first.
func (s *Store) History(ctx context.Context, subjectID string, lessonID int) ([]GameStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.historyLocked(ctx, kv.HistoryKey(subjectID, lessonID))), nil
}

func (s *Store) historyLocked(ctx context.Context, key string) []GameStats {
	data, err := s.kv.Get(ctx, key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return s.history[key]
	case err != nil:
		s.logger.Warn("read history failed, using in-memory copy", zap.String("key", key), zap.Error(err))
		return s.history[key]
	}

	var list []GameStats
	if err := json.Unmarshal(data, &list); err != nil {
		s.logger.Warn("decode history failed, using in-memory copy", zap.String("key", key), zap.Error(err))
		return s.history[key]
	}
	s.history[key] = list
	return list
}

func (s *Store) appendHistoryLocked(ctx context.Context, subjectID string, lessonID int, stats GameStats) error {
	key := kv.HistoryKey(subjectID, lessonID)
	list := append(slices.Clone(s.historyLocked(ctx, key)), stats)
	if over := len(list) - s.cfg.HistoryLimit; over > 0 {
		list = list[over:]
	}
	s.history[key] = list
	return s.writeHistoryLocked(ctx, key, list)
}

func (s *Store) writeHistoryLocked(ctx context.Context, key string, list []GameStats) error {
	data, err := json.Marshal(list)
	if err != nil {
		return s.writeFailed("encode", key, err)
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		return s.writeFailed("write", key, err)
	}
	return nil
}

func (s *Store) deleteHistoryLocked(ctx context.Context, prefix string) error {
	for key := range s.history {
		if strings.HasPrefix(key, prefix) {
			delete(s.history, key)
		}
	}
	keys, err := s.kv.Keys(ctx, prefix)
	if err != nil {
		return s.writeFailed("list", prefix, err)
	}
	var errs []error
	for _, key := range keys {
		if err := s.kv.Delete(ctx, key); err != nil {
			errs = append(errs, s.writeFailed("delete", key, err))
		}
	}
	return errors.Join(errs...)
}
