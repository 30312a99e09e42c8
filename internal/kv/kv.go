// Package kv is the key-value persistence boundary used by progression.
package kv

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("kv: key not found")

// Store is a byte-oriented key-value store.
type Store interface {
	// Get returns the value of key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set creates or replaces the value of key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists every key starting with prefix, in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// ProgressionKey holds all subjects' progress as one JSON document.
const ProgressionKey = "progression"

// HistoryPrefix prefixes every per-lesson history key.
const HistoryPrefix = "history:"

// HistoryKey returns the ring-buffer key of one lesson.
func HistoryKey(subjectID string, lessonID int) string {
	return fmt.Sprintf("%s%s:%d", HistoryPrefix, subjectID, lessonID)
}

// SubjectHistoryPrefix returns the prefix shared by a subject's history keys.
func SubjectHistoryPrefix(subjectID string) string {
	return HistoryPrefix + subjectID + ":"
}
