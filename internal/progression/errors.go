package progression

import (
	"errors"
	"fmt"
)

// ErrLessonLocked matches any *LockedError.
var ErrLessonLocked = errors.New("lesson is locked")

// LockedError rejects play on a locked lesson.
type LockedError struct {
	SubjectID string
	LessonID  int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("lesson %d of subject %s is locked", e.LessonID, e.SubjectID)
}

func (e *LockedError) Is(target error) bool { return target == ErrLessonLocked }

// PersistenceError means a change was applied in memory but could not be
// written to the backing store.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("progression %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
