package question

import "sync"

// SyntheticIDBase is the first id handed out to generated questions.
// Catalog ids stay below it.
const SyntheticIDBase = 10000

// IDSource allocates synthetic question ids. One source is created per
// process and shared by every generator so ids never collide.
type IDSource struct {
	mu   sync.Mutex
	next int
}

// NewIDSource returns a source starting at SyntheticIDBase.
func NewIDSource() *IDSource {
	return &IDSource{next: SyntheticIDBase}
}

// Next returns a fresh id.
func (s *IDSource) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next < SyntheticIDBase {
		s.next = SyntheticIDBase
	}
	id := s.next
	s.next++
	return id
}

// Observe moves the source past id, so an id persisted by an earlier
// process is never handed out again. Catalog ids are ignored.
func (s *IDSource) Observe(id int) {
	if !IsSynthetic(id) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id >= s.next {
		s.next = id + 1
	}
}

// IsSynthetic reports whether id was produced by an IDSource.
func IsSynthetic(id int) bool {
	return id >= SyntheticIDBase
}
