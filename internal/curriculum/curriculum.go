// Package curriculum holds the ordered lesson sequence and first-lesson
// allow-list of every subject. The map is loaded once at startup and passed
// to whoever needs it.
package curriculum

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultDoc []byte

// SupportedMajor is the document major version this build understands.
const SupportedMajor = "v1"

// Lesson is one gated unit of a subject.
type Lesson struct {
	ID    int    `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	Topic string `yaml:"topic" json:"topic"`
}

// Subject is an ordered list of lessons.
type Subject struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Category string `yaml:"category" json:"category"`

	// FirstLessons start unlocked.
	FirstLessons []int    `yaml:"firstLessons" json:"firstLessons"`
	Lessons      []Lesson `yaml:"lessons" json:"lessons"`
}

// Map is the curriculum for all subjects.
type Map struct {
	Version  string     `yaml:"version" json:"version"`
	Subjects []*Subject `yaml:"subjects" json:"subjects"`

	byID map[string]*Subject
}

// Default returns the built-in curriculum.
func Default() *Map {
	m, err := Parse(defaultDoc)
	if err != nil {
		panic(fmt.Sprintf("built-in curriculum is invalid: %v", err))
	}
	return m
}

// Load reads a curriculum document from path.
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curriculum: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("curriculum %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and validates a YAML curriculum document.
func Parse(data []byte) (*Map, error) {
	var m Map
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	m.index()
	return &m, nil
}

func (m *Map) validate() error {
	if !semver.IsValid(m.Version) {
		return fmt.Errorf("invalid version %q", m.Version)
	}
	if semver.Major(m.Version) != SupportedMajor {
		return fmt.Errorf("unsupported version %s (want %s.x)", m.Version, SupportedMajor)
	}

	var errs []string
	seen := make(map[string]bool, len(m.Subjects))
	for _, s := range m.Subjects {
		if s.ID == "" {
			errs = append(errs, "subject with empty id")
			continue
		}
		if seen[s.ID] {
			errs = append(errs, fmt.Sprintf("duplicate subject id %q", s.ID))
		}
		seen[s.ID] = true

		if len(s.Lessons) == 0 {
			errs = append(errs, fmt.Sprintf("subject %q has no lessons", s.ID))
		}
		lessonIDs := make(map[int]bool, len(s.Lessons))
		for _, l := range s.Lessons {
			if lessonIDs[l.ID] {
				errs = append(errs, fmt.Sprintf("subject %q: duplicate lesson id %d", s.ID, l.ID))
			}
			lessonIDs[l.ID] = true
		}
		for _, id := range s.FirstLessons {
			if !lessonIDs[id] {
				errs = append(errs, fmt.Sprintf("subject %q: first lesson %d is not in the lesson list", s.ID, id))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid curriculum:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (m *Map) index() {
	m.byID = make(map[string]*Subject, len(m.Subjects))
	for _, s := range m.Subjects {
		m.byID[s.ID] = s
	}
}

// Subject returns the subject with the given id.
func (m *Map) Subject(id string) (*Subject, bool) {
	if m.byID == nil {
		m.index()
	}
	s, ok := m.byID[id]
	return s, ok
}

// LessonOrder returns the ordered lesson ids of a subject.
func (m *Map) LessonOrder(subjectID string) []int {
	s, ok := m.Subject(subjectID)
	if !ok {
		return nil
	}
	ids := make([]int, len(s.Lessons))
	for i, l := range s.Lessons {
		ids[i] = l.ID
	}
	return ids
}

// Lesson looks up a lesson by subject and id.
func (m *Map) Lesson(subjectID string, lessonID int) (Lesson, bool) {
	s, ok := m.Subject(subjectID)
	if !ok {
		return Lesson{}, false
	}
	for _, l := range s.Lessons {
		if l.ID == lessonID {
			return l, true
		}
	}
	return Lesson{}, false
}

// IsFirstLesson reports whether a lesson starts unlocked.
func (m *Map) IsFirstLesson(subjectID string, lessonID int) bool {
	s, ok := m.Subject(subjectID)
	if !ok {
		return false
	}
	return slices.Contains(s.FirstLessons, lessonID)
}

// Successor returns the lesson that follows lessonID, if any.
func (m *Map) Successor(subjectID string, lessonID int) (int, bool) {
	order := m.LessonOrder(subjectID)
	i := slices.Index(order, lessonID)
	if i < 0 || i+1 >= len(order) {
		return 0, false
	}
	return order[i+1], true
}

// TotalLessons returns the lesson count of a subject.
func (m *Map) TotalLessons(subjectID string) int {
	s, ok := m.Subject(subjectID)
	if !ok {
		return 0
	}
	return len(s.Lessons)
}

// Category returns the question category tag of a subject, or "general".
func (m *Map) Category(subjectID string) string {
	if s, ok := m.Subject(subjectID); ok && s.Category != "" {
		return s.Category
	}
	return "general"
}

// Name returns the display name of a subject, falling back to its id.
func (m *Map) Name(subjectID string) string {
	if s, ok := m.Subject(subjectID); ok && s.Name != "" {
		return s.Name
	}
	return subjectID
}
