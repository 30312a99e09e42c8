// Package catalog loads the static per-lesson question sets.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/quizrace/internal/question"
)

// ErrUnavailable is returned when a source has no document for a subject.
var ErrUnavailable = errors.New("question catalog unavailable")

// Source fetches every catalog question of a subject. Filtering by lesson
// happens in Catalog.
type Source interface {
	Fetch(ctx context.Context, subjectID string) ([]question.Question, error)
}

// Document is the on-disk and over-the-wire catalog format.
type Document struct {
	Version   string              `yaml:"version" json:"version"`
	Subject   string              `yaml:"subject" json:"subject"`
	Questions []question.Question `yaml:"questions" json:"questions"`
}

func (d *Document) check() error {
	if d.Version == "" {
		return nil
	}
	if !semver.IsValid(d.Version) || semver.Major(d.Version) != "v1" {
		return fmt.Errorf("unsupported catalog version %q", d.Version)
	}
	return nil
}

// FileSource reads <Dir>/<subject>.yaml (or .yml, .json).
type FileSource struct {
	Dir string
}

func (s FileSource) Fetch(_ context.Context, subjectID string) ([]question.Question, error) {
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		path := filepath.Join(s.Dir, subjectID+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}

		var doc Document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		if err := doc.check(); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", path, err)
		}
		return doc.Questions, nil
	}
	return nil, fmt.Errorf("subject %q: %w", subjectID, ErrUnavailable)
}

// HTTPSource fetches <BaseURL>/<subject>.json in a single request.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSource returns a source with a bounded request timeout.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Fetch(ctx context.Context, subjectID string) ([]question.Question, error) {
	u := s.BaseURL + "/" + url.PathEscape(subjectID) + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("subject %q: %w", subjectID, ErrUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read catalog body: %w", err)
	}

	// Accept either a bare array or a Document envelope.
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var qs []question.Question
		if err := json.Unmarshal(body, &qs); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		return qs, nil
	}
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := doc.check(); err != nil {
		return nil, err
	}
	return doc.Questions, nil
}

// StaticSource serves questions held in memory, keyed by subject.
type StaticSource map[string][]question.Question

func (s StaticSource) Fetch(_ context.Context, subjectID string) ([]question.Question, error) {
	qs, ok := s[subjectID]
	if !ok {
		return nil, fmt.Errorf("subject %q: %w", subjectID, ErrUnavailable)
	}
	return qs, nil
}
