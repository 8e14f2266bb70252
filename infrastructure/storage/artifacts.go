package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"site_uitest/domain/interfaces"
)

const manifestFile = "manifest.json"

// LocalRun keys artifacts recorded by a plain `go test` outside the runner
const LocalRun = "local"

var unsafePathChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// manifest indexes artifact paths by run id, then by test name
type manifest struct {
	Runs map[string]map[string][]string `json:"runs"`
}

// artifactStore keeps screenshots and videos under one directory per test
// and indexes them in manifest.json. Parallel tests share one store, and
// separate test processes may share one directory, so the manifest is
// re-read before every write.
type artifactStore struct {
	root  string
	runID string
	mu    sync.Mutex
	now   func() time.Time
}

// NewArtifactStore - creates the artifact directory if needed. Files
// recorded through the store belong to runID; an empty id means LocalRun.
func NewArtifactStore(root, runID string) (interfaces.ArtifactStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifacts directory: %w", err)
	}
	if runID == "" {
		runID = LocalRun
	}
	return &artifactStore{root: root, runID: runID, now: time.Now}, nil
}

// PathFor - returns <root>/<test>/<kind>_<timestamp>.<ext>, creating the
// test directory
func (s *artifactStore) PathFor(test, kind, ext string) (string, error) {
	dir := filepath.Join(s.root, SafeName(test))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}
	name := fmt.Sprintf("%s_%s.%s", SafeName(kind), s.now().Format("20060102_150405.000"), strings.TrimPrefix(ext, "."))
	return filepath.Join(dir, name), nil
}

// Record - adds path to the test's entry under the store's run
func (s *artifactStore) Record(test, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return err
	}
	if rel, err := filepath.Rel(s.root, path); err == nil && !strings.HasPrefix(rel, "..") {
		path = rel
	}
	tests := m.Runs[s.runID]
	if tests == nil {
		tests = make(map[string][]string)
		m.Runs[s.runID] = tests
	}
	for _, existing := range tests[test] {
		if existing == path {
			return nil
		}
	}
	tests[test] = append(tests[test], path)
	sort.Strings(tests[test])
	return s.save(m)
}

// Artifacts - returns the files recorded during runID per test; paths are
// relative to the store root
func (s *artifactStore) Artifacts(runID string) (map[string][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if runID == "" {
		runID = LocalRun
	}
	m, err := s.load()
	if err != nil {
		return nil, err
	}
	if tests, ok := m.Runs[runID]; ok {
		return tests, nil
	}
	return make(map[string][]string), nil
}

func (s *artifactStore) load() (*manifest, error) {
	m := &manifest{Runs: make(map[string]map[string][]string)}
	data, err := os.ReadFile(filepath.Join(s.root, manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("failed to read artifact manifest: %w", err)
	}

	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to parse artifact manifest: %w", err)
	}
	if m.Runs == nil {
		m.Runs = make(map[string]map[string][]string)
	}
	return m, nil
}

func (s *artifactStore) save(m *manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	tmp := filepath.Join(s.root, manifestFile+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write artifact manifest: %w", err)
	}
	return os.Rename(tmp, filepath.Join(s.root, manifestFile))
}

// SafeName - turns a test name like TestHome/Hero into a file-system safe name
func SafeName(name string) string {
	return strings.Trim(unsafePathChars.ReplaceAllString(name, "_"), "_")
}
