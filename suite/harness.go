// Package suite holds the browser tests for the live site and the fixture
// they share. Tests select themselves by category through UITEST_CATEGORIES
// and skip in -short mode or when no browser can be started.
package suite

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"site_uitest/domain/interfaces"
	"site_uitest/domain/registry"
	"site_uitest/infrastructure/browser"
	"site_uitest/infrastructure/config"
	"site_uitest/infrastructure/security"
	"site_uitest/infrastructure/storage"
)

// Harness owns what tests of one package share: the configuration, the
// read-only selector registry, the artifact store and one browser session
// per engine. It is created in TestMain and closed after m.Run.
type Harness struct {
	mu       sync.Mutex
	loaded   bool
	err      error
	cfg      *config.Config
	logger   *logrus.Logger
	registry *registry.Registry
	store    interfaces.ArtifactStore
	guard    *security.Guard
	sessions map[string]*browser.Session
	failed   map[string]error
}

// NewHarness - creates an empty harness; nothing is loaded until a test asks
func NewHarness() *Harness {
	return &Harness{
		sessions: map[string]*browser.Session{},
		failed:   map[string]error{},
	}
}

// load reads the configuration, the snapshot and the artifact directory once
func (h *Harness) load() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.loaded {
		return h.err
	}
	h.loaded = true

	cfg, err := config.FromEnv()
	if err != nil {
		h.err = err
		return err
	}
	root, err := moduleRoot()
	if err != nil {
		h.err = err
		return err
	}
	cfg.ResolvePaths(root)

	logger := config.NewLogger(cfg.LogLevel, os.Stderr)
	if os.Getenv("UITEST_RUN_ID") != "" {
		// the event stream on stdout is parsed by the runner
		logger.SetOutput(io.Discard)
		logger.SetLevel(logrus.WarnLevel)
	}

	reg, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		h.err = fmt.Errorf("selector snapshot: %w", err)
		return h.err
	}
	store, err := storage.NewArtifactStore(cfg.ArtifactsDir, os.Getenv("UITEST_RUN_ID"))
	if err != nil {
		h.err = err
		return err
	}

	h.cfg = cfg
	h.logger = logger
	h.registry = reg
	h.store = store
	h.guard = security.NewGuard(cfg.AllowSubmit, logger)
	return nil
}

// session returns the running session for engine, launching it on first use.
// A failed launch is remembered so later tests skip without retrying.
func (h *Harness) session(engine string) (*browser.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[engine]; ok {
		return s, nil
	}
	if err, ok := h.failed[engine]; ok {
		return nil, err
	}

	cfg := *h.cfg
	cfg.Browser = engine
	s, err := browser.Launch(&cfg, h.logger)
	if err != nil {
		h.failed[engine] = err
		return nil, err
	}
	h.sessions[engine] = s
	return s, nil
}

// Close - shuts down every launched browser
func (h *Harness) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for engine, s := range h.sessions {
		if err := s.Close(); err != nil && h.logger != nil {
			h.logger.Warnf("Failed to close %s: %v", engine, err)
		}
	}
	h.sessions = map[string]*browser.Session{}
}

// moduleRoot walks up from the working directory to the directory holding go.mod
func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found above the working directory")
		}
		dir = parent
	}
}
