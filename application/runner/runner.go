// Package runner executes the browser suite as a `go test -json` child
// process and collects its results into a report.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"site_uitest/application/report"
	"site_uitest/domain/interfaces"
	"site_uitest/infrastructure/config"
)

// DefaultPackages is the suite package
var DefaultPackages = []string{"./suite/..."}

// Options selects what to run
type Options struct {
	Packages []string
	Run      string        // -run regexp
	Parallel int           // -parallel; zero keeps go test's default
	Timeout  time.Duration // -timeout; zero keeps go test's default
	Short    bool
	Dir      string    // working directory, the module root
	Raw      io.Writer // receives the raw event stream when set
}

// Runner starts `go test` with the suite configuration in its environment
type Runner struct {
	cfg       *config.Config
	artifacts interfaces.ArtifactStore
	logger    *logrus.Logger
	goBin     string
	now       func() time.Time
	newID     func() string
}

// New - creates a runner. artifacts may be nil.
func New(cfg *config.Config, artifacts interfaces.ArtifactStore, logger *logrus.Logger) *Runner {
	return &Runner{
		cfg:       cfg,
		artifacts: artifacts,
		logger:    logger,
		goBin:     "go",
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Args - the go test command line for opts
func (r *Runner) Args(opts Options) []string {
	args := []string{"test", "-json", "-count=1"}
	if opts.Parallel > 0 {
		args = append(args, "-parallel", strconv.Itoa(opts.Parallel))
	}
	if opts.Run != "" {
		args = append(args, "-run", opts.Run)
	}
	if opts.Timeout > 0 {
		args = append(args, "-timeout", opts.Timeout.String())
	}
	if opts.Short {
		args = append(args, "-short")
	}
	pkgs := opts.Packages
	if len(pkgs) == 0 {
		pkgs = DefaultPackages
	}
	return append(args, pkgs...)
}

// Run - runs the suite and returns its report. Failing tests are not an
// error; a run that produced no results at all is.
func (r *Runner) Run(ctx context.Context, opts Options) (*report.Report, error) {
	runID := r.newID()
	args := r.Args(opts)
	log := r.logger.WithFields(logrus.Fields{
		"run":        runID,
		"browser":    r.cfg.Browser,
		"categories": r.cfg.Categories.String(),
	})
	log.Infof("Running %s %v", r.goBin, args)

	cmd := exec.CommandContext(ctx, r.goBin, args...)
	cmd.Dir = opts.Dir
	cmd.Env = append(os.Environ(), r.cfg.Env()...)
	cmd.Env = append(cmd.Env, "UITEST_RUN_ID="+runID)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if opts.Raw != nil {
		cmd.Stdout = io.MultiWriter(&stdout, opts.Raw)
	}
	cmd.Stderr = &stderr
	// browsers started by the tests may outlive a killed go test and hold
	// its output open
	cmd.WaitDelay = 5 * time.Second

	started := r.now()
	runErr := cmd.Run()
	elapsed := r.now().Sub(started)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run %s cancelled: %w", runID, err)
	}

	results, err := report.Parse(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse test output: %w", err)
	}
	if stderr.Len() > 0 {
		log.Warnf("go test stderr:\n%s", stderr.String())
	}

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
	case errors.As(runErr, &exitErr) && len(results) > 0:
		// go test exits 1 when a test fails; the results say which
	default:
		return nil, fmt.Errorf("go test failed: %w: %s", runErr, stderr.String())
	}

	rep := &report.Report{
		RunID:      runID,
		StartedAt:  started,
		Duration:   elapsed,
		BaseURL:    r.cfg.BaseURL,
		Browser:    r.cfg.Browser,
		Categories: r.cfg.Categories.String(),
		Results:    results,
	}
	if r.artifacts != nil {
		manifest, err := r.artifacts.Artifacts(runID)
		if err != nil {
			log.Warnf("Failed to read artifact manifest: %v", err)
		} else {
			rep.Attach(manifest)
		}
	}

	s := rep.Summary()
	log.WithFields(logrus.Fields{
		"passed":  s.Passed,
		"failed":  s.Failed,
		"skipped": s.Skipped,
		"errors":  s.Errored,
	}).Infof("Run finished in %s", elapsed.Round(time.Millisecond))
	return rep, nil
}
