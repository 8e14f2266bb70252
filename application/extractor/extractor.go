// Package extractor inspects a rendered page and proposes registry entries
// for its interesting elements. It is a best-effort, maintainer-run tool:
// anything it cannot pin to exactly one element is reported and left out.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"site_uitest/domain/entities"
	"site_uitest/domain/interfaces"
	"site_uitest/domain/registry"
)

// Skip reasons
const (
	ReasonNoStableLocator = "no stable locator"
	ReasonAmbiguous       = "ambiguous locator"
	ReasonNotUnique       = "locator does not match exactly one element"
	ReasonInvalid         = "invalid locator"
	ReasonCountFailed     = "count failed"
)

// MergePolicy decides what happens to an existing snapshot on re-extraction
type MergePolicy string

const (
	// PolicyReplace regenerates the snapshot from this extraction only
	PolicyReplace MergePolicy = "replace"
	// PolicyMerge keeps existing entries and overrides them with fresh ones
	PolicyMerge MergePolicy = "merge"
)

// ParseMergePolicy - parses replace or merge
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch MergePolicy(s) {
	case PolicyReplace, PolicyMerge:
		return MergePolicy(s), nil
	}
	return "", fmt.Errorf("unknown merge policy %q (want replace or merge)", s)
}

// Skipped is a candidate left out of the snapshot
type Skipped struct {
	Candidate entities.ElementCandidate
	Locator   string
	Reason    string
	Matches   int
	Err       error
}

// Result is the outcome of one extraction
type Result struct {
	URL      string
	Accepted []entities.SelectorEntry
	Skipped  []Skipped
}

// defaultWorkers bounds concurrent Count calls against one source
const defaultWorkers = 4

// Extractor turns DOM candidates into validated, uniquely matching entries
type Extractor struct {
	heuristics Heuristics
	logger     *logrus.Logger
	workers    int
	now        func() time.Time
}

// check is the verdict on one proposal before naming
type check struct {
	skip  *Skipped
	count int
	err   error
}

// New - creates an extractor
func New(heuristics Heuristics, logger *logrus.Logger) *Extractor {
	return &Extractor{
		heuristics: heuristics,
		logger:     logger,
		workers:    defaultWorkers,
		now:        time.Now,
	}
}

// Extract - enumerates candidates from src and keeps those whose proposed
// locator is valid, proposed by no other candidate and matches exactly one
// live element
func (x *Extractor) Extract(ctx context.Context, src interfaces.DOMSource) (*Result, error) {
	candidates, err := src.Elements(ctx, x.heuristics.Filter())
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate elements on %s: %w", src.URL(), err)
	}
	x.logger.Infof("Inspecting %d candidate elements on %s", len(candidates), src.URL())

	result := &Result{URL: src.URL()}
	skip := func(s Skipped) {
		result.Skipped = append(result.Skipped, s)
		x.logger.WithFields(logrus.Fields{
			"element": s.Candidate.Describe(),
			"locator": s.Locator,
			"matches": s.Matches,
		}).Debugf("Skipped: %s", s.Reason)
	}

	var proposals []proposal
	byLocator := make(map[string]int)
	for _, c := range candidates {
		if !x.heuristics.Wants(c) {
			continue
		}
		entry, ok := x.heuristics.propose(c)
		if !ok {
			skip(Skipped{Candidate: c, Reason: ReasonNoStableLocator})
			continue
		}
		proposals = append(proposals, proposal{candidate: c, entry: entry})
		byLocator[locatorKey(entry)]++
	}

	// ambiguity and validity are decided up front; the live counts of the
	// remaining proposals run concurrently
	checks := make([]check, len(proposals))
	var g errgroup.Group
	g.SetLimit(x.workers)
	for i, p := range proposals {
		if n := byLocator[locatorKey(p.entry)]; n > 1 {
			checks[i].skip = &Skipped{Candidate: p.candidate, Locator: p.entry.Locator, Reason: ReasonAmbiguous, Matches: n}
			continue
		}
		if err := p.entry.Validate(); err != nil {
			checks[i].skip = &Skipped{Candidate: p.candidate, Locator: p.entry.Locator, Reason: ReasonInvalid, Err: err}
			continue
		}
		g.Go(func() error {
			if ctx.Err() == nil {
				checks[i].count, checks[i].err = src.Count(ctx, p.entry)
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	used := make(map[string]int)
	for i, p := range proposals {
		c := checks[i]
		switch {
		case c.skip != nil:
			skip(*c.skip)
			continue
		case c.err != nil:
			skip(Skipped{Candidate: p.candidate, Locator: p.entry.Locator, Reason: ReasonCountFailed, Err: c.err})
			continue
		case c.count != 1:
			skip(Skipped{Candidate: p.candidate, Locator: p.entry.Locator, Reason: ReasonNotUnique, Matches: c.count})
			continue
		}

		p.entry.Name = uniqueName(p.entry.Name, used)
		used[p.entry.Name]++
		result.Accepted = append(result.Accepted, p.entry)
	}

	x.logger.Infof("Accepted %d entries, skipped %d", len(result.Accepted), len(result.Skipped))
	return result, nil
}

// Write - saves the accepted entries to path under the given policy and
// returns what changed relative to the snapshot already there
func (x *Extractor) Write(result *Result, path string, policy MergePolicy) (registry.Changes, error) {
	fresh, err := registry.FromEntries(result.Accepted)
	if err != nil {
		return registry.Changes{}, fmt.Errorf("failed to build registry from extraction: %w", err)
	}

	existing, err := registry.Load(path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		existing = registry.New()
	case policy == PolicyReplace:
		x.logger.Warnf("Existing snapshot %s is unreadable and will be replaced: %v", path, err)
		existing = registry.New()
	default:
		return registry.Changes{}, fmt.Errorf("cannot merge into %s: %w", path, err)
	}

	out := fresh
	if policy == PolicyMerge {
		out = registry.Merge(existing, fresh)
	}

	changes := registry.Diff(existing, out)
	for _, e := range changes.Added {
		x.logger.WithField("name", e.Name).Infof("Added %s", e.Locator)
	}
	for _, e := range changes.Removed {
		x.logger.WithField("name", e.Name).Infof("Removed %s", e.Locator)
	}
	for _, c := range changes.Changed {
		x.logger.WithField("name", c.New.Name).Infof("Changed %s -> %s", c.Old.Locator, c.New.Locator)
	}

	if err := out.Save(path, registry.Meta{Site: result.URL, GeneratedAt: x.now()}); err != nil {
		return registry.Changes{}, err
	}
	x.logger.Infof("Wrote %d entries to %s (%s)", out.Len(), path, changes)
	return changes, nil
}

func locatorKey(e entities.SelectorEntry) string {
	return string(e.Kind) + "\x00" + e.Locator
}

// uniqueName - appends _2, _3, ... until the name is unused
func uniqueName(name string, used map[string]int) string {
	if used[name] == 0 {
		return name
	}
	for i := 2; ; i++ {
		candidate := name + "_" + strconv.Itoa(i)
		if used[candidate] == 0 {
			return candidate
		}
	}
}
