// Package report turns the `go test -json` event stream of a suite run into
// test results and renders them as text, JSON or JUnit XML.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"site_uitest/domain/entities"
)

// Report is one suite run
type Report struct {
	RunID      string                `json:"run_id"`
	StartedAt  time.Time             `json:"started_at"`
	Duration   time.Duration         `json:"duration"`
	BaseURL    string                `json:"base_url,omitempty"`
	Browser    string                `json:"browser,omitempty"`
	Categories string                `json:"categories,omitempty"`
	Results    []entities.TestResult `json:"results"`
}

// Summary counts results by status
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Errored int `json:"errored"`
}

// event is one line of `go test -json` output
type event struct {
	Time    time.Time `json:"Time"`
	Action  string    `json:"Action"`
	Package string    `json:"Package"`
	Test    string    `json:"Test"`
	Elapsed float64   `json:"Elapsed"`
	Output  string    `json:"Output"`
}

type key struct {
	pkg  string
	test string
}

// Parse - decodes a `go test -json` stream. Tests that started but never
// reported an outcome (a panic or a killed process) come back as errors, and
// so does a package that failed without any failing test (a build error).
func Parse(r io.Reader) ([]entities.TestResult, error) {
	var (
		order   []key
		results = make(map[key]*entities.TestResult)
		output  = make(map[key]*strings.Builder)
		failed  = make(map[string]bool)
	)
	get := func(k key) *entities.TestResult {
		if res, ok := results[k]; ok {
			return res
		}
		res := &entities.TestResult{Package: k.pkg, Name: k.test}
		results[k] = res
		output[k] = &strings.Builder{}
		order = append(order, k)
		return res
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(strings.TrimSpace(string(raw))) == 0 {
			continue
		}
		var ev event
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("line %d: not a test event: %w", line, err)
		}

		k := key{pkg: ev.Package, test: ev.Test}
		switch ev.Action {
		case "run":
			if ev.Test != "" {
				get(k)
			}
		case "output":
			get(k)
			output[k].WriteString(ev.Output)
		case "pass", "fail", "skip":
			res := get(k)
			res.Status = entities.TestStatus(ev.Action)
			res.Duration = time.Duration(ev.Elapsed * float64(time.Second))
			if ev.Test != "" && ev.Action == "fail" {
				failed[ev.Package] = true
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read test events: %w", err)
	}

	var out []entities.TestResult
	for _, k := range order {
		res := results[k]
		res.Output = output[k].String()
		if k.test == "" {
			// package lines only matter when nothing else explains a failure
			if res.Status == entities.TestStatusFail && !failed[k.pkg] {
				res.Status = entities.TestStatusError
				out = append(out, *res)
			}
			continue
		}
		if res.Status == "" {
			res.Status = entities.TestStatusError
		}
		out = append(out, *res)
	}
	return out, nil
}

// Attach - copies artifact paths from the manifest onto matching results
func (r *Report) Attach(manifest map[string][]string) {
	for i := range r.Results {
		if paths, ok := manifest[r.Results[i].Name]; ok {
			r.Results[i].Artifacts = append([]string(nil), paths...)
		}
	}
}

// Summary - counts by status
func (r *Report) Summary() Summary {
	var s Summary
	for _, res := range r.Results {
		s.Total++
		switch res.Status {
		case entities.TestStatusPass:
			s.Passed++
		case entities.TestStatusFail:
			s.Failed++
		case entities.TestStatusSkip:
			s.Skipped++
		default:
			s.Errored++
		}
	}
	return s
}

// Failed - whether any result failed or errored
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if res.Failed() {
			return true
		}
	}
	return false
}

// byPackage - results grouped by package, packages sorted
func (r *Report) byPackage() ([]string, map[string][]entities.TestResult) {
	groups := make(map[string][]entities.TestResult)
	for _, res := range r.Results {
		groups[res.Package] = append(groups[res.Package], res)
	}
	pkgs := make([]string, 0, len(groups))
	for pkg := range groups {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)
	return pkgs, groups
}
