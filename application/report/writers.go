package report

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"site_uitest/domain/entities"
)

// Formats
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatJUnit = "junit"
)

// Formats - the supported output formats
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatJUnit}
}

func KnownFormat(format string) bool {
	for _, f := range Formats() {
		if f == format {
			return true
		}
	}
	return false
}

// Write - renders rep to w in format
func Write(w io.Writer, rep *Report, format string) error {
	switch format {
	case FormatText, "":
		return writeText(w, rep)
	case FormatJSON:
		return writeJSON(w, rep)
	case FormatJUnit:
		return writeJUnit(w, rep)
	}
	return fmt.Errorf("unknown report format %q (want %s)", format, strings.Join(Formats(), ", "))
}

func writeText(w io.Writer, rep *Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Run %s  %s  browser=%s  categories=%s\n", rep.RunID, rep.StartedAt.Format("2006-01-02 15:04:05"), rep.Browser, orAll(rep.Categories))
	fmt.Fprintln(tw, "STATUS\tTEST\tTIME\tARTIFACTS")
	for _, res := range rep.Results {
		fmt.Fprintf(tw, "%s\t%s\t%.2fs\t%s\n", strings.ToUpper(string(res.Status)), res.Name, res.Duration.Seconds(), strings.Join(res.Artifacts, ", "))
	}
	s := rep.Summary()
	fmt.Fprintf(tw, "\n%d tests: %d passed, %d failed, %d skipped, %d errors in %s\n",
		s.Total, s.Passed, s.Failed, s.Skipped, s.Errored, rep.Duration.Round(10*time.Millisecond))
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, res := range rep.Results {
		if !res.Failed() || res.Output == "" {
			continue
		}
		fmt.Fprintf(w, "\n--- %s (%s)\n%s", res.Name, res.Package, res.Output)
	}
	return nil
}

func orAll(categories string) string {
	if categories == "" {
		return "all"
	}
	return categories
}

func writeJSON(w io.Writer, rep *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		*Report
		Summary Summary `json:"summary"`
	}{rep, rep.Summary()})
}

type junitSuites struct {
	XMLName  xml.Name     `xml:"testsuites"`
	Name     string       `xml:"name,attr"`
	Tests    int          `xml:"tests,attr"`
	Failures int          `xml:"failures,attr"`
	Errors   int          `xml:"errors,attr"`
	Skipped  int          `xml:"skipped,attr"`
	Time     string       `xml:"time,attr"`
	Suites   []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name      string      `xml:"name,attr"`
	Tests     int         `xml:"tests,attr"`
	Failures  int         `xml:"failures,attr"`
	Errors    int         `xml:"errors,attr"`
	Skipped   int         `xml:"skipped,attr"`
	Time      string      `xml:"time,attr"`
	Timestamp string      `xml:"timestamp,attr"`
	Cases     []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitMessage `xml:"failure,omitempty"`
	Error     *junitMessage `xml:"error,omitempty"`
	Skipped   *junitMessage `xml:"skipped,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

type junitMessage struct {
	Message string `xml:"message,attr,omitempty"`
	Body    string `xml:",chardata"`
}

func writeJUnit(w io.Writer, rep *Report) error {
	s := rep.Summary()
	doc := junitSuites{
		Name:     "uitest " + rep.RunID,
		Tests:    s.Total,
		Failures: s.Failed,
		Errors:   s.Errored,
		Skipped:  s.Skipped,
		Time:     seconds(rep.Duration.Seconds()),
	}

	pkgs, groups := rep.byPackage()
	for _, pkg := range pkgs {
		suite := junitSuite{Name: pkg, Timestamp: rep.StartedAt.UTC().Format("2006-01-02T15:04:05")}
		var total float64
		for _, res := range groups[pkg] {
			c := junitCase{Name: res.Name, Classname: pkg, Time: seconds(res.Duration.Seconds())}
			if res.Name == "" {
				c.Name = "(package)"
			}
			switch res.Status {
			case entities.TestStatusFail:
				c.Failure = &junitMessage{Message: "test failed", Body: res.Output}
				suite.Failures++
			case entities.TestStatusSkip:
				c.Skipped = &junitMessage{Message: lastLine(res.Output)}
				suite.Skipped++
			case entities.TestStatusError:
				c.Error = &junitMessage{Message: "test did not complete", Body: res.Output}
				suite.Errors++
			}
			if len(res.Artifacts) > 0 {
				c.SystemOut = "artifacts: " + strings.Join(res.Artifacts, ", ")
			}
			total += res.Duration.Seconds()
			suite.Tests++
			suite.Cases = append(suite.Cases, c)
		}
		suite.Time = seconds(total)
		doc.Suites = append(doc.Suites, suite)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func seconds(s float64) string {
	return fmt.Sprintf("%.3f", s)
}

// lastLine - the last non-empty output line, where t.Skip puts its reason
func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" && !strings.HasPrefix(l, "--- SKIP") {
			return l
		}
	}
	return ""
}
