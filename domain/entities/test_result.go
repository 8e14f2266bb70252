package entities

import "time"

// TestStatus represents the outcome of one test case
type TestStatus string

const (
	TestStatusPass  TestStatus = "pass"
	TestStatusFail  TestStatus = "fail"
	TestStatusSkip  TestStatus = "skip"
	TestStatusError TestStatus = "error"
)

// TestResult is the outcome of one test case in a run
type TestResult struct {
	Package   string        `json:"package"`
	Name      string        `json:"name"`
	Status    TestStatus    `json:"status"`
	Duration  time.Duration `json:"duration"`
	Output    string        `json:"output,omitempty"`
	Artifacts []string      `json:"artifacts,omitempty"`
}

// Failed - true for fail and error
func (r TestResult) Failed() bool {
	return r.Status == TestStatusFail || r.Status == TestStatusError
}
