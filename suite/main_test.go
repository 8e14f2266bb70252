package suite

import (
	"os"
	"testing"
)

var harness *Harness

func TestMain(m *testing.M) {
	harness = NewHarness()
	code := m.Run()
	harness.Close()
	os.Exit(code)
}
