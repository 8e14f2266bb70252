package suite

import (
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
)

// evalNumbers runs a script returning an object of numbers
func evalNumbers(t *testing.T, page playwright.Page, script string) map[string]float64 {
	t.Helper()
	v, err := page.Evaluate(script)
	require.NoError(t, err)

	raw, ok := v.(map[string]interface{})
	require.True(t, ok, "script returned %T", v)

	out := make(map[string]float64, len(raw))
	for k, n := range raw {
		switch n := n.(type) {
		case int:
			out[k] = float64(n)
		case int64:
			out[k] = float64(n)
		case float64:
			out[k] = n
		default:
			t.Fatalf("%s is %T, not a number", k, n)
		}
	}
	return out
}

// evalStrings runs a script returning an array of strings
func evalStrings(t *testing.T, page playwright.Page, script string) []string {
	t.Helper()
	v, err := page.Evaluate(script)
	require.NoError(t, err)

	raw, ok := v.([]interface{})
	require.True(t, ok, "script returned %T", v)

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		str, _ := s.(string)
		out = append(out, str)
	}
	return out
}
