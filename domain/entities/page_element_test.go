package entities

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestTruncate(t *testing.T) {
	s, whole := Truncate("Gestão de risco cibernético", 6)
	assert.Equal(t, "Gestão", s)
	assert.False(t, whole)

	s, whole = Truncate("Log In", 6)
	assert.Equal(t, "Log In", s)
	assert.True(t, whole)

	s, whole = Truncate("", 0)
	assert.Equal(t, "", s)
	assert.True(t, whole)
}

func TestTruncateKeepsValidText(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringN(0, 80, -1).Draw(t, "s")
		limit := rapid.IntRange(0, 90).Draw(t, "limit")

		got, whole := Truncate(s, limit)
		if !utf8.ValidString(got) {
			t.Fatalf("Truncate(%q, %d) = %q is not valid UTF-8", s, limit, got)
		}
		if !strings.HasPrefix(s, got) {
			t.Fatalf("%q is not a prefix of %q", got, s)
		}
		if n := utf8.RuneCountInString(got); n > limit {
			t.Fatalf("kept %d characters, limit %d", n, limit)
		}
		if whole != (got == s) {
			t.Fatalf("whole=%v for %q -> %q", whole, s, got)
		}
	})
}

func TestCandidateDescribe(t *testing.T) {
	c := ElementCandidate{Tag: "a", ID: "login", Classes: []string{"btn", "btn--primary", "extra"}}
	assert.Equal(t, "a#login.btn.btn--primary", c.Describe())
	assert.Equal(t, "", c.Attr("href"))
}
