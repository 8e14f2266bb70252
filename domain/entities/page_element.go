package entities

import "strings"

// ElementCandidate is one raw DOM element reported during extraction
type ElementCandidate struct {
	Tag        string            `json:"tag"`
	ID         string            `json:"id,omitempty"`
	Role       string            `json:"role,omitempty"`
	Classes    []string          `json:"classes,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Text       string            `json:"text,omitempty"`
}

// MaxCandidateText bounds the text kept per candidate, in characters
const MaxCandidateText = 200

// Truncate - s cut to at most limit characters, never inside a multi-byte
// character. whole is false when something was cut.
func Truncate(s string, limit int) (cut string, whole bool) {
	n := 0
	for i := range s {
		if n == limit {
			return s[:i], false
		}
		n++
	}
	return s, true
}

// Attr - returns an attribute value or ""
func (c ElementCandidate) Attr(name string) string {
	if c.Attributes == nil {
		return ""
	}
	return c.Attributes[name]
}

// Describe - short form for logs: tag#id.class
func (c ElementCandidate) Describe() string {
	var b strings.Builder
	b.WriteString(c.Tag)
	if c.ID != "" {
		b.WriteString("#" + c.ID)
	}
	for i, cls := range c.Classes {
		if i == 2 {
			break
		}
		b.WriteString("." + cls)
	}
	return b.String()
}
