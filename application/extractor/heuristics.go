package extractor

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"site_uitest/domain/entities"
	"site_uitest/domain/interfaces"
)

// Heuristics decides which elements are worth a registry entry and which of
// their handles are stable enough to build a locator on
type Heuristics struct {
	Tags  []string
	Roles []string
	// StableClass matches class names that name a component rather than a
	// layout utility or a generated hash
	StableClass *regexp.Regexp
	// UnstableID matches generated ids that change between deploys
	UnstableID *regexp.Regexp
	MaxNameLen int
}

// DefaultHeuristics - interactive and landmark elements, BEM-style classes
func DefaultHeuristics() Heuristics {
	return Heuristics{
		Tags:        []string{"a", "button", "input", "select", "textarea", "form", "nav", "header", "footer", "h1", "h2"},
		Roles:       []string{"button", "link", "navigation", "menu", "menuitem", "search", "dialog", "banner", "contentinfo"},
		StableClass: regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*(__[a-z0-9]+(-[a-z0-9]+)*)?(--[a-z0-9]+(-[a-z0-9]+)*)?$`),
		UnstableID:  regexp.MustCompile(`(^\d)|([0-9a-f]{6,})|(--\d+$)|(^ember\d+)|(^react-)|(^:r)`),
		MaxNameLen:  48,
	}
}

// Filter - the element filter passed to DOM sources
func (h Heuristics) Filter() interfaces.ElementFilter {
	return interfaces.ElementFilter{Tags: h.Tags, Roles: h.Roles}
}

// Wants - whether a candidate is one of the element types of interest
func (h Heuristics) Wants(c entities.ElementCandidate) bool {
	return slices.Contains(h.Tags, strings.ToLower(c.Tag)) || (c.Role != "" && slices.Contains(h.Roles, c.Role))
}

var plainID = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// proposal is a candidate's best locator and the name derived for it
type proposal struct {
	candidate entities.ElementCandidate
	entry     entities.SelectorEntry
}

// propose picks the strongest stable handle of c, in priority order:
// data-testid, data-qa, id, name, aria-label, href, stable class, role.
// ok is false when c has no stable handle.
func (h Heuristics) propose(c entities.ElementCandidate) (entities.SelectorEntry, bool) {
	tag := strings.ToLower(c.Tag)
	suffix := tagSuffix(tag)

	entry := func(base, locator string, kind entities.LocatorKind) (entities.SelectorEntry, bool) {
		return entities.SelectorEntry{
			Name:        h.name(base, suffix),
			Locator:     locator,
			Kind:        kind,
			Description: describe(c),
		}, true
	}

	if v := c.Attr("data-testid"); v != "" {
		return entry(v, "data-testid="+v, entities.KindAttribute)
	}
	if v := c.Attr("data-qa"); v != "" {
		return entry(v, "data-qa="+v, entities.KindAttribute)
	}
	if c.ID != "" && plainID.MatchString(c.ID) && !h.UnstableID.MatchString(c.ID) {
		return entry(c.ID, "#"+c.ID, entities.KindCSS)
	}
	if v := c.Attr("name"); v != "" && isFormField(tag) {
		return entry(v, tag+entities.AttributeSelector("name", v), entities.KindCSS)
	}
	if v := c.Attr("aria-label"); v != "" {
		return entry(v, tag+entities.AttributeSelector("aria-label", v), entities.KindCSS)
	}
	if v := c.Attr("href"); v != "" && tag == "a" && !strings.HasPrefix(v, "#") && !strings.HasPrefix(v, "javascript:") {
		base := c.Text
		if base == "" || len(base) > h.MaxNameLen {
			base = hrefBase(v)
		}
		return entry(base, "a"+entities.AttributeSelector("href", v), entities.KindCSS)
	}
	for _, cls := range c.Classes {
		if h.StableClass != nil && h.StableClass.MatchString(cls) && isComponentClass(cls) {
			return entry(cls, tag+"."+cls, entities.KindCSS)
		}
	}
	if c.Role != "" {
		return entry(c.Role, tag+entities.AttributeSelector("role", c.Role), entities.KindCSS)
	}
	if isLandmark(tag) {
		return entry(tag, tag, entities.KindCSS)
	}
	return entities.SelectorEntry{}, false
}

// name - slugged base plus the tag suffix, bounded in length
func (h Heuristics) name(base, suffix string) string {
	s := slug(base)
	if s == "" {
		s = "element"
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "el_" + s
	}
	if suffix != "" && s != suffix && !strings.HasSuffix(s, "_"+suffix) {
		s += "_" + suffix
	}
	if h.MaxNameLen > 0 && len(s) > h.MaxNameLen {
		s = strings.TrimRight(s[:h.MaxNameLen], "_")
	}
	return s
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(s), "_"), "_")
}

func tagSuffix(tag string) string {
	switch tag {
	case "a":
		return "link"
	case "h1", "h2":
		return "heading"
	case "button", "input", "select", "textarea", "form", "nav", "header", "footer":
		return tag
	}
	return ""
}

func isFormField(tag string) bool {
	switch tag {
	case "input", "select", "textarea", "button", "form":
		return true
	}
	return false
}

func isLandmark(tag string) bool {
	switch tag {
	case "header", "footer", "nav", "h1":
		return true
	}
	return false
}

// isComponentClass - BEM block elements and modifiers; bare single words like
// "container" or "active" say too little
func isComponentClass(cls string) bool {
	return strings.Contains(cls, "__") || strings.Contains(cls, "--") || strings.Count(cls, "-") >= 2
}

func hrefBase(href string) string {
	href = strings.TrimSuffix(strings.SplitN(href, "?", 2)[0], "/")
	if i := strings.LastIndex(href, "/"); i >= 0 {
		href = href[i+1:]
	}
	return href
}

func describe(c entities.ElementCandidate) string {
	text, whole := entities.Truncate(strings.Join(strings.Fields(c.Text), " "), 60)
	if !whole {
		text += "..."
	}
	if text == "" {
		return c.Describe()
	}
	return fmt.Sprintf("%s %q", c.Describe(), text)
}
